package block

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrFormat is returned by any Decode function when a buffer does not carry
// the magic fingerprint, or carries the wrong block type for the call site.
// Callers translate this into the public NOT_TINYFS_FORMAT error kind.
var ErrFormat = errors.New("not a tinyfs block")

// maxNameLen is the longest filename this format can store, including the
// terminating NUL (9 bytes, i.e. 8 usable characters).
const maxNameLen = 9

// Superblock is the decoded form of block 0.
type Superblock struct {
	RootInode    Num
	FreeBlockPtr Num
}

// Encode writes s into a freshly zero-filled 256-byte buffer.
func (s Superblock) Encode() [Size]byte {
	var buf [Size]byte
	buf[0] = byte(TypeSuperblock)
	buf[1] = Magic
	buf[2] = byte(s.RootInode)
	buf[3] = byte(s.FreeBlockPtr)
	return buf
}

// DecodeSuperblock validates and decodes a raw block as a Superblock.
func DecodeSuperblock(buf []byte) (Superblock, error) {
	if err := checkHeader(buf, TypeSuperblock); err != nil {
		return Superblock{}, err
	}
	return Superblock{
		RootInode:    Num(buf[2]),
		FreeBlockPtr: Num(buf[3]),
	}, nil
}

// Inode is the decoded form of an inode block: the root inode (block 1,
// name "root") or a regular file's metadata.
type Inode struct {
	Name               string
	FileSize           uint16 // bytes, for a file; total block count, for root
	SelfBlock          Num
	NextInodePtr       Num
	FirstFileExtentPtr Num
}

// Encode writes n into a freshly zero-filled 256-byte buffer.
func (n Inode) Encode() ([Size]byte, error) {
	if len(n.Name) > maxNameLen-1 {
		return [Size]byte{}, fmt.Errorf("filename %q exceeds %d characters", n.Name, maxNameLen-1)
	}
	var buf [Size]byte
	buf[0] = byte(TypeInode)
	buf[1] = Magic
	copy(buf[2:2+maxNameLen], n.Name)
	binary.LittleEndian.PutUint16(buf[11:13], n.FileSize)
	buf[13] = byte(n.SelfBlock)
	buf[14] = byte(n.NextInodePtr)
	buf[15] = byte(n.FirstFileExtentPtr)
	return buf, nil
}

// DecodeInode validates and decodes a raw block as an Inode.
func DecodeInode(buf []byte) (Inode, error) {
	if err := checkHeader(buf, TypeInode); err != nil {
		return Inode{}, err
	}
	name := buf[2 : 2+maxNameLen]
	nul := maxNameLen
	for i, b := range name {
		if b == 0 {
			nul = i
			break
		}
	}
	return Inode{
		Name:               string(name[:nul]),
		FileSize:           binary.LittleEndian.Uint16(buf[11:13]),
		SelfBlock:          Num(buf[13]),
		NextInodePtr:       Num(buf[14]),
		FirstFileExtentPtr: Num(buf[15]),
	}, nil
}

// FileExtent is the decoded form of one payload block in a file's extent
// chain: up to DataSize bytes plus a link to the next extent.
type FileExtent struct {
	NextDataBlock Num
	Data          [DataSize]byte
}

// Encode writes e into a 256-byte buffer; Data is written verbatim, so
// callers must zero-pad trailing bytes themselves (the extent chain builder
// in package tinyfs does this).
func (e FileExtent) Encode() [Size]byte {
	var buf [Size]byte
	buf[0] = byte(TypeFileExtent)
	buf[1] = Magic
	buf[2] = byte(e.NextDataBlock)
	copy(buf[3:], e.Data[:])
	return buf
}

// DecodeFileExtent validates and decodes a raw block as a FileExtent.
func DecodeFileExtent(buf []byte) (FileExtent, error) {
	if err := checkHeader(buf, TypeFileExtent); err != nil {
		return FileExtent{}, err
	}
	var e FileExtent
	e.NextDataBlock = Num(buf[2])
	copy(e.Data[:], buf[3:Size])
	return e, nil
}

// FreeBlock is the decoded form of one node in the free list.
type FreeBlock struct {
	NextFreeBlock Num
}

// Encode writes f into a freshly zero-filled 256-byte buffer.
func (f FreeBlock) Encode() [Size]byte {
	var buf [Size]byte
	buf[0] = byte(TypeFreeBlock)
	buf[1] = Magic
	buf[2] = byte(f.NextFreeBlock)
	return buf
}

// DecodeFreeBlock validates and decodes a raw block as a FreeBlock.
func DecodeFreeBlock(buf []byte) (FreeBlock, error) {
	if err := checkHeader(buf, TypeFreeBlock); err != nil {
		return FreeBlock{}, err
	}
	return FreeBlock{NextFreeBlock: Num(buf[2])}, nil
}

// PeekType checks the magic number and returns the block type byte, without
// comparing the type against an expected variant or decoding the payload.
// Used by mount's per-block format check and by the dump command.
func PeekType(buf []byte) (Type, error) {
	if len(buf) < 2 {
		return 0, fmt.Errorf("%w: short block (%d bytes)", ErrFormat, len(buf))
	}
	if buf[1] != Magic {
		return 0, fmt.Errorf("%w: bad magic number 0x%02x", ErrFormat, buf[1])
	}
	return Type(buf[0]), nil
}

func checkHeader(buf []byte, want Type) error {
	if len(buf) < Size {
		return fmt.Errorf("%w: short block (%d bytes)", ErrFormat, len(buf))
	}
	if buf[1] != Magic {
		return fmt.Errorf("%w: bad magic number 0x%02x", ErrFormat, buf[1])
	}
	if Type(buf[0]) != want {
		return fmt.Errorf("%w: expected block type %s, got %s", ErrFormat, want, Type(buf[0]))
	}
	return nil
}
