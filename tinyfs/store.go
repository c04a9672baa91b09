package tinyfs

import (
	"github.com/tinyfs/tinyfs/backend"
	"github.com/tinyfs/tinyfs/block"
)

// store is the thin positional-I/O layer between the block codec and the
// backend.Storage contract: every method is exactly one ReadAt/WriteAt
// round trip, no buffering, no caching.
type store struct {
	w backend.WritableFile
}

func newStore(s backend.Storage) (*store, error) {
	w, err := s.Writable()
	if err != nil {
		return nil, err
	}
	return newStoreFromWritable(w), nil
}

// newStoreFromWritable builds a store directly from a backend.WritableFile,
// bypassing Storage.Writable(). Used by tests that stub out the backend with
// testhelper.FileImpl instead of a real Storage.
func newStoreFromWritable(w backend.WritableFile) *store {
	return &store{w: w}
}

func (s *store) readRaw(n block.Num) ([block.Size]byte, error) {
	var buf [block.Size]byte
	read, err := s.w.ReadAt(buf[:], int64(n)*block.Size)
	if err != nil {
		return buf, newErr(KindReadError, err)
	}
	if read < block.Size {
		return buf, newErrf(KindReadError, "short read at block %d: got %d of %d bytes", n, read, block.Size)
	}
	return buf, nil
}

func (s *store) writeRaw(n block.Num, buf [block.Size]byte) error {
	written, err := s.w.WriteAt(buf[:], int64(n)*block.Size)
	if err != nil {
		return newErr(KindWriteError, err)
	}
	if written < block.Size {
		return newErrf(KindWriteError, "short write at block %d: wrote %d of %d bytes", n, written, block.Size)
	}
	return nil
}

func (s *store) readSuperblock() (block.Superblock, error) {
	buf, err := s.readRaw(block.SuperblockNum)
	if err != nil {
		return block.Superblock{}, err
	}
	sb, err := block.DecodeSuperblock(buf[:])
	if err != nil {
		return block.Superblock{}, newErr(KindNotTinyFSFormat, err)
	}
	return sb, nil
}

func (s *store) writeSuperblock(sb block.Superblock) error {
	return s.writeRaw(block.SuperblockNum, sb.Encode())
}

func (s *store) readInode(n block.Num) (block.Inode, error) {
	buf, err := s.readRaw(n)
	if err != nil {
		return block.Inode{}, err
	}
	in, err := block.DecodeInode(buf[:])
	if err != nil {
		return block.Inode{}, newErr(KindNotTinyFSFormat, err)
	}
	return in, nil
}

func (s *store) writeInode(n block.Num, in block.Inode) error {
	buf, err := in.Encode()
	if err != nil {
		return newErr(KindWriteError, err)
	}
	return s.writeRaw(n, buf)
}

func (s *store) readFreeBlock(n block.Num) (block.FreeBlock, error) {
	buf, err := s.readRaw(n)
	if err != nil {
		return block.FreeBlock{}, err
	}
	fb, err := block.DecodeFreeBlock(buf[:])
	if err != nil {
		return block.FreeBlock{}, newErr(KindNotTinyFSFormat, err)
	}
	return fb, nil
}

func (s *store) writeFreeBlock(n block.Num, fb block.FreeBlock) error {
	return s.writeRaw(n, fb.Encode())
}

func (s *store) readFileExtent(n block.Num) (block.FileExtent, error) {
	buf, err := s.readRaw(n)
	if err != nil {
		return block.FileExtent{}, err
	}
	fe, err := block.DecodeFileExtent(buf[:])
	if err != nil {
		return block.FileExtent{}, newErr(KindNotTinyFSFormat, err)
	}
	return fe, nil
}

func (s *store) writeFileExtent(n block.Num, fe block.FileExtent) error {
	return s.writeRaw(n, fe.Encode())
}
