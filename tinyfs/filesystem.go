// Package tinyfs implements a small, single-mount, single-threaded file
// system of flat named files on top of a fixed-size block-addressed
// backing store: the block-layer state machine (typed blocks, free list,
// inode chain, file extent chain, open-file table) and the public API that
// orchestrates them.
package tinyfs

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/tinyfs/tinyfs/backend"
	"github.com/tinyfs/tinyfs/backend/file"
	"github.com/tinyfs/tinyfs/block"
)

// firstFD is the file descriptor handed out to the first file opened after
// a mount: a monotonic per-mount counter, chosen over deriving a descriptor
// from a reopened host fd, which is not portable across backends.
const firstFD = 3

// openFileEntry is one row of the open-file table: not persisted, cleared
// en masse on unmount.
type openFileEntry struct {
	name   string
	offset int
}

// FileSystem is a mounted TinyFS volume, holding the mount state, the
// open-file table, and the public file-system API. The zero value is an
// unmounted FileSystem ready for Mount.
type FileSystem struct {
	log *logrus.Entry

	diskPath  string
	osFile    *os.File
	storage   backend.Storage
	st        *store
	fl        *freeList
	ino       *inodeDir
	ext       *extentChain
	numBlocks int

	open   map[int]*openFileEntry
	nextFD int
}

// New creates an unmounted FileSystem handle.
func New(opts ...Option) *FileSystem {
	fs := &FileSystem{log: logrus.NewEntry(logrus.StandardLogger())}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// Mkfs formats a blank TinyFS volume of size nBytes on the host file at
// path. It does not mount the result.
func Mkfs(path string, nBytes int) error {
	storage, err := file.OpenOrCreate(path, int64(nBytes), block.Size)
	if err != nil {
		return newErr(KindInvalidDisk, err)
	}
	defer storage.Close()

	st, err := newStore(storage)
	if err != nil {
		return newErr(KindInvalidDisk, err)
	}

	numBlocks := nBytes / block.Size
	if numBlocks > block.MaxBlocks {
		return newErrf(KindInvalidDisk, "disk of %d blocks exceeds the one-byte block address space (max %d)", numBlocks, block.MaxBlocks)
	}

	sb := block.Superblock{RootInode: block.RootInode, FreeBlockPtr: block.None}
	if numBlocks >= 3 {
		sb.FreeBlockPtr = block.Num(2)
	}
	if err := st.writeSuperblock(sb); err != nil {
		return err
	}

	root := block.Inode{
		Name:               "root",
		FileSize:           uint16(numBlocks),
		SelfBlock:          block.RootInode,
		NextInodePtr:       block.None,
		FirstFileExtentPtr: block.None,
	}
	if err := st.writeInode(block.RootInode, root); err != nil {
		return err
	}

	for i := 2; i < numBlocks; i++ {
		next := block.None
		if i < numBlocks-1 {
			next = block.Num(i + 1)
		}
		if err := st.writeFreeBlock(block.Num(i), block.FreeBlock{NextFreeBlock: next}); err != nil {
			return err
		}
	}
	return nil
}

// Mount mounts the TinyFS volume at diskname. If this FileSystem already
// has a mount, it is unmounted first.
func (fs *FileSystem) Mount(diskname string) error {
	if fs.log == nil {
		fs.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if fs.storage != nil {
		if err := fs.Unmount(); err != nil {
			return err
		}
	}

	storage, err := file.OpenOrCreate(diskname, 0, block.Size)
	if err != nil {
		return newErr(KindInvalidDisk, err)
	}
	if osFile, sysErr := storage.Sys(); sysErr == nil {
		if err := file.Lock(osFile); err != nil {
			storage.Close()
			return newErr(KindInvalidDisk, err)
		}
		fs.osFile = osFile
	}

	st, err := newStore(storage)
	if err != nil {
		storage.Close()
		return newErr(KindInvalidDisk, err)
	}

	sb, err := st.readSuperblock()
	if err != nil {
		storage.Close()
		return newErr(KindNotTinyFSFormat, err)
	}

	root, err := st.readInode(block.RootInode)
	if err != nil {
		storage.Close()
		return newErr(KindNotTinyFSFormat, err)
	}

	numBlocks := int(root.FileSize)
	for i := 1; i < numBlocks; i++ {
		buf, err := st.readRaw(block.Num(i))
		if err != nil {
			storage.Close()
			return err
		}
		if _, err := block.PeekType(buf[:]); err != nil {
			storage.Close()
			return newErr(KindNotTinyFSFormat, err)
		}
	}
	_ = sb // superblock validity already established by readSuperblock's magic check

	fs.diskPath = diskname
	fs.storage = storage
	fs.st = st
	fs.fl = &freeList{s: st}
	fs.ino = &inodeDir{s: st, fl: fs.fl}
	fs.ext = &extentChain{s: st, fl: fs.fl}
	fs.numBlocks = numBlocks
	fs.open = make(map[int]*openFileEntry)
	fs.nextFD = firstFD

	fs.log.WithField("disk", diskname).WithField("blocks", numBlocks).Debug("tinyfs: mounted")
	return nil
}

// Unmount clears mount state, drops the open-file table, and closes the
// backing store.
func (fs *FileSystem) Unmount() error {
	if fs.storage == nil {
		return newErr(KindNoFSMounted, nil)
	}
	if fs.osFile != nil {
		_ = file.Unlock(fs.osFile)
	}
	err := fs.storage.Close()

	fs.diskPath = ""
	fs.osFile = nil
	fs.storage = nil
	fs.st = nil
	fs.fl = nil
	fs.ino = nil
	fs.ext = nil
	fs.numBlocks = 0
	fs.open = nil
	fs.nextFD = 0

	if err != nil {
		return newErr(KindWriteError, err)
	}
	fs.log.Debug("tinyfs: unmounted")
	return nil
}

func (fs *FileSystem) requireMounted() error {
	if fs.storage == nil {
		return newErr(KindNoFSMounted, nil)
	}
	return nil
}

// OpenFile creates or opens name on the mounted volume. Calling OpenFile
// twice for the same name without an intervening CloseFile is idempotent:
// both calls return the same descriptor.
func (fs *FileSystem) OpenFile(name string) (int, error) {
	if err := fs.requireMounted(); err != nil {
		return -1, err
	}
	for fd, entry := range fs.open {
		if entry.name == name {
			return fd, nil
		}
	}

	_, _, found, err := fs.ino.lookup(name)
	if err != nil {
		return -1, err
	}
	if !found {
		newInode := block.Inode{
			Name:               name,
			FileSize:           0,
			FirstFileExtentPtr: block.None,
		}
		if _, err := fs.ino.append(newInode); err != nil {
			return -1, err
		}
	}

	fd := fs.nextFD
	fs.nextFD++
	fs.open[fd] = &openFileEntry{name: name, offset: 0}
	fs.log.WithField("name", name).WithField("fd", fd).Debug("tinyfs: opened file")
	return fd, nil
}

// CloseFile removes fd's entry from the open-file table.
func (fs *FileSystem) CloseFile(fd int) error {
	if err := fs.requireMounted(); err != nil {
		return err
	}
	if _, ok := fs.open[fd]; !ok {
		return newErr(KindInvalidFD, nil)
	}
	delete(fs.open, fd)
	return nil
}

func (fs *FileSystem) entryForFD(fd int) (*openFileEntry, error) {
	entry, ok := fs.open[fd]
	if !ok {
		return nil, newErr(KindInvalidFD, nil)
	}
	return entry, nil
}

// WriteFile replaces fd's entire file content with data and resets its
// offset to 0.
func (fs *FileSystem) WriteFile(fd int, data []byte) error {
	if err := fs.requireMounted(); err != nil {
		return err
	}
	entry, err := fs.entryForFD(fd)
	if err != nil {
		return err
	}

	inodeBlock, in, found, err := fs.ino.lookup(entry.name)
	if err != nil {
		return err
	}
	if !found {
		return newErr(KindNoInodeMatchingFD, nil)
	}

	if err := fs.ext.writeAll(&in, data); err != nil {
		return err
	}
	if err := fs.st.writeInode(inodeBlock, in); err != nil {
		return err
	}
	entry.offset = 0
	return nil
}

// DeleteFile frees fd's file content and inode, unlinks it from the inode
// chain, and removes its open-file entry.
func (fs *FileSystem) DeleteFile(fd int) error {
	if err := fs.requireMounted(); err != nil {
		return err
	}
	entry, err := fs.entryForFD(fd)
	if err != nil {
		return err
	}

	inodeBlock, in, found, err := fs.ino.lookup(entry.name)
	if err != nil {
		return err
	}
	if !found {
		return newErr(KindNoInodeMatchingFD, nil)
	}

	if err := fs.ext.truncateToEmpty(&in); err != nil {
		return err
	}
	if err := fs.st.writeInode(inodeBlock, in); err != nil {
		return err
	}
	if err := fs.ino.unlink(inodeBlock); err != nil {
		return err
	}

	delete(fs.open, fd)
	return nil
}

// ReadByte reads the byte at fd's current offset and advances the offset
// by one.
func (fs *FileSystem) ReadByte(fd int) (byte, error) {
	if err := fs.requireMounted(); err != nil {
		return 0, err
	}
	entry, err := fs.entryForFD(fd)
	if err != nil {
		return 0, err
	}

	_, in, found, err := fs.ino.lookup(entry.name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, newErr(KindNoInodeMatchingFD, nil)
	}

	b, err := fs.ext.readByteAt(in, entry.offset)
	if err != nil {
		return 0, err
	}
	entry.offset++
	return b, nil
}

// Seek sets fd's read offset. No bounds check happens here; it happens at
// the next ReadByte.
func (fs *FileSystem) Seek(fd int, offset int) error {
	if err := fs.requireMounted(); err != nil {
		return err
	}
	entry, err := fs.entryForFD(fd)
	if err != nil {
		return err
	}
	entry.offset = offset
	return nil
}
