// Package file implements a backend.Storage backed by a plain host file:
// fixed-size block I/O over a byte-addressable file, with no buffering, no
// caching, and one syscall round trip per operation.
package file

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/tinyfs/tinyfs/backend"
)

type rawBackend struct {
	storage  fs.File
	readOnly bool
}

// New creates a backend.Storage from an already-open fs.File.
func New(f fs.File, readOnly bool) backend.Storage {
	return rawBackend{
		storage:  f,
		readOnly: readOnly,
	}
}

// OpenOrCreate implements the three-way volume open/create rule:
//
//   - nBytes == 0: open an existing file for read/write; fail if it does
//     not exist.
//   - nBytes >= block.Size: create-or-open for read/write and truncate to
//     nBytes rounded down to a multiple of block.Size.
//   - 0 < nBytes < block.Size: fail; a volume can't fit even a superblock.
//
// The caller (package tinyfs) is responsible for taking the exclusivity
// lock; this function only does the file-level open/create/truncate.
func OpenOrCreate(pathName string, nBytes int64, blockSize int64) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass a disk file name")
	}

	switch {
	case nBytes == 0:
		f, err := os.OpenFile(pathName, os.O_RDWR, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open disk %s: %w", pathName, err)
		}
		return rawBackend{storage: f}, nil

	case nBytes < blockSize:
		return nil, fmt.Errorf("disk size %d is smaller than one block (%d bytes)", nBytes, blockSize)

	default:
		f, err := os.OpenFile(pathName, os.O_RDWR|os.O_CREATE, 0o666)
		if err != nil {
			return nil, fmt.Errorf("create disk %s: %w", pathName, err)
		}
		truncated := nBytes - (nBytes % blockSize)
		if err := f.Truncate(truncated); err != nil {
			f.Close()
			return nil, fmt.Errorf("resize disk %s to %d bytes: %w", pathName, truncated, err)
		}
		return rawBackend{storage: f}, nil
	}
}

// backend.Storage interface guard
var _ backend.Storage = (*rawBackend)(nil)

// Sys exposes the OS-specific file, for the advisory lock taken in
// backend/file/lock_*.go.
func (f rawBackend) Sys() (*os.File, error) {
	if osFile, ok := f.storage.(*os.File); ok {
		return osFile, nil
	}
	return nil, backend.ErrNotSuitable
}

func (f rawBackend) Writable() (backend.WritableFile, error) {
	if rwFile, ok := f.storage.(backend.WritableFile); ok {
		if !f.readOnly {
			return rwFile, nil
		}
		return nil, backend.ErrIncorrectOpenMode
	}
	return nil, backend.ErrNotSuitable
}

func (f rawBackend) Stat() (fs.FileInfo, error) {
	return f.storage.Stat()
}

func (f rawBackend) Read(b []byte) (int, error) {
	return f.storage.Read(b)
}

func (f rawBackend) Close() error {
	return f.storage.Close()
}

func (f rawBackend) ReadAt(p []byte, off int64) (n int, err error) {
	if readerAt, ok := f.storage.(io.ReaderAt); ok {
		return readerAt.ReadAt(p, off)
	}
	return -1, backend.ErrNotSuitable
}

func (f rawBackend) Seek(offset int64, whence int) (int64, error) {
	if seeker, ok := f.storage.(io.Seeker); ok {
		return seeker.Seek(offset, whence)
	}
	return -1, backend.ErrNotSuitable
}
