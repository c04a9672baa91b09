package tinyfs_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyfs/tinyfs/tinyfs"
)

func tempDisk(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "disk.tfs")
}

// mkfs, mount, open, write "hi", seek(0), read 'h', 'i', then EOF.
func TestBasicWriteReadEOF(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 2560)) // 10 blocks

	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()

	fd, err := fs.OpenFile("a")
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile(fd, []byte("hi")))
	require.NoError(t, fs.Seek(fd, 0))

	b, err := fs.ReadByte(fd)
	require.NoError(t, err)
	require.Equal(t, byte('h'), b)

	b, err = fs.ReadByte(fd)
	require.NoError(t, err)
	require.Equal(t, byte('i'), b)

	_, err = fs.ReadByte(fd)
	require.ErrorIs(t, err, tinyfs.ErrEOF)
}

// openFile(name) called twice without an intervening close returns the
// same descriptor both times.
func TestOpenFileIsIdempotent(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 2560))

	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()

	fd1, err := fs.OpenFile("a")
	require.NoError(t, err)
	fd2, err := fs.OpenFile("a")
	require.NoError(t, err)
	require.Equal(t, fd1, fd2)
}

// a 254-byte file forces two extents (253 + 1 bytes); after
// unmount+mount, reading recovers every byte.
func TestMultiExtentSurvivesRemount(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 2560))

	data := make([]byte, 254)
	for i := range data {
		data[i] = byte(i)
	}

	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	fd, err := fs.OpenFile("big")
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile(fd, data))
	require.NoError(t, fs.Unmount())

	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()
	fd, err = fs.OpenFile("big")
	require.NoError(t, err)
	require.NoError(t, fs.Seek(fd, 0))

	got := make([]byte, len(data))
	for i := range got {
		b, err := fs.ReadByte(fd)
		require.NoError(t, err)
		got[i] = b
	}
	require.Equal(t, data, got)
}

// a 5-block disk has only 3 free blocks after the superblock and root
// inode; the fourth file to be opened exhausts them.
func TestOpenFileExhaustsFreeBlocks(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 1280)) // 5 blocks

	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()

	for _, name := range []string{"a", "b", "c"} {
		_, err := fs.OpenFile(name)
		require.NoError(t, err, "opening %q", name)
	}

	_, err := fs.OpenFile("d")
	require.ErrorIs(t, err, tinyfs.ErrOutOfBlocks)
}

// deleting a file and reopening the same name creates a fresh inode, not
// a collision with the deleted one.
func TestDeleteThenReopenGetsFreshInode(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 2560))

	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()

	fd1, err := fs.OpenFile("a")
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile(fd1, []byte("xyz")))
	require.NoError(t, fs.DeleteFile(fd1))

	fd2, err := fs.OpenFile("a")
	require.NoError(t, err)

	_, err = fs.ReadByte(fd2)
	require.ErrorIs(t, err, tinyfs.ErrEOF, "new inode for \"a\" should start empty")

	problems, err := fs.Fsck()
	require.NoError(t, err)
	require.Empty(t, problems)
}

// mounting an arbitrary file of zeros fails with NOT_TINYFS_FORMAT.
func TestMountRejectsNonTinyFSFormat(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, os.WriteFile(path, make([]byte, 2560), 0o666))

	fs := tinyfs.New()
	err := fs.Mount(path)
	require.ErrorIs(t, err, tinyfs.ErrNotTinyFSFormat)
}

// mkfs(nBytes) then mount succeeds, and exactly floor(nBytes/256) - 2
// blocks are free, across a range of disk sizes.
func TestFormatRoundTripAcrossDiskSizes(t *testing.T) {
	for _, blocks := range []int{3, 5, 10, 255} {
		nBytes := blocks * 256
		t.Run(fmt.Sprintf("%d_blocks", blocks), func(t *testing.T) {
			path := tempDisk(t)
			require.NoError(t, tinyfs.Mkfs(path, nBytes))

			fs := tinyfs.New()
			require.NoError(t, fs.Mount(path))
			defer fs.Unmount()

			free := countFree(t, fs, blocks)
			require.Equal(t, blocks-2, free)
		})
	}
}

func countFree(t *testing.T, fs *tinyfs.FileSystem, totalBlocks int) int {
	t.Helper()
	// Drain the free list by opening files until exhaustion, counting how
	// many inodes could be created (one block each) before OUT_OF_BLOCKS.
	count := 0
	for i := 0; ; i++ {
		_, err := fs.OpenFile(fmt.Sprintf("f%d", i))
		if err != nil {
			require.ErrorIs(t, err, tinyfs.ErrOutOfBlocks)
			break
		}
		count++
		if count > totalBlocks {
			t.Fatal("opened more files than the disk has blocks; free list is corrupt")
		}
	}
	return count
}

// overwriting a smaller buffer over a larger one returns the reclaimed
// extents to the free list.
func TestOverwriteReclaimsExtentBlocks(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 2560)) // 10 blocks: 8 free after root+super

	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()

	fd, err := fs.OpenFile("a")
	require.NoError(t, err)

	// 2 extents worth of data (253*2 = 506 bytes), consuming 2 of the
	// remaining 7 free blocks (1 already spent on the inode).
	require.NoError(t, fs.WriteFile(fd, make([]byte, 506)))
	// Overwrite with a single-extent file; 1 block should come back.
	require.NoError(t, fs.WriteFile(fd, make([]byte, 10)))

	problems, err := fs.Fsck()
	require.NoError(t, err)
	require.Empty(t, problems)
}

func TestMountWithoutMkfsFails(t *testing.T) {
	path := tempDisk(t)
	fs := tinyfs.New()
	err := fs.Mount(path)
	require.Error(t, err)
	var tfsErr *tinyfs.Error
	require.True(t, errors.As(err, &tfsErr))
	require.Equal(t, tinyfs.KindInvalidDisk, tfsErr.Kind)
}

func TestOperationsRequireMount(t *testing.T) {
	fs := tinyfs.New()
	_, err := fs.OpenFile("a")
	require.ErrorIs(t, err, tinyfs.ErrNoFSMounted)
}

func TestInvalidFD(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 2560))
	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()

	err := fs.CloseFile(999)
	require.ErrorIs(t, err, tinyfs.ErrInvalidFD)
}

// seeking to EOF then reading returns EOF_ERROR and does not advance the
// offset.
func TestSeekPastEOFThenRead(t *testing.T) {
	path := tempDisk(t)
	require.NoError(t, tinyfs.Mkfs(path, 2560))
	fs := tinyfs.New()
	require.NoError(t, fs.Mount(path))
	defer fs.Unmount()

	fd, err := fs.OpenFile("a")
	require.NoError(t, err)
	require.NoError(t, fs.WriteFile(fd, []byte("hi")))
	require.NoError(t, fs.Seek(fd, 2))

	_, err = fs.ReadByte(fd)
	require.ErrorIs(t, err, tinyfs.ErrEOF)

	_, err = fs.ReadByte(fd)
	require.ErrorIs(t, err, tinyfs.ErrEOF)
}
