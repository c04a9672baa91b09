package tinyfs

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyfs/tinyfs/block"
	"github.com/tinyfs/tinyfs/testhelper"
)

func TestStoreReadRawReportsShortRead(t *testing.T) {
	stub := &testhelper.FileImpl{
		Reader: func(b []byte, offset int64) (int, error) {
			return len(b) - 1, nil // always one byte short of a full block
		},
	}
	st := newStoreFromWritable(stub)

	_, err := st.readRaw(block.RootInode)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindReadError, kind)
}

func TestStoreWriteRawReportsShortWrite(t *testing.T) {
	stub := &testhelper.FileImpl{
		Writer: func(b []byte, offset int64) (int, error) {
			return len(b) - 1, nil
		},
	}
	st := newStoreFromWritable(stub)

	err := st.writeRaw(block.RootInode, [block.Size]byte{})
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindWriteError, kind)
}

func TestStoreReadSuperblockPropagatesUnderlyingReadError(t *testing.T) {
	stub := &testhelper.FileImpl{
		Reader: func(b []byte, offset int64) (int, error) {
			return 0, errReadFailed
		},
	}
	st := newStoreFromWritable(stub)

	_, err := st.readSuperblock()
	require.ErrorIs(t, err, ErrReadError)
}

var errReadFailed = readFailure{}

type readFailure struct{}

func (readFailure) Error() string { return "simulated device read failure" }
