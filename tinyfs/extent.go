package tinyfs

import "github.com/tinyfs/tinyfs/block"

// extentChain implements the file extent chain: a per-file singly linked
// list of FileExtent blocks, head stored in the inode.
type extentChain struct {
	s  *store
	fl *freeList
}

// truncateToEmpty frees every extent reachable from in and zeroes its
// extent head and size. A no-op if the file has no extents.
func (e *extentChain) truncateToEmpty(in *block.Inode) error {
	if !in.FirstFileExtentPtr.Valid() {
		return nil
	}
	if err := e.fl.freeChain(in.FirstFileExtentPtr); err != nil {
		return err
	}
	in.FirstFileExtentPtr = block.None
	in.FileSize = 0
	return nil
}

// writeAll truncates the file's existing extent chain, then allocates and
// links a fresh chain of ceil(len(data)/block.DataSize) extents carrying
// data, zero-padding the trailing bytes of the last extent. On
// OUT_OF_BLOCKS the file's prior content is already gone (truncation
// happens first); the caller propagates the error unchanged.
func (e *extentChain) writeAll(in *block.Inode, data []byte) error {
	if err := e.truncateToEmpty(in); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}

	needed := (len(data) + block.DataSize - 1) / block.DataSize
	var first, prev block.Num = block.None, block.None

	for i := 0; i < needed; i++ {
		n, err := e.fl.allocate()
		if err != nil {
			return err
		}
		if i == 0 {
			first = n
		} else {
			// link the previously allocated extent to this one now that
			// we know its block number.
			prevExtent, err := e.s.readFileExtent(prev)
			if err != nil {
				return err
			}
			prevExtent.NextDataBlock = n
			if err := e.s.writeFileExtent(prev, prevExtent); err != nil {
				return err
			}
		}

		var fe block.FileExtent
		start := i * block.DataSize
		end := start + block.DataSize
		if end > len(data) {
			end = len(data)
		}
		copy(fe.Data[:], data[start:end])
		fe.NextDataBlock = block.None
		if err := e.s.writeFileExtent(n, fe); err != nil {
			return err
		}
		prev = n
	}

	in.FirstFileExtentPtr = first
	in.FileSize = uint16(len(data))
	return nil
}

// readByteAt returns the byte at offset within the file described by in.
func (e *extentChain) readByteAt(in block.Inode, offset int) (byte, error) {
	if offset < 0 || offset >= int(in.FileSize) {
		return 0, newErr(KindEOF, nil)
	}
	extentIdx := offset / block.DataSize
	within := offset % block.DataSize

	cur := in.FirstFileExtentPtr
	for i := 0; i < extentIdx; i++ {
		if !cur.Valid() {
			return 0, newErrf(KindReadError, "extent chain ended early for file %q", in.Name)
		}
		fe, err := e.s.readFileExtent(cur)
		if err != nil {
			return 0, err
		}
		cur = fe.NextDataBlock
	}
	if !cur.Valid() {
		return 0, newErrf(KindReadError, "extent chain ended early for file %q", in.Name)
	}
	fe, err := e.s.readFileExtent(cur)
	if err != nil {
		return 0, err
	}
	return fe.Data[within], nil
}
