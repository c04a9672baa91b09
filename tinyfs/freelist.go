package tinyfs

import "github.com/tinyfs/tinyfs/block"

// freeList implements the free-block manager: a singly linked list of
// FreeBlocks, head stored in the superblock.
type freeList struct {
	s *store
}

// allocate pops the head of the free list, persists the new head in the
// superblock, and returns the popped block number. The caller must
// immediately overwrite that block with its intended typed content; until
// then the disk is transiently inconsistent but recoverable, because the
// superblock has already moved past it.
func (fl *freeList) allocate() (block.Num, error) {
	sb, err := fl.s.readSuperblock()
	if err != nil {
		return block.None, err
	}
	if !sb.FreeBlockPtr.Valid() {
		return block.None, newErr(KindOutOfBlocks, nil)
	}
	head := sb.FreeBlockPtr
	fb, err := fl.s.readFreeBlock(head)
	if err != nil {
		return block.None, err
	}
	sb.FreeBlockPtr = fb.NextFreeBlock
	if err := fl.s.writeSuperblock(sb); err != nil {
		return block.None, err
	}
	return head, nil
}

// free prepends a single block to the free list.
func (fl *freeList) free(n block.Num) error {
	sb, err := fl.s.readSuperblock()
	if err != nil {
		return err
	}
	if err := fl.s.writeFreeBlock(n, block.FreeBlock{NextFreeBlock: sb.FreeBlockPtr}); err != nil {
		return err
	}
	sb.FreeBlockPtr = n
	return fl.s.writeSuperblock(sb)
}

// freeChain splices an entire chain of FileExtent blocks, whose
// nextDataBlock pointers already form a valid linked list, onto the free
// list in a single walk of the chain: the chain's tail is re-pointed at
// the current free-list head, then the superblock's head becomes the
// chain's head. No existing free-list nodes are visited.
func (fl *freeList) freeChain(head block.Num) error {
	if !head.Valid() {
		return nil
	}
	sb, err := fl.s.readSuperblock()
	if err != nil {
		return err
	}

	cur := head
	for {
		fe, err := fl.s.readFileExtent(cur)
		if err != nil {
			return err
		}
		next := fe.NextDataBlock
		if !next.Valid() {
			// cur is the tail: point it at the existing free-list head.
			if err := fl.s.writeFreeBlock(cur, block.FreeBlock{NextFreeBlock: sb.FreeBlockPtr}); err != nil {
				return err
			}
			break
		}
		// interior node: recycle in place, pointing at the next node in
		// the chain being freed (not the existing free list yet).
		if err := fl.s.writeFreeBlock(cur, block.FreeBlock{NextFreeBlock: next}); err != nil {
			return err
		}
		cur = next
	}

	sb.FreeBlockPtr = head
	return fl.s.writeSuperblock(sb)
}
