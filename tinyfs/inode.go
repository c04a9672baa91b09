package tinyfs

import "github.com/tinyfs/tinyfs/block"

// inodeDir implements the inode directory: a singly linked list of inodes
// beginning at the root inode, block 1.
type inodeDir struct {
	s  *store
	fl *freeList
}

// lookup walks the chain from the root inode looking for name, skipping
// the root's own name from the match (the root is a head sentinel, never
// a user file). Returns the inode's block number and decoded contents, or
// ok=false if no match is found.
func (d *inodeDir) lookup(name string) (block.Num, block.Inode, bool, error) {
	cur := block.RootInode
	first := true
	for cur.Valid() {
		in, err := d.s.readInode(cur)
		if err != nil {
			return block.None, block.Inode{}, false, err
		}
		if !first && in.Name == name {
			return cur, in, true, nil
		}
		first = false
		cur = in.NextInodePtr
	}
	return block.None, block.Inode{}, false, nil
}

// append walks to the tail of the inode chain, allocates a block for the
// new inode, links the tail to it, and writes the new inode with
// NextInodePtr = None.
func (d *inodeDir) append(in block.Inode) (block.Num, error) {
	tailNum := block.RootInode
	tail, err := d.s.readInode(tailNum)
	if err != nil {
		return block.None, err
	}
	for tail.NextInodePtr.Valid() {
		tailNum = tail.NextInodePtr
		tail, err = d.s.readInode(tailNum)
		if err != nil {
			return block.None, err
		}
	}

	newNum, err := d.fl.allocate()
	if err != nil {
		return block.None, err
	}
	in.SelfBlock = newNum
	in.NextInodePtr = block.None
	if err := d.s.writeInode(newNum, in); err != nil {
		// roll back the allocation: don't leave a block neither free nor
		// reachable on failure.
		_ = d.fl.free(newNum)
		return block.None, err
	}

	tail.NextInodePtr = newNum
	if err := d.s.writeInode(tailNum, tail); err != nil {
		return block.None, err
	}
	return newNum, nil
}

// unlink splices inodeBlock out of the chain and frees it. inodeBlock must
// not be the root inode.
func (d *inodeDir) unlink(inodeBlock block.Num) error {
	prevNum := block.RootInode
	prev, err := d.s.readInode(prevNum)
	if err != nil {
		return err
	}
	for prev.NextInodePtr.Valid() {
		if prev.NextInodePtr == inodeBlock {
			target, err := d.s.readInode(inodeBlock)
			if err != nil {
				return err
			}
			prev.NextInodePtr = target.NextInodePtr
			if err := d.s.writeInode(prevNum, prev); err != nil {
				return err
			}
			return d.fl.free(inodeBlock)
		}
		prevNum = prev.NextInodePtr
		prev, err = d.s.readInode(prevNum)
		if err != nil {
			return err
		}
	}
	return newErrf(KindNoInodeMatchingFD, "inode block %d not found in inode chain", inodeBlock)
}
