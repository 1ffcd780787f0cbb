package ffs

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-flatfs/buftxn"
	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/inode"
	"github.com/mit-pdos/go-flatfs/util"
)

// salvage collects what a File with a damaged chain still owns: its
// in-range direct pointers and, if its indirect slot really is an Indirect
// block, that slot and its in-range pointers.
func (fs *FS) salvage(t *buftxn.BufTxn, f *inode.File) ([]common.Bnum, bool) {
	need := f.NumBlocks()
	var blocks []common.Bnum
	add := func(ptrs []common.Bnum) {
		for _, bn := range ptrs {
			if uint64(len(blocks)) == need {
				return
			}
			if bn < common.NDATA {
				blocks = append(blocks, bn)
			}
		}
	}
	add(f.Direct)
	if !f.HasIndirect {
		return blocks, false
	}
	s, err := fs.readSlot(t, f.Indirect)
	ind, ok := s.(*inode.Indirect)
	if err != nil || !ok {
		return blocks, false
	}
	add(ind.Ptrs)
	return blocks, true
}

// Delete releases the first File called name: its data blocks, its indirect
// slot if any, and its own slot. Block contents are left in place.
//
// A File whose chain is damaged is still deleted. Out-of-range pointers are
// skipped, and an indirect slot that is not an Indirect block stays
// allocated.
func (fs *FS) Delete(name string) error {
	t := buftxn.Begin(fs.d)
	inum, f, err := fs.lookup(t, name)
	if err != nil {
		return err
	}
	freeInd := f.HasIndirect
	blocks, err := fs.chain(t, f)
	if errors.Is(err, ErrIndirectTypeMismatch) || errors.Is(err, inode.ErrCorrupt) {
		util.DPrintf(1, "Delete %q: salvaging damaged chain: %v\n", name, err)
		blocks, freeInd = fs.salvage(t, f)
	} else if err != nil {
		return err
	}
	for _, bn := range blocks {
		if err := fs.balloc.FreeNum(t, bn); err != nil {
			return err
		}
	}
	if freeInd {
		if err := fs.ialloc.FreeNum(t, uint64(f.Indirect)); err != nil {
			return err
		}
	}
	if err := fs.ialloc.FreeNum(t, uint64(inum)); err != nil {
		return err
	}
	util.DPrintf(1, "Delete %q: inode %d, %d blocks\n", name, inum, len(blocks))
	return t.Commit()
}

// Rename changes the name of the first File called oldName. The new name
// may duplicate an existing one.
func (fs *FS) Rename(oldName string, newName string) error {
	if err := checkName(newName); err != nil {
		return err
	}
	t := buftxn.Begin(fs.d)
	inum, f, err := fs.lookup(t, oldName)
	if err != nil {
		return err
	}
	f.Name = newName
	fs.writeSlot(t, inum, f)
	util.DPrintf(1, "Rename %q -> %q: inode %d\n", oldName, newName, inum)
	return t.Commit()
}

// Copy creates dstName with the content of the first File called srcName.
// Every block is duplicated into a freshly allocated one; the copy shares
// nothing with its source. On failure nothing is written.
func (fs *FS) Copy(srcName string, dstName string) error {
	if err := checkName(dstName); err != nil {
		return err
	}
	t := buftxn.Begin(fs.d)
	_, src, err := fs.lookup(t, srcName)
	if err != nil {
		return err
	}
	srcBlocks, err := fs.chain(t, src)
	if err != nil {
		return err
	}
	if err := fs.checkSpace(t, uint64(len(srcBlocks))); err != nil {
		return errors.WithMessagef(err, "copy %q", srcName)
	}

	inum, err := fs.allocInode(t)
	if err != nil {
		return errors.WithMessagef(err, "copy %q", srcName)
	}
	dst := &inode.File{Name: dstName, Size: src.Size}
	var ind *inode.Indirect
	if src.HasIndirect {
		iind, err := fs.allocInode(t)
		if err != nil {
			return errors.WithMessagef(err, "copy %q: indirect slot", srcName)
		}
		dst.HasIndirect = true
		dst.Indirect = iind
		ind = &inode.Indirect{}
	}

	blocks := make([]common.Bnum, 0, len(srcBlocks))
	remaining := src.Size
	for _, sbn := range srcBlocks {
		b, err := t.ReadBuf(common.DataBlock(sbn))
		if err != nil {
			return err
		}
		bn, err := fs.allocBlock(t)
		if err != nil {
			return errors.WithMessagef(err, "copy %q", srcName)
		}
		n := util.Min(remaining, disk.BlockSize)
		blk := make(disk.Block, disk.BlockSize)
		copy(blk, b.Blk[:n])
		t.OverWrite(common.DataBlock(bn), blk)
		blocks = append(blocks, bn)
		remaining -= n
	}

	dst.SetBlocks(blocks, ind)
	fs.writeSlot(t, inum, dst)
	if ind != nil {
		fs.writeSlot(t, dst.Indirect, ind)
	}
	util.DPrintf(1, "Copy %q -> %q: inode %d, %d blocks\n",
		srcName, dstName, inum, len(blocks))
	return t.Commit()
}
