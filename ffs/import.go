package ffs

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-flatfs/buftxn"
	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/inode"
	"github.com/mit-pdos/go-flatfs/util"
)

// checkSpace fails with ErrNoSpace unless nblocks data blocks are free.
// Nothing is reserved; the caller allocates them in the same operation.
func (fs *FS) checkSpace(t *buftxn.BufTxn, nblocks uint64) error {
	free, err := fs.balloc.NumFree(t)
	if err != nil {
		return err
	}
	if nblocks > free {
		return errors.Wrapf(ErrNoSpace, "need %d blocks, %d free", nblocks, free)
	}
	return nil
}

// Import creates a File called name holding size bytes read from r.
//
// The source is copied one block at a time into fresh data blocks, direct
// pointers first; the indirect slot is allocated when the 501st block is
// needed. If r ends early, the File is truncated to the bytes actually read
// and no error is reported. On failure nothing is written.
func (fs *FS) Import(name string, r io.Reader, size uint64) error {
	if err := checkName(name); err != nil {
		return err
	}
	// The size ceiling is checked before free space, so an oversized file
	// reports ErrSizeLimitExceeded even when it would not fit either.
	if size > fs.opts.MaxFileSize {
		return errors.Wrapf(ErrSizeLimitExceeded, "%q: %d bytes, limit %d",
			name, size, fs.opts.MaxFileSize)
	}
	t := buftxn.Begin(fs.d)
	if err := fs.checkSpace(t, inode.NumBlocks(size)); err != nil {
		return errors.WithMessagef(err, "import %q", name)
	}

	inum, err := fs.allocInode(t)
	if err != nil {
		return errors.WithMessagef(err, "import %q", name)
	}
	f := &inode.File{Name: name}
	var ind *inode.Indirect
	blocks := make([]common.Bnum, 0, inode.NumBlocks(size))

	var total uint64
	for total < size {
		n := util.Min(disk.BlockSize, size-total)
		blk := make(disk.Block, disk.BlockSize)
		m, rerr := io.ReadFull(r, blk[:n])
		if m == 0 {
			util.DPrintf(2, "Import %q: source ended at %d of %d: %v\n",
				name, total, size, rerr)
			break
		}
		if uint64(len(blocks)) == common.NDIRECT {
			iind, err := fs.allocInode(t)
			if err != nil {
				return errors.WithMessagef(err, "import %q: indirect slot", name)
			}
			f.HasIndirect = true
			f.Indirect = iind
			ind = &inode.Indirect{}
		}
		bn, err := fs.allocBlock(t)
		if err != nil {
			return errors.WithMessagef(err, "import %q", name)
		}
		t.OverWrite(common.DataBlock(bn), blk)
		blocks = append(blocks, bn)
		total += uint64(m)
		if rerr != nil {
			util.DPrintf(2, "Import %q: short source, %d of %d: %v\n",
				name, total, size, rerr)
			break
		}
	}

	f.Size = total
	f.SetBlocks(blocks, ind)
	fs.writeSlot(t, inum, f)
	if ind != nil {
		fs.writeSlot(t, f.Indirect, ind)
	}
	util.DPrintf(1, "Import %q: inode %d, %d bytes, %d blocks\n",
		name, inum, total, len(blocks))
	return t.Commit()
}

// ImportFile imports the host file at path under name.
func (fs *FS) ImportFile(path string, name string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(ErrSourceUnreadable, "%s: %v", path, err)
	}
	if !fi.Mode().IsRegular() {
		return errors.Wrapf(ErrSourceUnreadable, "%s: not a regular file", path)
	}
	src, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(ErrSourceUnreadable, "%s: %v", path, err)
	}
	defer src.Close()
	return fs.Import(name, src, uint64(fi.Size()))
}
