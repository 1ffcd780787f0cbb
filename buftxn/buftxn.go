package buftxn

import (
	"github.com/pkg/errors"

	"github.com/mit-pdos/go-flatfs/buf"
	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/util"
)

//
// Buffered operation layer used by the file system. An operation reads
// blocks through its BufTxn, modifies them in memory, and either commits
// the dirty blocks to disk in place or is dropped, in which case the disk
// never sees any of its writes. Commit is not crash-atomic.
//

type BufTxn struct {
	d    disk.Disk
	bufs *buf.BufMap // map of bufs read/written by this operation
}

func Begin(d disk.Disk) *BufTxn {
	trans := &BufTxn{
		d:    d,
		bufs: buf.MkBufMap(),
	}
	util.DPrintf(5, "Begin: %p\n", trans)
	return trans
}

// ReadBuf returns the operation's copy of block blkno, loading it from disk
// on first use.
func (buftxn *BufTxn) ReadBuf(blkno common.Bnum) (*buf.Buf, error) {
	b := buftxn.bufs.Lookup(blkno)
	if b == nil {
		blk, err := buftxn.d.Read(blkno)
		if err != nil {
			return nil, errors.Wrapf(err, "read block %d", blkno)
		}
		b = buf.MkBuf(blkno, blk)
		buftxn.bufs.Insert(b)
	}
	return b, nil
}

// Caller overwrites blkno without reading it
func (buftxn *BufTxn) OverWrite(blkno common.Bnum, data disk.Block) {
	b := buftxn.bufs.Lookup(blkno)
	if b == nil {
		b = buf.MkBuf(blkno, data)
		buftxn.bufs.Insert(b)
	} else {
		if uint64(len(data)) != disk.BlockSize {
			panic("overwrite")
		}
		b.Blk = data
	}
	b.SetDirty()
}

func (buftxn *BufTxn) NDirty() uint64 {
	return buftxn.bufs.Ndirty()
}

// Commit writes the dirty bufs of this operation to disk, in block order.
func (buftxn *BufTxn) Commit() error {
	util.DPrintf(3, "Commit %p: %d dirty\n", buftxn, buftxn.NDirty())
	bufs := buftxn.bufs.DirtyBufs()
	for _, b := range bufs {
		if err := buftxn.d.Write(b.Blkno, b.Blk); err != nil {
			return errors.Wrapf(err, "write block %d", b.Blkno)
		}
	}
	return nil
}
