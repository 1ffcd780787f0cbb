// buf manages loaded disk blocks and the sub-block objects packed into them
package buf

import (
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/util"
)

// A Buf is a disk block loaded (or about to be written) by an operation
type Buf struct {
	Blkno common.Bnum
	Blk   disk.Block
	dirty bool // has this block been written to?
}

func MkBuf(blkno common.Bnum, blk disk.Block) *Buf {
	if uint64(len(blk)) != disk.BlockSize {
		panic("MkBuf: not a block")
	}
	b := &Buf{
		Blkno: blkno,
		Blk:   blk,
		dirty: false,
	}
	return b
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}

// FlagGet reports whether the bitmap flag at byte offset off is set.
func (buf *Buf) FlagGet(off uint64) bool {
	dec := marshal.NewDec(buf.Blk[off : off+common.FLAGSZ])
	return dec.GetInt32() != 0
}

// FlagPut sets or clears the bitmap flag at byte offset off.
func (buf *Buf) FlagPut(off uint64, used bool) {
	var v uint32
	if used {
		v = 1
	}
	enc := marshal.NewEnc(common.FLAGSZ)
	enc.PutInt32(v)
	copy(buf.Blk[off:off+common.FLAGSZ], enc.Finish())
	util.DPrintf(20, "FlagPut: %d/%d -> %v\n", buf.Blkno, off, used)
	buf.SetDirty()
}
