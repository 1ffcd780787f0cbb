package buf

import (
	"sort"

	"github.com/mit-pdos/go-flatfs/common"
)

//
// A map from block numbers to bufs.
//

type BufMap struct {
	bufs map[common.Bnum]*Buf
}

func MkBufMap() *BufMap {
	a := &BufMap{
		bufs: make(map[common.Bnum]*Buf),
	}
	return a
}

func (bmap *BufMap) Insert(buf *Buf) {
	bmap.bufs[buf.Blkno] = buf
}

func (bmap *BufMap) Lookup(blkno common.Bnum) *Buf {
	return bmap.bufs[blkno]
}

func (bmap *BufMap) Ndirty() uint64 {
	n := uint64(0)
	for _, buf := range bmap.bufs {
		if buf.IsDirty() {
			n += 1
		}
	}
	return n
}

// DirtyBufs returns the dirty bufs in block order.
func (bmap *BufMap) DirtyBufs() []*Buf {
	bufs := make([]*Buf, 0)
	for _, b := range bmap.bufs {
		if b.IsDirty() {
			bufs = append(bufs, b)
		}
	}
	sort.Slice(bufs, func(i, j int) bool { return bufs[i].Blkno < bufs[j].Blkno })
	return bufs
}
