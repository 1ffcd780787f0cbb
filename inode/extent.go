package inode

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/util"
)

// An Extent is a byte range within one data block.
type Extent struct {
	Bnum common.Bnum
	Off  uint64 // offset within the block
	Len  uint64
}

// Extents resolves the byte range [off, off+n) of a file of size bytes,
// stored in blocks, into per-block pieces. The range is clipped to size.
func Extents(blocks []common.Bnum, size uint64, off uint64, n uint64) []Extent {
	if off >= size {
		return nil
	}
	end := util.Min(off+n, size)
	var exts []Extent
	for off < end {
		i := off / disk.BlockSize
		boff := off % disk.BlockSize
		l := util.Min(disk.BlockSize-boff, end-off)
		exts = append(exts, Extent{Bnum: blocks[i], Off: boff, Len: l})
		off += l
	}
	return exts
}
