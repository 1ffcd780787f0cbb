package addr

import (
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-flatfs/common"
)

// Addr identifies the start of a disk object.
//
// Blkno is the block number containing the object, and Off is the location of
// the object within the block (expressed as a byte offset). The size of the
// object is determined by the context in which Addr is used.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bytes
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// MkFlagAddr returns the address of flag n in the bitmap starting at block
// start.
func MkFlagAddr(start common.Bnum, n uint64) Addr {
	flagsPerBlock := disk.BlockSize / common.FLAGSZ
	i := n / flagsPerBlock
	off := (n % flagsPerBlock) * common.FLAGSZ
	return MkAddr(start+common.Bnum(i), off)
}
