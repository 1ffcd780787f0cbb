// Package inode defines the two record shapes that share the slot table and
// the direct plus single-indirect block addressing built on them.
//
// A slot is one disk block. Its first four bytes are a tag: 0 for a File,
// 1 for an Indirect block. A File holds its name, its size and up to NDIRECT
// data-block pointers; when its content needs more blocks it owns exactly one
// Indirect slot supplying up to NINDIRECT more.
package inode

import (
	"github.com/pkg/errors"
	"github.com/tchajed/goose/machine/disk"

	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/util"
)

type Tag uint32

const (
	TagFile     Tag = 0
	TagIndirect Tag = 1
)

var (
	ErrBadTag  = errors.New("unknown slot tag")
	ErrCorrupt = errors.New("corrupt block chain")
)

// Slot is a decoded slot: either *File or *Indirect.
type Slot interface {
	Tag() Tag
}

type File struct {
	Name string
	Size uint64

	// Direct holds the used direct pointers, in file order.
	Direct []common.Bnum

	// Indirect is meaningful only if HasIndirect.
	HasIndirect bool
	Indirect    common.Inum
}

func (f *File) Tag() Tag { return TagFile }

type Indirect struct {
	// Ptrs holds the used pointers, in file order.
	Ptrs []common.Bnum
}

func (ind *Indirect) Tag() Tag { return TagIndirect }

// NumBlocks is the number of data blocks holding size bytes.
func NumBlocks(size uint64) uint64 {
	return util.RoundUp(size, disk.BlockSize)
}

// NeedsIndirect reports whether a file of size bytes needs an indirect slot.
func NeedsIndirect(size uint64) bool {
	return NumBlocks(size) > common.NDIRECT
}

func (f *File) NumBlocks() uint64 {
	return NumBlocks(f.Size)
}

// Blocks returns the data blocks holding f's content, direct pointers first
// and then ind's. ind must be the decoded indirect slot when f.HasIndirect
// and nil otherwise. The result has exactly f.NumBlocks() entries.
func (f *File) Blocks(ind *Indirect) ([]common.Bnum, error) {
	need := f.NumBlocks()
	ndirect := util.Min(need, common.NDIRECT)
	if uint64(len(f.Direct)) < ndirect {
		return nil, errors.Wrapf(ErrCorrupt, "%q: %d direct pointers, need %d",
			f.Name, len(f.Direct), ndirect)
	}
	blocks := make([]common.Bnum, 0, need)
	blocks = append(blocks, f.Direct[:ndirect]...)
	if need > common.NDIRECT {
		if !f.HasIndirect || ind == nil {
			return nil, errors.Wrapf(ErrCorrupt, "%q: %d blocks without indirect slot",
				f.Name, need)
		}
		nind := need - common.NDIRECT
		if uint64(len(ind.Ptrs)) < nind {
			return nil, errors.Wrapf(ErrCorrupt, "%q: %d indirect pointers, need %d",
				f.Name, len(ind.Ptrs), nind)
		}
		blocks = append(blocks, ind.Ptrs[:nind]...)
	}
	for _, bn := range blocks {
		if bn >= common.NDATA {
			return nil, errors.Wrapf(ErrCorrupt, "%q: block %d out of range", f.Name, bn)
		}
	}
	return blocks, nil
}

// SetBlocks stores blocks as f's pointers, splitting them between the direct
// array and ind. ind may be nil when len(blocks) <= NDIRECT.
func (f *File) SetBlocks(blocks []common.Bnum, ind *Indirect) {
	n := util.Min(uint64(len(blocks)), common.NDIRECT)
	f.Direct = append([]common.Bnum(nil), blocks[:n]...)
	if uint64(len(blocks)) > common.NDIRECT {
		ind.Ptrs = append([]common.Bnum(nil), blocks[common.NDIRECT:]...)
	}
}
