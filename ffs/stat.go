package ffs

import (
	"github.com/mit-pdos/go-flatfs/buftxn"
	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/inode"
	"github.com/mit-pdos/go-flatfs/util"
)

type FileInfo struct {
	Inum common.Inum
	Name string
	Size uint64
}

// SlotInfo is one in-use slot of the table. Err is set when the slot does
// not decode.
type SlotInfo struct {
	Inum common.Inum
	Slot inode.Slot
	Err  error
}

// Slots returns every in-use slot in table order.
func (fs *FS) Slots() ([]SlotInfo, error) {
	t := buftxn.Begin(fs.d)
	used, err := fs.ialloc.Used(t)
	if err != nil {
		return nil, err
	}
	var slots []SlotInfo
	for i, u := range used {
		if !u {
			continue
		}
		inum := common.Inum(i)
		b, err := t.ReadBuf(common.SlotBlock(inum))
		if err != nil {
			return nil, err
		}
		s, err := inode.Decode(b.Blk)
		slots = append(slots, SlotInfo{Inum: inum, Slot: s, Err: err})
	}
	return slots, nil
}

// List returns the live Files in table order.
func (fs *FS) List() ([]FileInfo, error) {
	slots, err := fs.Slots()
	if err != nil {
		return nil, err
	}
	files := make([]FileInfo, 0)
	for _, si := range slots {
		if f, ok := si.Slot.(*inode.File); ok {
			files = append(files, FileInfo{Inum: si.Inum, Name: f.Name, Size: f.Size})
		} else if si.Err != nil {
			util.DPrintf(1, "List: slot %d: %v\n", si.Inum, si.Err)
		}
	}
	return files, nil
}

// Stat describes the first File called name.
func (fs *FS) Stat(name string) (FileInfo, error) {
	t := buftxn.Begin(fs.d)
	inum, f, err := fs.lookup(t, name)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Inum: inum, Name: f.Name, Size: f.Size}, nil
}

// Bitmaps returns the inode and data-block usage flags.
func (fs *FS) Bitmaps() ([]bool, []bool, error) {
	t := buftxn.Begin(fs.d)
	inodes, err := fs.ialloc.Used(t)
	if err != nil {
		return nil, nil, err
	}
	blocks, err := fs.balloc.Used(t)
	if err != nil {
		return nil, nil, err
	}
	return inodes, blocks, nil
}

// FreeInodes counts free slots, including those usable as indirect blocks.
func (fs *FS) FreeInodes() (uint64, error) {
	return fs.ialloc.NumFree(buftxn.Begin(fs.d))
}

// FreeBlocks counts free data blocks.
func (fs *FS) FreeBlocks() (uint64, error) {
	return fs.balloc.NumFree(buftxn.Begin(fs.d))
}
