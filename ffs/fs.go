// Package ffs is a flat file system over a fixed-size disk.
//
// The disk holds an inode bitmap, a data bitmap, a table of NINODE slots and
// NDATA data blocks (see package common for the layout). Files live in a
// single namespace and are addressed by name; names are not required to be
// unique, and every lookup resolves to the first match in slot order.
//
// Each operation runs in its own buftxn.BufTxn and commits only when it
// succeeds, so a failed operation leaves the disk as it found it. An FS is
// not safe for concurrent use, and a disk must not be opened by two FS
// values (or two processes) at once.
package ffs

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-flatfs/alloc"
	"github.com/mit-pdos/go-flatfs/buftxn"
	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/inode"
	"github.com/mit-pdos/go-flatfs/util"
)

type Options struct {
	// MaxFileSize bounds Import. It is clamped to common.MaxAddressable.
	MaxFileSize uint64

	// Seed seeds the allocators' random start; 0 seeds from the clock.
	Seed int64
}

func DefaultOptions() Options {
	return Options{
		MaxFileSize: common.MaxFileSize,
	}
}

type FS struct {
	d      disk.Disk
	opts   Options
	ialloc *alloc.Alloc
	balloc *alloc.Alloc
}

// Open returns the file system on d. An all-zero disk is an empty file
// system.
func Open(d disk.Disk, opts Options) (*FS, error) {
	sz, err := d.Size()
	if err != nil {
		return nil, errors.Wrap(err, "disk size")
	}
	if sz != common.DISKBLOCKS {
		return nil, errors.Wrapf(ErrBadDisk, "%d blocks, want %d", sz, common.DISKBLOCKS)
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = common.MaxFileSize
	}
	opts.MaxFileSize = util.Min(opts.MaxFileSize, common.MaxAddressable)
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(seed))
	fs := &FS{
		d:      d,
		opts:   opts,
		ialloc: alloc.MkAlloc(common.INODEBITMAP, common.NINODE, rnd),
		balloc: alloc.MkAlloc(common.DATABITMAP, common.NDATA, rnd),
	}
	util.DPrintf(1, "Open: %d blocks, max file size %d\n", sz, opts.MaxFileSize)
	return fs, nil
}

// MaxFileSize is the largest file Import accepts.
func (fs *FS) MaxFileSize() uint64 {
	return fs.opts.MaxFileSize
}

// Flush makes all committed operations durable.
func (fs *FS) Flush() error {
	return fs.d.Barrier()
}

// Close flushes and releases the disk.
func (fs *FS) Close() error {
	if err := fs.Flush(); err != nil {
		return err
	}
	return fs.d.Close()
}

func checkName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidName, "empty name")
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return errors.Wrapf(ErrInvalidName, "%q contains NUL", name)
		}
	}
	if uint64(len(name)) >= common.MAXNAME {
		return errors.Wrapf(ErrNameTooLong, "%d bytes, limit %d", len(name), common.MAXNAME-1)
	}
	return nil
}

func (fs *FS) allocInode(t *buftxn.BufTxn) (common.Inum, error) {
	n, err := fs.ialloc.AllocNum(t)
	if errors.Is(err, alloc.ErrNoFree) {
		return 0, ErrNoInode
	}
	if err != nil {
		return 0, err
	}
	return common.Inum(n), nil
}

func (fs *FS) allocBlock(t *buftxn.BufTxn) (common.Bnum, error) {
	n, err := fs.balloc.AllocNum(t)
	if errors.Is(err, alloc.ErrNoFree) {
		return 0, errors.WithMessage(ErrNoSpace, "no free data block")
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (fs *FS) readSlot(t *buftxn.BufTxn, inum common.Inum) (inode.Slot, error) {
	if uint64(inum) >= common.NINODE {
		panic("readSlot: slot out of range")
	}
	b, err := t.ReadBuf(common.SlotBlock(inum))
	if err != nil {
		return nil, err
	}
	return inode.Decode(b.Blk)
}

func (fs *FS) writeSlot(t *buftxn.BufTxn, inum common.Inum, s inode.Slot) {
	t.OverWrite(common.SlotBlock(inum), inode.Encode(s))
}

// lookup finds the first live File named name, in slot order.
func (fs *FS) lookup(t *buftxn.BufTxn, name string) (common.Inum, *inode.File, error) {
	used, err := fs.ialloc.Used(t)
	if err != nil {
		return 0, nil, err
	}
	for i, u := range used {
		if !u {
			continue
		}
		inum := common.Inum(i)
		s, err := fs.readSlot(t, inum)
		if err != nil {
			util.DPrintf(1, "lookup: skipping slot %d: %v\n", inum, err)
			continue
		}
		if f, ok := s.(*inode.File); ok && f.Name == name {
			return inum, f, nil
		}
	}
	return 0, nil, errors.Wrapf(ErrNotFound, "%q", name)
}

// chain returns f's data blocks in file order, loading its indirect slot.
func (fs *FS) chain(t *buftxn.BufTxn, f *inode.File) ([]common.Bnum, error) {
	var ind *inode.Indirect
	if f.HasIndirect {
		s, err := fs.readSlot(t, f.Indirect)
		// a slot that does not decode as an Indirect is a mismatch, not a
		// disk error
		if err != nil && !errors.Is(err, inode.ErrBadTag) && !errors.Is(err, inode.ErrCorrupt) {
			return nil, err
		}
		var ok bool
		ind, ok = s.(*inode.Indirect)
		if !ok {
			return nil, errors.Wrapf(ErrIndirectTypeMismatch, "%q: slot %d", f.Name, f.Indirect)
		}
	}
	return f.Blocks(ind)
}
