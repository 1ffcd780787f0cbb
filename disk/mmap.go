package disk

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-flatfs/util"
)

var _ Disk = (*mmapDisk)(nil)

// mmapDisk is a disk image file mapped shared into memory. Writes land in
// the mapping; Barrier pushes them to the file.
type mmapDisk struct {
	f         *os.File
	data      []byte
	numBlocks uint64
}

// NewMmapDisk opens (or creates) the image at path and maps it. An image
// whose size is not exactly numBlocks blocks is reset to all zeros.
func NewMmapDisk(path string, numBlocks uint64) (*mmapDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open: %s", path)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "cannot stat file: %s", path)
	}
	sz := int64(numBlocks * BlockSize)
	if fi.Size() != sz {
		util.DPrintf(1, "NewMmapDisk: resetting %s (%d bytes, want %d)\n",
			path, fi.Size(), sz)
		if err := f.Truncate(0); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "while truncating %s", path)
		}
		if err := f.Truncate(sz); err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "while extending %s to %d", path, sz)
		}
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(sz),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "while mmapping %s with size: %d", path, sz)
	}
	return &mmapDisk{f: f, data: data, numBlocks: numBlocks}, nil
}

func (d *mmapDisk) block(a uint64) []byte {
	if a >= d.numBlocks {
		panic(fmt.Errorf("out-of-bounds access at %v", a))
	}
	off := a * BlockSize
	return d.data[off : off+BlockSize]
}

func (d *mmapDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		panic("buffer is not block-sized")
	}
	copy(buf, d.block(a))
	return nil
}

func (d *mmapDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *mmapDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		panic(fmt.Errorf("v is not block-sized (%d bytes)", len(v)))
	}
	copy(d.block(a), v)
	return nil
}

func (d *mmapDisk) Size() (uint64, error) {
	return d.numBlocks, nil
}

func (d *mmapDisk) Barrier() error {
	if err := unix.Msync(d.data, unix.MS_SYNC); err != nil {
		return errors.Wrapf(err, "while syncing %s", d.f.Name())
	}
	util.DPrintf(5, "barrier\n")
	return nil
}

// Close flushes the mapping, unmaps it and closes the image file.
func (d *mmapDisk) Close() error {
	if d.data == nil {
		return nil
	}
	if err := d.Barrier(); err != nil {
		return err
	}
	if err := unix.Munmap(d.data); err != nil {
		return errors.Wrapf(err, "while munmap file: %s", d.f.Name())
	}
	d.data = nil
	if err := d.f.Close(); err != nil {
		return errors.Wrapf(err, "while close file: %s", d.f.Name())
	}
	return nil
}
