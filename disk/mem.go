package disk

import (
	"fmt"
)

var _ Disk = (*memDisk)(nil)

type memDisk struct {
	blocks [][BlockSize]byte
}

// NewMemDisk returns a zeroed in-memory disk of numBlocks blocks.
func NewMemDisk(numBlocks uint64) *memDisk {
	blocks := make([][BlockSize]byte, numBlocks)
	return &memDisk{blocks: blocks}
}

func (d *memDisk) ReadTo(a uint64, buf Block) error {
	if uint64(len(buf)) != BlockSize {
		panic("buffer is not block-sized")
	}
	if a >= uint64(len(d.blocks)) {
		panic(fmt.Errorf("out-of-bounds read at %v", a))
	}
	copy(buf, d.blocks[a][:])
	return nil
}

func (d *memDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	err := d.ReadTo(a, buf)
	return buf, err
}

func (d *memDisk) Write(a uint64, v Block) error {
	if uint64(len(v)) != BlockSize {
		panic(fmt.Errorf("v is not block-sized (%d bytes)", len(v)))
	}
	if a >= uint64(len(d.blocks)) {
		panic(fmt.Errorf("out-of-bounds write at %v", a))
	}
	copy(d.blocks[a][:], v)
	return nil
}

func (d *memDisk) Size() (uint64, error) {
	return uint64(len(d.blocks)), nil
}

func (d *memDisk) Barrier() error { return nil }

func (d *memDisk) Close() error { return nil }
