package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tchajed/goose/machine/disk"
)

func TestFlags(t *testing.T) {
	assert := assert.New(t)
	b := MkBuf(1, make(disk.Block, disk.BlockSize))
	assert.False(b.FlagGet(8))
	assert.False(b.IsDirty())

	b.FlagPut(8, true)
	assert.True(b.FlagGet(8))
	assert.True(b.IsDirty())
	assert.Equal([]byte{1, 0, 0, 0}, b.Blk[8:12], "flags are little-endian 32-bit cells")
	assert.False(b.FlagGet(4), "neighbouring flag untouched")
	assert.False(b.FlagGet(12), "neighbouring flag untouched")

	b.FlagPut(8, false)
	assert.False(b.FlagGet(8))
	b.FlagPut(8, false)
	assert.False(b.FlagGet(8), "clearing twice is harmless")
}

func TestFlagAnyNonZero(t *testing.T) {
	blk := make(disk.Block, disk.BlockSize)
	blk[2] = 0x80
	b := MkBuf(0, blk)
	assert.True(t, b.FlagGet(0))
}

func TestBufMapDirty(t *testing.T) {
	assert := assert.New(t)
	m := MkBufMap()
	for _, bn := range []uint64{9, 3, 5} {
		m.Insert(MkBuf(bn, make(disk.Block, disk.BlockSize)))
	}
	assert.Equal(uint64(0), m.Ndirty())

	m.Lookup(9).SetDirty()
	m.Lookup(3).SetDirty()
	assert.Equal(uint64(2), m.Ndirty())

	dirty := m.DirtyBufs()
	assert.Len(dirty, 2)
	assert.Equal(uint64(3), dirty[0].Blkno)
	assert.Equal(uint64(9), dirty[1].Blkno)
	assert.Nil(m.Lookup(4))
}

func TestMkBufPanicsOnShortBlock(t *testing.T) {
	assert.Panics(t, func() { MkBuf(0, make([]byte, 10)) })
}
