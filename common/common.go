package common

import (
	"github.com/tchajed/goose/machine/disk"
)

const (
	NINODE    uint64 = 1024 // slots in the inode table
	NDATA     uint64 = 1024 // blocks in the data region
	NDIRECT   uint64 = 500  // direct pointers per file
	NINDIRECT uint64 = 1023 // pointers per indirect block
	MAXNAME   uint64 = 256  // on-disk width of the name field

	FLAGSZ uint64 = 4 // on-disk size of a bitmap flag
	PTRSZ  uint64 = 4 // on-disk size of a block or slot pointer

	// NULLIDX encodes an absent pointer on disk. It is never a legal index.
	NULLIDX uint32 = 0xFFFFFFFF
)

// Disk layout, in blocks. Each bitmap holds one 4-byte flag per entry, so
// 1024 flags fill exactly one block.
const (
	INODEBITMAP Bnum   = 0
	DATABITMAP  Bnum   = 1
	INODESTART  Bnum   = 2
	DATASTART   Bnum   = INODESTART + Bnum(NINODE)
	DISKBLOCKS  uint64 = uint64(DATASTART) + NDATA

	DiskSize uint64 = DISKBLOCKS * disk.BlockSize
)

const (
	// MaxFileSize is the largest file import accepts by default.
	MaxFileSize uint64 = 4 * 1024 * 1024

	// MaxAddressable is the largest size direct plus single-indirect
	// addressing can represent.
	MaxAddressable uint64 = (NDIRECT + NINDIRECT) * disk.BlockSize
)

// Inum names a slot of the inode table.
type Inum uint64

// Bnum names a block: a data-region block in file records, or an absolute
// disk block in the layer below.
type Bnum = uint64

// SlotBlock returns the disk block holding slot inum.
func SlotBlock(inum Inum) Bnum {
	return INODESTART + Bnum(inum)
}

// DataBlock returns the disk block holding data block bn.
func DataBlock(bn Bnum) Bnum {
	return DATASTART + bn
}
