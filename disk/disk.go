// Package disk provides the block device the file system lives on.
//
// A disk is a fixed number of BlockSize blocks. Reads and writes copy whole
// blocks; addresses at or beyond Size() are caller errors and panic.
package disk

import (
	gdisk "github.com/tchajed/goose/machine/disk"
)

// Block is a 4096-byte buffer
type Block = gdisk.Block

const BlockSize uint64 = gdisk.BlockSize

// Disk provides access to a logical block-based disk
type Disk interface {
	// Read reads a disk block by address
	//
	// Expects a < Size().
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a and stores the result in b
	//
	// Expects a < Size().
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address
	//
	// Expects a < Size().
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks
	Size() (uint64, error)

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}
