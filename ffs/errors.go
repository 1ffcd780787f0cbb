package ffs

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound             = errors.New("file not found")
	ErrNoSpace              = errors.New("not enough space")
	ErrNoInode              = errors.WithMessage(ErrNoSpace, "no free inode")
	ErrSizeLimitExceeded    = errors.New("file too large")
	ErrSourceUnreadable     = errors.New("cannot read source")
	ErrIndirectTypeMismatch = errors.New("indirect block type mismatch")
	ErrInvalidName          = errors.New("invalid file name")
	ErrNameTooLong          = errors.New("file name too long")
	ErrBadDisk              = errors.New("disk does not hold a file system")
)
