package ffs

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-flatfs/buftxn"
	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/inode"
	"github.com/mit-pdos/go-flatfs/util"
)

// Export writes exactly the content of the first File called name to w.
//
// The block chain is resolved before anything is written, so a File whose
// indirect slot is not an Indirect block fails with ErrIndirectTypeMismatch
// without emitting any bytes.
func (fs *FS) Export(name string, w io.Writer) error {
	t := buftxn.Begin(fs.d)
	_, f, err := fs.lookup(t, name)
	if err != nil {
		return err
	}
	blocks, err := fs.chain(t, f)
	if err != nil {
		return err
	}
	remaining := f.Size
	for _, bn := range blocks {
		b, err := t.ReadBuf(common.DataBlock(bn))
		if err != nil {
			return err
		}
		n := util.Min(remaining, disk.BlockSize)
		if _, err := w.Write(b.Blk[:n]); err != nil {
			return errors.Wrapf(err, "export %q", name)
		}
		remaining -= n
	}
	return nil
}

// ReadAt reads up to len(p) bytes of the first File called name starting at
// byte off. It returns io.EOF when fewer than len(p) bytes remain.
func (fs *FS) ReadAt(name string, p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.Errorf("negative offset %d", off)
	}
	t := buftxn.Begin(fs.d)
	_, f, err := fs.lookup(t, name)
	if err != nil {
		return 0, err
	}
	blocks, err := fs.chain(t, f)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range inode.Extents(blocks, f.Size, uint64(off), uint64(len(p))) {
		b, err := t.ReadBuf(common.DataBlock(e.Bnum))
		if err != nil {
			return n, err
		}
		n += copy(p[n:], b.Blk[e.Off:e.Off+e.Len])
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
