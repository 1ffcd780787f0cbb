// Package debugfs renders the contents of a file system for people: the
// file listing, a dump of both bitmaps and the slot table, and a usage
// summary.
package debugfs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/disk"
	"github.com/mit-pdos/go-flatfs/ffs"
	"github.com/mit-pdos/go-flatfs/inode"
	"github.com/mit-pdos/go-flatfs/util"
)

// Flags printed per bitmap line.
const flagsPerLine = 64

// Number of direct pointers shown per File.
const directShown = 5

// Source is the read-only view of a file system that Dump and Usage need.
// *ffs.FS implements it.
type Source interface {
	Bitmaps() ([]bool, []bool, error)
	Slots() ([]ffs.SlotInfo, error)
	FreeInodes() (uint64, error)
	FreeBlocks() (uint64, error)
}

// List writes one "name size" line per file.
func List(w io.Writer, files []ffs.FileInfo) error {
	bw := bufio.NewWriter(w)
	for _, f := range files {
		fmt.Fprintf(bw, "%s %d\n", f.Name, f.Size)
	}
	return bw.Flush()
}

func writeBitmap(w *bufio.Writer, used []bool) {
	for i, u := range used {
		if u {
			w.WriteByte('1')
		} else {
			w.WriteByte('0')
		}
		if (i+1)%flagsPerLine == 0 {
			w.WriteByte('\n')
		}
	}
}

func writeFile(w *bufio.Writer, inum common.Inum, f *inode.File) {
	fmt.Fprintf(w, "[Inode %d] FILE: %s | Size: %d | Direct: ", inum, f.Name, f.Size)
	for i := 0; i < len(f.Direct) && i < directShown; i++ {
		fmt.Fprintf(w, "%d ", f.Direct[i])
	}
	if f.HasIndirect {
		fmt.Fprintf(w, "| Indirect: inode %d", f.Indirect)
	}
	w.WriteByte('\n')
}

// Dump writes both bitmaps followed by a summary of every in-use slot.
// Slots that do not decode are left out of the summary.
func Dump(w io.Writer, src Source) error {
	inodes, blocks, err := src.Bitmaps()
	if err != nil {
		return err
	}
	slots, err := src.Slots()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("=== Inode Bitmap (used=1 / free=0) ===\n")
	writeBitmap(bw, inodes)
	bw.WriteString("\n=== Data Block Bitmap (used=1 / free=0) ===\n")
	writeBitmap(bw, blocks)
	bw.WriteString("\n=== Inode Table Summary ===\n")
	for _, si := range slots {
		switch s := si.Slot.(type) {
		case *inode.File:
			writeFile(bw, si.Inum, s)
		case *inode.Indirect:
			fmt.Fprintf(bw, "[Inode %d] INDIRECT BLOCK\n", si.Inum)
		default:
			util.DPrintf(1, "Dump: slot %d: %v\n", si.Inum, si.Err)
		}
	}
	return bw.Flush()
}

// Usage writes free slot and block counts and the free data capacity.
func Usage(w io.Writer, src Source) error {
	ninode, err := src.FreeInodes()
	if err != nil {
		return err
	}
	nblock, err := src.FreeBlocks()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "inodes: %d free / %d\nblocks: %d free / %d (%s of %s free)\n",
		ninode, common.NINODE, nblock, common.NDATA,
		humanize.IBytes(nblock*disk.BlockSize),
		humanize.IBytes(common.NDATA*disk.BlockSize))
	return err
}
