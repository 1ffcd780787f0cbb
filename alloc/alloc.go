package alloc

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/mit-pdos/go-flatfs/addr"
	"github.com/mit-pdos/go-flatfs/buftxn"
	"github.com/mit-pdos/go-flatfs/common"
	"github.com/mit-pdos/go-flatfs/util"
)

var ErrNoFree = errors.New("no free entry")

// Alloc hands out numbers 0..max-1 backed by a bitmap of 4-byte flags
// starting at block start. A search begins at a uniformly random number and
// probes linearly with wraparound, so repeated runs do not pile up at 0.
type Alloc struct {
	start common.Bnum
	max   uint64
	rnd   *rand.Rand
}

func MkAlloc(start common.Bnum, max uint64, rnd *rand.Rand) *Alloc {
	a := &Alloc{
		start: start,
		max:   max,
		rnd:   rnd,
	}
	return a
}

// Load the bitmap block holding flag n and the flag's offset in it
func (a *Alloc) lockFlag(buftxn *buftxn.BufTxn, n uint64) (*bufFlag, error) {
	if n >= a.max {
		panic("alloc: number out of range")
	}
	fa := addr.MkFlagAddr(a.start, n)
	b, err := buftxn.ReadBuf(fa.Blkno)
	if err != nil {
		return nil, err
	}
	return &bufFlag{b: b, off: fa.Off}, nil
}

// Returns a free number, marked used in buftxn
func (a *Alloc) findFreeFlag(buftxn *buftxn.BufTxn) (uint64, error) {
	start := uint64(a.rnd.Int63n(int64(a.max)))
	for i := uint64(0); i < a.max; i++ {
		num := (start + i) % a.max
		f, err := a.lockFlag(buftxn, num)
		if err != nil {
			return 0, err
		}
		if !f.get() {
			f.put(true)
			util.DPrintf(10, "findFreeFlag: s %d num %d\n", start, num)
			return num, nil
		}
	}
	return 0, ErrNoFree
}

func (a *Alloc) AllocNum(buftxn *buftxn.BufTxn) (uint64, error) {
	return a.findFreeFlag(buftxn)
}

// FreeNum clears the flag for num. Freeing a free number is a no-op.
func (a *Alloc) FreeNum(buftxn *buftxn.BufTxn, num uint64) error {
	f, err := a.lockFlag(buftxn, num)
	if err != nil {
		return err
	}
	f.put(false)
	return nil
}

func (a *Alloc) IsUsed(buftxn *buftxn.BufTxn, num uint64) (bool, error) {
	f, err := a.lockFlag(buftxn, num)
	if err != nil {
		return false, err
	}
	return f.get(), nil
}

// NumFree counts clear flags by scanning the whole bitmap.
func (a *Alloc) NumFree(buftxn *buftxn.BufTxn) (uint64, error) {
	var n uint64
	for num := uint64(0); num < a.max; num++ {
		used, err := a.IsUsed(buftxn, num)
		if err != nil {
			return 0, err
		}
		if !used {
			n++
		}
	}
	return n, nil
}

// Used returns every flag in number order.
func (a *Alloc) Used(buftxn *buftxn.BufTxn) ([]bool, error) {
	flags := make([]bool, a.max)
	for num := range flags {
		used, err := a.IsUsed(buftxn, uint64(num))
		if err != nil {
			return nil, err
		}
		flags[num] = used
	}
	return flags, nil
}
