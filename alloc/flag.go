package alloc

import (
	"github.com/mit-pdos/go-flatfs/buf"
)

// bufFlag is one flag inside a loaded bitmap block
type bufFlag struct {
	b   *buf.Buf
	off uint64
}

func (f *bufFlag) get() bool {
	return f.b.FlagGet(f.off)
}

func (f *bufFlag) put(used bool) {
	f.b.FlagPut(f.off, used)
}
