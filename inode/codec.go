package inode

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/tchajed/goose/machine/disk"
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-flatfs/common"
)

// On-disk layout of a File slot (little-endian 32-bit integers):
//
//	0     tag
//	4     name, NUL-padded to MAXNAME bytes
//	260   size in bytes
//	264   NDIRECT direct pointers
//	2264  indirect slot
//	2268  zero padding to the end of the block
//
// An Indirect slot is the tag followed by NINDIRECT pointers. Unused
// pointers are written as NULLIDX.
const (
	OffName     uint64 = 4
	OffSize     uint64 = OffName + common.MAXNAME
	OffDirect   uint64 = OffSize + 4
	OffIndirect uint64 = OffDirect + common.NDIRECT*common.PTRSZ
	OffPtrs     uint64 = 4
)

func putPtr(enc marshal.Enc, bn uint64) {
	enc.PutInt32(uint32(bn))
}

func finish(enc marshal.Enc) disk.Block {
	blk := make(disk.Block, disk.BlockSize)
	copy(blk, enc.Finish())
	return blk
}

func encodeFile(f *File) disk.Block {
	if uint64(len(f.Name)) >= common.MAXNAME {
		panic("encodeFile: name too long")
	}
	if uint64(len(f.Direct)) > common.NDIRECT {
		panic("encodeFile: too many direct pointers")
	}
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(uint32(TagFile))
	name := make([]byte, common.MAXNAME)
	copy(name, f.Name)
	enc.PutBytes(name)
	enc.PutInt32(uint32(f.Size))
	for i := uint64(0); i < common.NDIRECT; i++ {
		if i < uint64(len(f.Direct)) {
			putPtr(enc, f.Direct[i])
		} else {
			enc.PutInt32(common.NULLIDX)
		}
	}
	if f.HasIndirect {
		putPtr(enc, uint64(f.Indirect))
	} else {
		enc.PutInt32(common.NULLIDX)
	}
	return finish(enc)
}

func encodeIndirect(ind *Indirect) disk.Block {
	if uint64(len(ind.Ptrs)) > common.NINDIRECT {
		panic("encodeIndirect: too many pointers")
	}
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(uint32(TagIndirect))
	for i := uint64(0); i < common.NINDIRECT; i++ {
		if i < uint64(len(ind.Ptrs)) {
			putPtr(enc, ind.Ptrs[i])
		} else {
			enc.PutInt32(common.NULLIDX)
		}
	}
	return finish(enc)
}

// Encode returns the block image of s.
func Encode(s Slot) disk.Block {
	switch s := s.(type) {
	case *File:
		return encodeFile(s)
	case *Indirect:
		return encodeIndirect(s)
	default:
		panic("Encode: unknown slot type")
	}
}

func decodeFile(dec marshal.Dec) (*File, error) {
	f := &File{}
	name := dec.GetBytes(common.MAXNAME)
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	f.Name = string(name)
	f.Size = uint64(dec.GetInt32())
	if f.Size > common.MaxAddressable {
		return nil, errors.Wrapf(ErrCorrupt, "%q: size %d", f.Name, f.Size)
	}

	// Only the pointers the size accounts for are meaningful. Records
	// written without sentinels leave the rest zero, which is a legal index.
	ndirect := NumBlocks(f.Size)
	if ndirect > common.NDIRECT {
		ndirect = common.NDIRECT
	}
	f.Direct = make([]common.Bnum, 0, ndirect)
	for i := uint64(0); i < common.NDIRECT; i++ {
		bn := dec.GetInt32()
		if i < ndirect {
			f.Direct = append(f.Direct, common.Bnum(bn))
		}
	}

	ind := dec.GetInt32()
	if NeedsIndirect(f.Size) && ind != common.NULLIDX {
		if uint64(ind) >= common.NINODE {
			return nil, errors.Wrapf(ErrCorrupt, "%q: indirect slot %d", f.Name, ind)
		}
		f.HasIndirect = true
		f.Indirect = common.Inum(ind)
	}
	return f, nil
}

func decodeIndirect(dec marshal.Dec) *Indirect {
	ind := &Indirect{Ptrs: make([]common.Bnum, 0)}
	done := false
	for i := uint64(0); i < common.NINDIRECT; i++ {
		bn := dec.GetInt32()
		if bn == common.NULLIDX {
			done = true
		}
		if !done {
			ind.Ptrs = append(ind.Ptrs, common.Bnum(bn))
		}
	}
	return ind
}

// Decode parses a slot block, dispatching on its tag.
func Decode(blk disk.Block) (Slot, error) {
	dec := marshal.NewDec(blk)
	tag := Tag(dec.GetInt32())
	switch tag {
	case TagFile:
		f, err := decodeFile(dec)
		if err != nil {
			return nil, err
		}
		return f, nil
	case TagIndirect:
		return decodeIndirect(dec), nil
	default:
		return nil, errors.Wrapf(ErrBadTag, "tag %d", tag)
	}
}
