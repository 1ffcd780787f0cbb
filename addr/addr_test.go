package addr

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-flatfs/common"
)

func TestMkFlagAddr(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(MkAddr(common.INODEBITMAP, 0), MkFlagAddr(common.INODEBITMAP, 0))
	assert.Equal(MkAddr(common.DATABITMAP, 4), MkFlagAddr(common.DATABITMAP, 1))
	assert.Equal(MkAddr(common.DATABITMAP, 4092), MkFlagAddr(common.DATABITMAP, 1023))
	assert.Equal(MkAddr(11, 8), MkFlagAddr(10, 1026), "flags spill into the next block")
}
