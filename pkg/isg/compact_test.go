package isg

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
)

func TestCompactEntitySizeIsExactly24Bytes(t *testing.T) {
	var c CompactEntity
	assert.Equal(t, uintptr(24), unsafe.Sizeof(c))
}
