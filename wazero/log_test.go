package wazero_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	hostfn "github.com/corral-dev/corral-host-sdk/wazero"
)

func Test_UnpackPtrLen(t *testing.T) {
	tests := []struct {
		name   string
		packed uint64
		ptr    uint32
		length uint32
	}{
		{"zero", 0, 0, 0},
		{"ptr only", uint64(0x1000) << 32, 0x1000, 0},
		{"len only", 128, 0, 128},
		{"both", uint64(0xDEAD)<<32 | 0xBEEF, 0xDEAD, 0xBEEF},
		{"max", 0xFFFFFFFFFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ptr, length := hostfn.UnpackPtrLen(tt.packed)
			assert.Equal(t, tt.ptr, ptr)
			assert.Equal(t, tt.length, length)
		})
	}
}
