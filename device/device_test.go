package device

import (
	"runtime"
	"testing"

	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"cpu", CPU},
		{"CPU", CPU},
		{"", CPU},
		{" webgpu ", WebGPU},
		{"gpu", WebGPU},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, "Parse(%q)", tt.in)
		assert.Equal(t, tt.want, got, "Parse(%q)", tt.in)
	}

	_, err := Parse("cuda")
	assert.ErrorIs(t, err, ErrUnknownDevice)
}

func TestKindString(t *testing.T) {
	for _, k := range []Kind{CPU, WebGPU} {
		parsed, err := Parse(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestMatches(t *testing.T) {
	assert.True(t, CPU.Matches(tensor.CPU))
	assert.False(t, WebGPU.Matches(tensor.CPU))
	assert.False(t, CPU.Matches(tensor.CUDA))
}

func TestDescribe(t *testing.T) {
	assert.True(t, CPU.Available())
	assert.Contains(t, Describe(CPU), "CPU: ")
	assert.Contains(t, Describe(CPU), "cores")

	if runtime.GOOS != "windows" {
		assert.False(t, WebGPU.Available())
		assert.Equal(t, "WebGPU (not available on this system)", Describe(WebGPU))
	}
}
