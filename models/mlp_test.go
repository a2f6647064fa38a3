package models

import (
	"testing"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/born-ml/born/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMLP(t *testing.T) {
	backend := cpu.New()

	m, err := NewMLP(backend, 784, []int{128}, 10)
	require.NoError(t, err)
	assert.Equal(t, "MLP(784-128-10)", m.String())
	assert.Len(t, m.Parameters(), 4)
	assert.Equal(t, 784*128+128+128*10+10, m.NumParameters())
	assert.Equal(t, 784, m.InFeatures())
	assert.Equal(t, 10, m.NumClasses())

	linear, err := NewMLP(backend, 4, nil, 3)
	require.NoError(t, err)
	assert.Equal(t, "MLP(4-3)", linear.String())
	assert.Equal(t, 4*3+3, linear.NumParameters())

	_, err = NewMLP(backend, 0, nil, 3)
	assert.Error(t, err)
	_, err = NewMLP(backend, 4, nil, 1)
	assert.Error(t, err)
	_, err = NewMLP(backend, 4, []int{8, 0}, 3)
	assert.Error(t, err)
}

func TestMLPForwardShapes(t *testing.T) {
	backend := cpu.New()
	m, err := NewMLP(backend, 12, []int{8, 6}, 3)
	require.NoError(t, err)

	tests := []struct {
		name  string
		shape tensor.Shape
		want  tensor.Shape
	}{
		{"flat batch", tensor.Shape{5, 12}, tensor.Shape{5, 3}},
		{"single sample", tensor.Shape{12}, tensor.Shape{1, 3}},
		{"images", tensor.Shape{2, 1, 3, 4}, tensor.Shape{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tensor.Randn[float32](tt.shape, backend)
			logits := m.Forward(input)
			assert.True(t, logits.Shape().Equal(tt.want), "got %v, want %v", logits.Shape(), tt.want)
		})
	}

	assert.Panics(t, func() {
		m.Forward(tensor.Randn[float32](tensor.Shape{2, 5}, backend))
	})
}

func TestMLPStateDictRoundTrip(t *testing.T) {
	backend := autodiff.New(cpu.New())
	src, err := NewMLP(backend, 6, []int{4}, 2)
	require.NoError(t, err)
	dst, err := NewMLP(backend, 6, []int{4}, 2)
	require.NoError(t, err)

	stateDict := src.StateDict()
	assert.Len(t, stateDict, 4)
	assert.Contains(t, stateDict, "layers.0.weight")
	assert.Contains(t, stateDict, "layers.1.bias")

	require.NoError(t, dst.LoadStateDict(stateDict))

	input := tensor.Randn[float32](tensor.Shape{3, 6}, backend)
	assert.InDeltaSlice(t, src.Forward(input).Data(), dst.Forward(input).Data(), 1e-6)

	other, err := NewMLP(backend, 6, []int{5}, 2)
	require.NoError(t, err)
	assert.Error(t, other.LoadStateDict(stateDict), "hidden size mismatch")

	delete(stateDict, "layers.1.weight")
	assert.Error(t, dst.LoadStateDict(stateDict))
}
