package trainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochResultValues(t *testing.T) {
	r := EpochResult{Epoch: 2, TrainLoss: 1.5}
	assert.Equal(t, []float64{2, 1.5}, r.Values())

	r.Validation = &Metrics{Loss: 0.75, Accuracy: 0.5}
	assert.Equal(t, []float64{2, 1.5, 0.75, 0.5}, r.Values())
}

func TestHistory(t *testing.T) {
	var empty History
	_, ok := empty.Last()
	assert.False(t, ok)
	_, ok = empty.Best()
	assert.False(t, ok)
	assert.Empty(t, empty.TrainLosses())
	assert.Empty(t, empty.ValidationLosses())

	h := History{
		{Epoch: 0, TrainLoss: 3, Validation: &Metrics{Loss: 2, Accuracy: 0.4}},
		{Epoch: 1, TrainLoss: 2, Validation: &Metrics{Loss: 1, Accuracy: 0.7}},
		{Epoch: 2, TrainLoss: 1, Validation: &Metrics{Loss: 1.5, Accuracy: 0.6}},
	}
	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, 2, last.Epoch)

	best, ok := h.Best()
	require.True(t, ok)
	assert.Equal(t, 1, best.Epoch, "lowest validation loss wins")

	assert.Equal(t, []float64{3, 2, 1}, h.TrainLosses())
	assert.Equal(t, []float64{2, 1, 1.5}, h.ValidationLosses())
}

func TestHistoryBestWithoutValidation(t *testing.T) {
	h := History{
		{Epoch: 0, TrainLoss: 3},
		{Epoch: 1, TrainLoss: 1},
		{Epoch: 2, TrainLoss: 2},
	}
	best, ok := h.Best()
	require.True(t, ok)
	assert.Equal(t, 1, best.Epoch)
	assert.Nil(t, h.ValidationLosses())
}
