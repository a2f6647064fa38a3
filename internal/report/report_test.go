package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainer/trainer"
)

func sampleHistory() trainer.History {
	return trainer.History{
		{Epoch: 0, TrainLoss: 12.5, Validation: &trainer.Metrics{Loss: 3.25, Accuracy: 0.5, Correct: 500, Samples: 1000}},
		{Epoch: 1, TrainLoss: 6.125, Validation: &trainer.Metrics{Loss: 1.5, Accuracy: 0.875, Correct: 875, Samples: 1000}},
	}
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(&buf, sampleHistory()))
	out := buf.String()
	assert.Contains(t, out, "Epoch")
	assert.Contains(t, out, "Val accuracy")
	assert.Contains(t, out, "6.125")
	assert.Contains(t, out, "87.5%")

	buf.Reset()
	require.NoError(t, Table(&buf, trainer.History{{Epoch: 0, TrainLoss: 1}}))
	assert.NotContains(t, buf.String(), "Val loss")
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "no epochs run", Summary(nil))
	assert.Equal(t, "best epoch 1: val loss 1.5, val accuracy 87.5% (875/1,000 correct)", Summary(sampleHistory()))
	assert.Equal(t, "best epoch 0: train loss 0.25", Summary(trainer.History{{Epoch: 0, TrainLoss: 0.25}}))
}

func TestPlotLosses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "losses.png")
	require.NoError(t, PlotLosses(sampleHistory(), "blobs", path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	assert.Error(t, PlotLosses(nil, "empty", path))
	assert.Error(t, PlotLosses(trainer.History{{TrainLoss: math.NaN()}}, "nan", path))
}

func TestCountByClass(t *testing.T) {
	counts, err := CountByClass([]string{"cat", "dog"}, []int32{0, 0, 1, 2}, []int32{0, 1, 1, 0})
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, ClassCount{Name: "cat", Correct: 1, Total: 2}, counts[0])
	assert.Equal(t, ClassCount{Name: "dog", Correct: 1, Total: 1}, counts[1])
	assert.Equal(t, ClassCount{Name: "2", Correct: 0, Total: 1}, counts[2])
	assert.Equal(t, 0.5, counts[0].Accuracy())
	assert.Zero(t, ClassCount{}.Accuracy())

	_, err = CountByClass(nil, []int32{0}, nil)
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, ClassTable(&buf, counts))
	assert.Contains(t, buf.String(), "cat")
	assert.Contains(t, buf.String(), "50%")
}
