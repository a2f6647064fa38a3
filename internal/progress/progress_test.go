package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf, 2)
	require.NoError(t, bar.Advance(Stat{Name: "loss", Value: 1.23456}))
	require.NoError(t, bar.Advance(Stat{Name: "loss", Value: 0.5}, Stat{Name: "val_acc", Value: 0.875}))
	require.NoError(t, bar.Finish())

	out := buf.String()
	assert.Contains(t, out, "epoch 2/2")
	assert.Contains(t, out, "loss=0.5")
	assert.Contains(t, out, "val_acc=0.875")
	assert.NotContains(t, out, "\x1b[1m", "no bold escape codes when writing to a buffer")
}

func TestBarFinishEarly(t *testing.T) {
	var buf bytes.Buffer
	bar := New(&buf, 5)
	require.NoError(t, bar.Advance())
	require.NoError(t, bar.Finish())
	require.NoError(t, bar.Finish())
	assert.Contains(t, buf.String(), "epoch 1/5")
}

func TestDescribe(t *testing.T) {
	bar := &Bar{total: 1200}
	assert.Equal(t, "epoch 1,000/1,200 loss=0.1235", bar.describe(1000, []Stat{{Name: "loss", Value: 0.123456}}))
}
