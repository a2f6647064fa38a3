package data_test

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainer/data"
)

func writeIDX(t *testing.T, path string, header []uint32, payload []byte, compress bool) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, header))
	buf.Write(payload)

	contents := buf.Bytes()
	if compress {
		var gz bytes.Buffer
		w := gzip.NewWriter(&gz)
		_, err := w.Write(contents)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		contents = gz.Bytes()
	}
	require.NoError(t, os.WriteFile(path, contents, 0o644))
}

func writeTinyMNIST(t *testing.T, dir, prefix string, compress bool) {
	t.Helper()
	suffix := ""
	if compress {
		suffix = ".gz"
	}
	// Three 2x2 images.
	pixels := []byte{
		0, 255, 0, 255,
		255, 255, 255, 255,
		0, 0, 0, 51,
	}
	writeIDX(t, filepath.Join(dir, prefix+"-images-idx3-ubyte"+suffix), []uint32{2051, 3, 2, 2}, pixels, compress)
	writeIDX(t, filepath.Join(dir, prefix+"-labels-idx1-ubyte"+suffix), []uint32{2049, 3}, []byte{7, 1, 9}, compress)
}

func TestLoadMNIST(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		writeTinyMNIST(t, dir, "train", compress)

		ds, err := data.LoadMNIST(dir, true, 0)
		require.NoError(t, err)
		require.NoError(t, ds.Validate())
		assert.Equal(t, 3, ds.Len())
		assert.Equal(t, []int{4}, ds.SampleShape)
		assert.Equal(t, []int32{7, 1, 9}, ds.Labels)
		assert.Equal(t, []float32{0, 1, 0, 1}, ds.Samples[0])
		assert.InDelta(t, 0.2, ds.Samples[2][3], 1e-6)

		limited, err := data.LoadMNIST(dir, true, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, limited.Len())

		_, err = data.LoadMNIST(dir, false, 0)
		assert.Error(t, err, "test split files do not exist")
	}
}

func TestReadIDX_BadMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels")
	writeIDX(t, path, []uint32{2051, 1}, []byte{0}, false)

	_, err := data.ReadIDXLabels(path)
	assert.ErrorContains(t, err, "invalid magic number")

	_, _, _, err = data.ReadIDXImages(path)
	assert.Error(t, err)
}

func TestReadIDX_Truncated(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "images")
	writeIDX(t, path, []uint32{2051, 2, 2, 2}, []byte{1, 2, 3, 4, 5}, false)

	_, _, _, err := data.ReadIDXImages(path)
	assert.Error(t, err)
}
