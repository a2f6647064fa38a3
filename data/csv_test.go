package data_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/trainer/data"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadCSV_NumericLabels(t *testing.T) {
	path := writeFile(t, "mnist.csv", "label,p0,p1,p2\n5,0,255,51\n0,255,0,0\n3,1,2,3\n")

	ds, err := data.LoadCSV(path, data.CSVConfig{Scale: 1.0 / 255})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []int{3}, ds.SampleShape)
	assert.Equal(t, []int32{5, 0, 3}, ds.Labels)
	assert.Nil(t, ds.Classes)
	assert.InDelta(t, 1.0, ds.Samples[0][1], 1e-6)
	assert.InDelta(t, 0.2, ds.Samples[0][2], 1e-6)

	limited, err := data.LoadCSV(path, data.CSVConfig{MaxSamples: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, limited.Len())
	assert.Equal(t, float32(255), limited.Samples[0][1])
}

func TestLoadCSV_StringLabels(t *testing.T) {
	path := writeFile(t, "iris.csv", "sepal,petal,species\n5.1,1.4,setosa\n7.0,4.7,versicolor\n4.9,1.3,setosa\n")

	ds, err := data.LoadCSV(path, data.CSVConfig{LabelColumn: "species"})
	require.NoError(t, err)
	require.NoError(t, ds.Validate())
	assert.Equal(t, []string{"setosa", "versicolor"}, ds.Classes)
	assert.Equal(t, []int32{0, 1, 0}, ds.Labels)
	assert.InDelta(t, 4.7, ds.Samples[1][1], 1e-6)
}

func TestLoadCSV_Errors(t *testing.T) {
	_, err := data.LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), data.CSVConfig{})
	assert.Error(t, err)

	noLabel := writeFile(t, "nolabel.csv", "a,b\n1,2\n")
	_, err = data.LoadCSV(noLabel, data.CSVConfig{})
	assert.ErrorContains(t, err, "no label column")

	onlyLabel := writeFile(t, "onlylabel.csv", "label\n1\n2\n")
	_, err = data.LoadCSV(onlyLabel, data.CSVConfig{})
	assert.ErrorContains(t, err, "no feature columns")
}
