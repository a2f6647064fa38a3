package data

import (
	"math"
	"os"
	"slices"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
)

// CSVConfig describes how to read a tabular dataset.
type CSVConfig struct {
	LabelColumn string  // Name of the label column (default: "label")
	Scale       float32 // Multiplier applied to every feature (0 = 1, e.g. 1/255 for pixels)
	MaxSamples  int     // Maximum number of rows to load (0 = all)
}

// LoadCSV loads a CSV file with a header row, one label column and numeric
// feature columns (e.g. the Kaggle MNIST format "label,pixel0,...,pixel783").
//
// Labels that are all non-negative integers are used as class indices
// directly; otherwise every distinct label string becomes a class, in sorted
// order, and Dataset.Classes holds the names.
func LoadCSV(path string, config CSVConfig) (*Dataset, error) {
	if config.LabelColumn == "" {
		config.LabelColumn = "label"
	}
	if config.Scale == 0 {
		config.Scale = 1
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", path)
	}
	defer func() { _ = f.Close() }()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.WithTypes(map[string]series.Type{config.LabelColumn: series.String}))
	if df.Err != nil {
		return nil, errors.Wrapf(df.Err, "failed to read CSV %q", path)
	}
	if !slices.Contains(df.Names(), config.LabelColumn) {
		return nil, errors.Errorf("CSV %q has no label column %q (columns: %v)", path, config.LabelColumn, df.Names())
	}
	if config.MaxSamples > 0 && df.Nrow() > config.MaxSamples {
		df = df.Subset(seq(config.MaxSamples))
	}

	labels, classes := encodeLabels(df.Col(config.LabelColumn).Records())

	features := df.Drop(config.LabelColumn)
	numRows, numFeatures := features.Nrow(), features.Ncol()
	if numFeatures == 0 {
		return nil, errors.Errorf("CSV %q has no feature columns", path)
	}
	ds := &Dataset{
		Samples:     make([][]float32, numRows),
		Labels:      labels,
		SampleShape: []int{numFeatures},
		Classes:     classes,
	}
	for i := range ds.Samples {
		ds.Samples[i] = make([]float32, numFeatures)
	}
	for j, name := range features.Names() {
		for i, v := range features.Col(name).Float() {
			if math.IsNaN(v) {
				return nil, errors.Errorf("CSV %q: non-numeric value in column %q, row %d", path, name, i+1)
			}
			ds.Samples[i][j] = float32(v) * config.Scale
		}
	}
	return ds, nil
}

// encodeLabels maps label strings to class indices.
func encodeLabels(records []string) (labels []int32, classes []string) {
	labels = make([]int32, len(records))
	numeric := true
	for i, r := range records {
		v, err := strconv.Atoi(r)
		if err != nil || v < 0 {
			numeric = false
			break
		}
		labels[i] = int32(v)
	}
	if numeric {
		return labels, nil
	}

	classes = slices.Clone(records)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	for i, r := range records {
		idx, _ := slices.BinarySearch(classes, r)
		labels[i] = int32(idx)
	}
	return labels, classes
}

func seq(n int) []int {
	indexes := make([]int, n)
	for i := range indexes {
		indexes[i] = i
	}
	return indexes
}
