package main

import (
	"github.com/pkg/errors"

	"github.com/born-ml/trainer/data"
)

// loadDataset reads the dataset selected by -format.
func loadDataset(opts *options) (*data.Dataset, error) {
	switch opts.format {
	case "synthetic":
		return data.Blobs(data.BlobsConfig{
			NumClasses:      3,
			SamplesPerClass: opts.maxSamples / 3, // 0 selects the default
			Features:        8,
			Seed:            opts.seed,
		}), nil
	case "idx":
		return data.LoadMNIST(opts.data, opts.useTrain, opts.maxSamples)
	case "csv":
		return data.LoadCSV(opts.data, data.CSVConfig{
			LabelColumn: opts.labelColumn,
			MaxSamples:  opts.maxSamples,
		})
	case "images":
		return data.LoadImageFolder(opts.data, data.ImageConfig{
			Width:       opts.imageSize,
			Height:      opts.imageSize,
			RGB:         opts.rgb,
			MaxPerClass: opts.maxSamples,
		})
	case "text":
		return data.LoadTextCSV(opts.data, data.TextConfig{
			LabelColumn: opts.labelColumn,
			TextColumn:  opts.textColumn,
			MaxSamples:  opts.maxSamples,
		}, nil)
	}
	return nil, errors.Errorf("unknown format %q", opts.format)
}

// prepare shuffles and splits ds, optionally standardizing both halves with
// the training statistics, and wraps them in loaders. The validation loader
// is nil when -val-ratio is 0.
func prepare(ds *data.Dataset, opts *options) (trainLoader, valLoader *data.SliceLoader, err error) {
	if err := ds.Validate(); err != nil {
		return nil, nil, err
	}
	ds.Shuffle(opts.seed)
	trainSet, valSet := ds, (*data.Dataset)(nil)
	if opts.valRatio > 0 {
		trainSet, valSet = ds.Split(opts.valRatio)
		if valSet.Len() == 0 || trainSet.Len() == 0 {
			return nil, nil, errors.Errorf("-val-ratio=%g leaves an empty split of %d samples", opts.valRatio, ds.Len())
		}
	}

	if opts.standardize {
		stats, err := trainSet.Standardize()
		if err != nil {
			return nil, nil, err
		}
		if valSet != nil {
			if err := stats.Apply(valSet); err != nil {
				return nil, nil, err
			}
		}
	}

	trainLoader, err = data.NewSliceLoader(trainSet, data.LoaderConfig{
		BatchSize: opts.batchSize,
		Shuffle:   true,
		Seed:      opts.seed,
	})
	if err != nil {
		return nil, nil, err
	}
	if valSet != nil {
		valLoader, err = data.NewSliceLoader(valSet, data.LoaderConfig{BatchSize: max(opts.batchSize, 256)})
		if err != nil {
			return nil, nil, err
		}
	}
	return trainLoader, valLoader, nil
}
