package data

import (
	"math/rand/v2"
	"strconv"
)

// BlobsConfig configures a synthetic Gaussian-blobs dataset.
type BlobsConfig struct {
	NumClasses      int     // Number of classes (default: 3)
	SamplesPerClass int     // Samples generated per class (default: 100)
	Features        int     // Sample dimensionality (default: 2)
	Spread          float64 // Standard deviation around each class center (default: 0.5)
	Separation      float64 // Standard deviation of the class centers (default: 3)
	Seed            uint64
}

// Blobs generates an isotropic Gaussian-blobs classification dataset, useful
// for smoke-testing a model and training setup without any data files.
//
// Samples are interleaved by class (0, 1, ..., k-1, 0, 1, ...) so that any
// contiguous Split keeps every class represented.
func Blobs(config BlobsConfig) *Dataset {
	if config.NumClasses <= 0 {
		config.NumClasses = 3
	}
	if config.SamplesPerClass <= 0 {
		config.SamplesPerClass = 100
	}
	if config.Features <= 0 {
		config.Features = 2
	}
	if config.Spread == 0 {
		config.Spread = 0.5
	}
	if config.Separation == 0 {
		config.Separation = 3
	}
	rng := rand.New(rand.NewPCG(config.Seed, config.Seed^0x5851f42d4c957f2d))

	centers := make([][]float64, config.NumClasses)
	for c := range centers {
		centers[c] = make([]float64, config.Features)
		for j := range centers[c] {
			centers[c][j] = rng.NormFloat64() * config.Separation
		}
	}

	total := config.NumClasses * config.SamplesPerClass
	ds := &Dataset{
		Samples:     make([][]float32, total),
		Labels:      make([]int32, total),
		SampleShape: []int{config.Features},
		Classes:     make([]string, config.NumClasses),
	}
	for c := range ds.Classes {
		ds.Classes[c] = "blob" + strconv.Itoa(c)
	}
	for i := 0; i < total; i++ {
		c := i % config.NumClasses
		sample := make([]float32, config.Features)
		for j := range sample {
			sample[j] = float32(centers[c][j] + rng.NormFloat64()*config.Spread)
		}
		ds.Samples[i] = sample
		ds.Labels[i] = int32(c)
	}
	return ds
}
