package data

import (
	"math/rand/v2"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Dataset is an in-memory labelled dataset.
type Dataset struct {
	Samples     [][]float32 // [num_samples][product(SampleShape)]
	Labels      []int32     // [num_samples], class indices
	SampleShape []int       // Shape of one sample, e.g. {784} or {1, 28, 28}
	Classes     []string    // Optional class names, indexed by label
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// NumFeatures returns the number of values in one sample.
func (d *Dataset) NumFeatures() int {
	n := 1
	for _, dim := range d.SampleShape {
		n *= dim
	}
	return n
}

// NumClasses returns the number of classes: len(Classes) when names are
// known, max(label)+1 otherwise.
func (d *Dataset) NumClasses() int {
	if len(d.Classes) > 0 {
		return len(d.Classes)
	}
	maxLabel := int32(-1)
	for _, l := range d.Labels {
		if l > maxLabel {
			maxLabel = l
		}
	}
	return int(maxLabel) + 1
}

// Validate checks sample sizes and label ranges.
func (d *Dataset) Validate() error {
	if len(d.Samples) != len(d.Labels) {
		return errors.Errorf("dataset has %d samples but %d labels", len(d.Samples), len(d.Labels))
	}
	if len(d.SampleShape) == 0 {
		return errors.New("dataset has no sample shape")
	}
	features := d.NumFeatures()
	numClasses := d.NumClasses()
	for i, s := range d.Samples {
		if len(s) != features {
			return errors.Errorf("sample %d has %d values, want %d (shape %v)", i, len(s), features, d.SampleShape)
		}
		if l := d.Labels[i]; l < 0 || int(l) >= numClasses {
			return errors.Errorf("label out of range [0, %d) at sample %d: %d", numClasses, i, l)
		}
	}
	return nil
}

// Split splits the dataset into train and validation sets.
//
// The last validationRatio fraction of samples becomes the validation set.
// Both results share the underlying sample slices with d.
func (d *Dataset) Split(validationRatio float64) (train, validation *Dataset) {
	numSamples := d.Len()
	splitIdx := int(float64(numSamples) * (1.0 - validationRatio))
	splitIdx = max(0, min(splitIdx, numSamples))

	train = &Dataset{
		Samples:     d.Samples[:splitIdx],
		Labels:      d.Labels[:splitIdx],
		SampleShape: d.SampleShape,
		Classes:     d.Classes,
	}
	validation = &Dataset{
		Samples:     d.Samples[splitIdx:],
		Labels:      d.Labels[splitIdx:],
		SampleShape: d.SampleShape,
		Classes:     d.Classes,
	}
	return train, validation
}

// Shuffle permutes samples and labels in place with a seeded generator.
func (d *Dataset) Shuffle(seed uint64) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(d.Len(), func(i, j int) {
		d.Samples[i], d.Samples[j] = d.Samples[j], d.Samples[i]
		d.Labels[i], d.Labels[j] = d.Labels[j], d.Labels[i]
	})
}

// Stats holds per-feature statistics used for standardization.
type Stats struct {
	Mean []float64
	Std  []float64
}

// Standardize rescales every feature to zero mean and unit variance in place
// and returns the statistics it used, so a validation set can be transformed
// with the training statistics via Stats.Apply.
//
// Constant features (std == 0) are only centered.
func (d *Dataset) Standardize() (*Stats, error) {
	if d.Len() == 0 {
		return nil, errors.New("cannot standardize an empty dataset")
	}
	features := d.NumFeatures()
	s := &Stats{
		Mean: make([]float64, features),
		Std:  make([]float64, features),
	}
	column := make([]float64, d.Len())
	for j := 0; j < features; j++ {
		for i, sample := range d.Samples {
			column[i] = float64(sample[j])
		}
		s.Mean[j], s.Std[j] = stat.PopMeanStdDev(column, nil)
	}
	if err := s.Apply(d); err != nil {
		return nil, err
	}
	return s, nil
}

// Apply standardizes d in place with these statistics.
func (s *Stats) Apply(d *Dataset) error {
	if d.NumFeatures() != len(s.Mean) {
		return errors.Errorf("stats have %d features, dataset has %d", len(s.Mean), d.NumFeatures())
	}
	for _, sample := range d.Samples {
		for j, v := range sample {
			std := s.Std[j]
			if std == 0 {
				std = 1
			}
			sample[j] = float32((float64(v) - s.Mean[j]) / std)
		}
	}
	return nil
}
