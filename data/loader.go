package data

import (
	"io"
	"math/rand/v2"

	"github.com/pkg/errors"
)

// LoaderConfig configures a SliceLoader.
type LoaderConfig struct {
	BatchSize int    // Samples per batch (default: 32)
	Shuffle   bool   // Reshuffle sample order at every Reset
	Seed      uint64 // Seed for the shuffling generator
	DropLast  bool   // Drop the last batch if it is smaller than BatchSize
}

// SliceLoader batches an in-memory Dataset.
//
// Batches are assembled on demand, one Yield at a time, and the last batch
// may be smaller than BatchSize unless DropLast is set.
type SliceLoader struct {
	ds      *Dataset
	config  LoaderConfig
	rng     *rand.Rand
	indices []int
	pos     int
}

var _ Loader = (*SliceLoader)(nil)

// NewSliceLoader creates a loader over ds.
func NewSliceLoader(ds *Dataset, config LoaderConfig) (*SliceLoader, error) {
	if ds == nil {
		return nil, errors.New("nil dataset")
	}
	if config.BatchSize == 0 {
		config.BatchSize = 32
	}
	if config.BatchSize < 0 {
		return nil, errors.Errorf("invalid batch size %d", config.BatchSize)
	}
	if err := ds.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid dataset")
	}

	l := &SliceLoader{
		ds:      ds,
		config:  config,
		indices: make([]int, ds.Len()),
	}
	if config.Shuffle {
		l.rng = rand.New(rand.NewPCG(config.Seed, config.Seed+1))
	}
	l.Reset()
	return l, nil
}

// Dataset returns the dataset being batched.
func (l *SliceLoader) Dataset() *Dataset {
	return l.ds
}

// NumBatches returns the number of batches per epoch.
func (l *SliceLoader) NumBatches() int {
	n, bs := l.ds.Len(), l.config.BatchSize
	if l.config.DropLast {
		return n / bs
	}
	return (n + bs - 1) / bs
}

// Reset starts a new epoch, reshuffling if configured.
func (l *SliceLoader) Reset() {
	for i := range l.indices {
		l.indices[i] = i
	}
	if l.rng != nil {
		l.rng.Shuffle(len(l.indices), func(i, j int) {
			l.indices[i], l.indices[j] = l.indices[j], l.indices[i]
		})
	}
	l.pos = 0
}

// Yield returns the next batch, or io.EOF at the end of the epoch.
func (l *SliceLoader) Yield() (*Batch, error) {
	numSamples := len(l.indices)
	if l.pos >= numSamples {
		return nil, io.EOF
	}
	end := min(l.pos+l.config.BatchSize, numSamples)
	size := end - l.pos
	if l.config.DropLast && size < l.config.BatchSize {
		l.pos = numSamples
		return nil, io.EOF
	}

	features := l.ds.NumFeatures()
	batch := &Batch{
		Inputs: make([]float32, size*features),
		Shape:  append([]int{size}, l.ds.SampleShape...),
		Labels: make([]int32, size),
	}
	for j := 0; j < size; j++ {
		idx := l.indices[l.pos+j]
		copy(batch.Inputs[j*features:(j+1)*features], l.ds.Samples[idx])
		batch.Labels[j] = l.ds.Labels[idx]
	}
	l.pos = end
	return batch, nil
}
