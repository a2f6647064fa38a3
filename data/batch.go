package data

import (
	"github.com/pkg/errors"
)

// ErrInvalidBatch is returned when a batch's inputs, shape and labels disagree.
var ErrInvalidBatch = errors.New("invalid batch")

// Batch is a group of samples processed together in one optimizer step.
//
// Inputs holds the samples flattened in row-major order. Shape describes the
// full batch tensor, with Shape[0] the number of samples:
//
//	[batch_size, features]           for flat samples (MLP input)
//	[batch_size, channels, h, w]     for images kept in NCHW layout
type Batch struct {
	Inputs []float32
	Shape  []int
	Labels []int32
}

// Size returns the number of samples in the batch.
func (b *Batch) Size() int {
	return len(b.Labels)
}

// Validate checks that inputs, shape and labels are consistent.
func (b *Batch) Validate() error {
	if len(b.Shape) == 0 {
		return errors.Wrap(ErrInvalidBatch, "empty shape")
	}
	if b.Shape[0] != len(b.Labels) {
		return errors.Wrapf(ErrInvalidBatch, "shape %v has %d samples but %d labels were given",
			b.Shape, b.Shape[0], len(b.Labels))
	}
	n := 1
	for _, dim := range b.Shape {
		if dim <= 0 {
			return errors.Wrapf(ErrInvalidBatch, "shape %v has a non-positive dimension", b.Shape)
		}
		n *= dim
	}
	if n != len(b.Inputs) {
		return errors.Wrapf(ErrInvalidBatch, "shape %v requires %d inputs, got %d", b.Shape, n, len(b.Inputs))
	}
	return nil
}

// Loader is a batch-iterable data source.
//
// Yield returns the next batch of the current epoch, or io.EOF once the epoch
// is exhausted. Reset rewinds the loader to the start of a new epoch; the
// trainer calls it before every pass, so a Loader can be reused across epochs.
type Loader interface {
	Reset()
	Yield() (*Batch, error)
}
