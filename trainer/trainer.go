package trainer

import (
	"context"
	"fmt"
	"io"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/trainer/data"
	"github.com/born-ml/trainer/device"
	"github.com/born-ml/trainer/internal/progress"
	"github.com/born-ml/trainer/optim"
)

// ErrEmptyDataset is returned by Test when the loader yields no samples.
var ErrEmptyDataset = errors.New("empty dataset")

// Model is a classifier trainable by the Trainer: Forward maps a batch of
// inputs to [batch_size, num_classes] logits.
type Model[B tensor.Backend] interface {
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	Parameters() []*nn.Parameter[B]
}

// Trainer runs training and evaluation passes of a model on an autodiff
// backend wrapping B.
type Trainer[B tensor.Backend] struct {
	model     Model[*autodiff.Backend[B]]
	backend   *autodiff.Backend[B]
	optimizer *optim.SGD[*autodiff.Backend[B]]
	criterion *nn.CrossEntropyLoss[*autodiff.Backend[B]]
	config    Config
}

// New creates a trainer for model on backend.
//
// The model is mutated in place by every optimizer step. If config.Device is
// set it must designate the backend's device.
func New[B tensor.Backend](model Model[*autodiff.Backend[B]], backend *autodiff.Backend[B], config Config) (*Trainer[B], error) {
	if model == nil || backend == nil {
		return nil, errors.Wrap(ErrInvalidConfig, "model and backend are required")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Device != "" {
		kind, err := device.Parse(config.Device)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidConfig, err.Error())
		}
		if !kind.Matches(backend.Device()) {
			return nil, errors.Wrapf(ErrInvalidConfig, "device %q does not match backend %s", config.Device, backend.Name())
		}
	}

	optimizer, err := optim.NewSGD(model.Parameters(), optim.TrainerSGDConfig(config.LearningRate, config.WeightDecay))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create optimizer")
	}
	return &Trainer[B]{
		model:     model,
		backend:   backend,
		optimizer: optimizer,
		criterion: nn.NewCrossEntropyLoss(backend),
		config:    config,
	}, nil
}

// Model returns the model being trained.
func (t *Trainer[B]) Model() Model[*autodiff.Backend[B]] {
	return t.model
}

// Optimizer returns the trainer's optimizer.
func (t *Trainer[B]) Optimizer() *optim.SGD[*autodiff.Backend[B]] {
	return t.optimizer
}

// Device returns the device the trainer computes on.
func (t *Trainer[B]) Device() tensor.Device {
	return t.backend.Device()
}

// Config returns the trainer configuration.
func (t *Trainer[B]) Config() Config {
	return t.config
}

// TrainLoop runs one pass over trainset, taking an optimizer step per batch.
//
// It returns the sum of the per-batch mean losses. The loader is reset
// first, and ctx is checked between batches.
func (t *Trainer[B]) TrainLoop(ctx context.Context, trainset data.Loader) (float64, error) {
	tape := t.backend.Tape()
	wasRecording := tape.IsRecording()
	tape.StartRecording()
	defer func() {
		tape.Clear()
		if !wasRecording {
			tape.StopRecording()
		}
	}()

	total := 0.0
	numBatches := 0
	err := t.forEachBatch(ctx, trainset, func(inputs *tensor.Tensor[float32, *autodiff.Backend[B]], labels *tensor.Tensor[int32, *autodiff.Backend[B]]) {
		logits := t.model.Forward(inputs)
		t.optimizer.ZeroGrad()
		loss := t.criterion.Forward(logits, labels)
		lossValue := loss.Raw().AsFloat32()[0]

		grads := autodiff.Backward(loss, t.backend)
		t.optimizer.Step(grads)
		tape.Clear()

		t.checkFinite("training", numBatches, lossValue)
		total += float64(lossValue)
		numBatches++
	})
	if err != nil {
		return total, err
	}
	klog.V(2).Infof("TrainLoop: %d batches, loss sum %g", numBatches, total)
	return total, nil
}

// Test evaluates the model on loader with gradient recording disabled.
//
// The recording state of the tape is restored on return. Predictions are the
// argmax over the class logits of every sample, in iteration order. A loader
// that yields no samples returns ErrEmptyDataset.
func (t *Trainer[B]) Test(ctx context.Context, loader data.Loader) (*Evaluation, error) {
	tape := t.backend.Tape()
	if tape.IsRecording() {
		tape.StopRecording()
		defer tape.StartRecording()
	}

	eval := &Evaluation{}
	batchIdx := 0
	err := t.forEachBatch(ctx, loader, func(inputs *tensor.Tensor[float32, *autodiff.Backend[B]], labels *tensor.Tensor[int32, *autodiff.Backend[B]]) {
		logits := t.model.Forward(inputs)
		loss := t.criterion.Forward(logits, labels)
		lossValue := loss.Raw().AsFloat32()[0]
		t.checkFinite("evaluation", batchIdx, lossValue)
		eval.Loss += float64(lossValue)

		predictions := argmax(logits)
		for i, label := range labels.Raw().AsInt32() {
			if predictions[i] == label {
				eval.Correct++
			}
		}
		eval.Predictions = append(eval.Predictions, predictions...)
		eval.Samples += len(predictions)
		batchIdx++
	})
	if err != nil {
		return nil, err
	}
	if eval.Samples == 0 {
		return nil, ErrEmptyDataset
	}
	eval.Accuracy = float64(eval.Correct) / float64(eval.Samples)
	return eval, nil
}

// Train runs TrainLoop for the given number of epochs. When valset is not
// nil the model is evaluated on it after every epoch.
//
// The history has exactly epochs entries on success; on failure the entries
// of the completed epochs are returned along with the error.
func (t *Trainer[B]) Train(ctx context.Context, trainset, valset data.Loader, epochs int) (History, error) {
	if epochs < 0 {
		return nil, errors.Errorf("invalid number of epochs %d", epochs)
	}
	history := make(History, 0, epochs)
	if epochs == 0 {
		return history, nil
	}

	var bar *progress.Bar
	if t.config.Progress != nil {
		bar = progress.New(t.config.Progress, epochs)
		defer func() { _ = bar.Finish() }()
	}

	for epoch := range epochs {
		trainLoss, err := t.TrainLoop(ctx, trainset)
		if err != nil {
			return history, errors.WithMessagef(err, "epoch %d", epoch)
		}
		result := EpochResult{Epoch: epoch, TrainLoss: trainLoss}
		stats := []progress.Stat{{Name: "loss", Value: trainLoss}}

		if valset != nil {
			eval, err := t.Test(ctx, valset)
			if err != nil {
				return history, errors.WithMessagef(err, "epoch %d validation", epoch)
			}
			result.Validation = &eval.Metrics
			stats = append(stats,
				progress.Stat{Name: "val_loss", Value: eval.Loss},
				progress.Stat{Name: "val_acc", Value: eval.Accuracy})
		}

		history = append(history, result)
		klog.V(1).Infof("Epoch %d/%d: %v", epoch+1, epochs, result.Values())
		if bar != nil {
			if err := bar.Advance(stats...); err != nil {
				klog.Warningf("progress bar: %v", err)
			}
		}
		if t.config.OnEpoch != nil {
			t.config.OnEpoch(result)
		}
	}
	return history, nil
}

// forEachBatch resets loader, then materializes every batch on the backend
// and calls fn with it. Panics raised while loading or processing a batch
// are returned as errors.
func (t *Trainer[B]) forEachBatch(
	ctx context.Context,
	loader data.Loader,
	fn func(inputs *tensor.Tensor[float32, *autodiff.Backend[B]], labels *tensor.Tensor[int32, *autodiff.Backend[B]]),
) error {
	if loader == nil {
		return errors.New("nil loader")
	}
	if exception := exceptions.Try(func() { loader.Reset() }); exception != nil {
		return errors.WithMessage(panicToError(exception), "failed to reset loader")
	}
	for idx := 0; ; idx++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var batch *data.Batch
		var err error
		if exception := exceptions.Try(func() { batch, err = loader.Yield() }); exception != nil {
			return errors.WithMessagef(panicToError(exception), "failed to load batch %d", idx)
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WithMessagef(err, "failed to load batch %d", idx)
		}
		inputs, labels, err := t.toDevice(batch)
		if err != nil {
			return errors.WithMessagef(err, "batch %d", idx)
		}
		if exception := exceptions.Try(func() { fn(inputs, labels) }); exception != nil {
			return errors.WithMessagef(panicToError(exception), "batch %d", idx)
		}
	}
}

// toDevice materializes a batch as tensors on the trainer's backend.
func (t *Trainer[B]) toDevice(batch *data.Batch) (*tensor.Tensor[float32, *autodiff.Backend[B]], *tensor.Tensor[int32, *autodiff.Backend[B]], error) {
	if err := batch.Validate(); err != nil {
		return nil, nil, err
	}
	inputs, err := tensor.FromSlice(batch.Inputs, tensor.Shape(batch.Shape), t.backend)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create input tensor")
	}
	labels, err := tensor.FromSlice(batch.Labels, tensor.Shape{len(batch.Labels)}, t.backend)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to create label tensor")
	}
	return inputs, labels, nil
}

func (t *Trainer[B]) checkFinite(phase string, batch int, loss float32) {
	if math32.IsNaN(loss) || math32.IsInf(loss, 0) {
		klog.Warningf("%s loss is %v at batch %d", phase, loss, batch)
	}
}

// argmax returns the index of the largest logit of every row of a
// [batch_size, num_classes] tensor. NaN compares greater than any number, so
// the first NaN of a row wins.
func argmax[B tensor.Backend](logits *tensor.Tensor[float32, B]) []int32 {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("argmax: expected 2D logits [batch, classes], got shape %v", shape))
	}
	values := logits.Raw().AsFloat32()
	batchSize, numClasses := shape[0], shape[1]
	predictions := make([]int32, batchSize)
	for i := range batchSize {
		row := values[i*numClasses : (i+1)*numClasses]
		best := 0
		for j := 1; j < numClasses && !math32.IsNaN(row[best]); j++ {
			if row[j] > row[best] || math32.IsNaN(row[j]) {
				best = j
			}
		}
		predictions[i] = int32(best)
	}
	return predictions
}

// panicToError converts a recovered panic value into an error. Error values
// are kept as the cause.
func panicToError(exception any) error {
	if err, ok := exception.(error); ok {
		return errors.WithStack(err)
	}
	return errors.Errorf("%v", exception)
}
