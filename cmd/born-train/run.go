package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/tensor"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/born-ml/trainer/data"
	"github.com/born-ml/trainer/device"
	"github.com/born-ml/trainer/internal/report"
	"github.com/born-ml/trainer/models"
	"github.com/born-ml/trainer/trainer"
)

// run trains an MLP on backend and reports the results to out.
func run[B tensor.Backend](ctx context.Context, backend *autodiff.Backend[B], opts *options, out io.Writer) error {
	kind, err := device.Parse(opts.device)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Born trainer %s - run %s\n", version, opts.runID)
	fmt.Fprintf(out, "Device: %s\n", device.Describe(kind))

	ds, err := loadDataset(opts)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(out, "\nDataset not found at %q. Run with -format synthetic to try the trainer without data files.\n", opts.data)
		}
		return errors.WithMessagef(err, "failed to load %s dataset", opts.format)
	}
	trainLoader, valLoader, err := prepare(ds, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Data: %s samples, %d features, %d classes (train %s",
		humanize.Comma(int64(ds.Len())), ds.NumFeatures(), ds.NumClasses(),
		humanize.Comma(int64(trainLoader.Dataset().Len())))
	if valLoader != nil {
		fmt.Fprintf(out, ", validation %s", humanize.Comma(int64(valLoader.Dataset().Len())))
	}
	fmt.Fprintln(out, ")")

	hidden, err := opts.hiddenSizes()
	if err != nil {
		return err
	}
	model, err := models.NewMLP(backend, ds.NumFeatures(), hidden, ds.NumClasses())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Model: %s, %s parameters\n", model, humanize.Comma(int64(model.NumParameters())))

	config := opts.trainerConfig()
	if !opts.noProgress {
		config.Progress = out
	}
	tr, err := trainer.New[B](model, backend, config)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Optimizer: SGD (lr=%g, momentum=0.9, nesterov, weight decay=%g), batch size %d, %d epochs\n\n",
		config.LearningRate, config.WeightDecay, opts.batchSize, opts.epochs)

	start := time.Now()
	var valset data.Loader
	if valLoader != nil {
		valset = valLoader
	}
	history, err := tr.Train(ctx, trainLoader, valset, opts.epochs)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	fmt.Fprintf(out, "\nTrained %d epochs in %s\n", len(history), elapsed.Round(time.Millisecond))

	if opts.history && len(history) > 0 {
		if err := report.Table(out, history); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, report.Summary(history))

	if opts.perClass && valLoader != nil {
		eval, err := tr.Test(ctx, valLoader)
		if err != nil {
			return err
		}
		valData := valLoader.Dataset()
		counts, err := report.CountByClass(valData.Classes, valData.Labels, eval.Predictions)
		if err != nil {
			return err
		}
		if err := report.ClassTable(out, counts); err != nil {
			return err
		}
	}

	if opts.plot != "" {
		if err := report.PlotLosses(history, "born-train "+opts.format, opts.plot); err != nil {
			return err
		}
		fmt.Fprintf(out, "Loss curves saved to %s\n", opts.plot)
	}
	if opts.save != "" {
		metadata := map[string]string{
			"run_id":      opts.runID,
			"dataset":     opts.format,
			"epochs":      strconv.Itoa(opts.epochs),
			"in_features": strconv.Itoa(model.InFeatures()),
			"classes":     strconv.Itoa(model.NumClasses()),
			"device":      kind.String(),
		}
		if err := models.Save(opts.save, model, models.ModelType, metadata); err != nil {
			return errors.Wrapf(err, "failed to save model to %q", opts.save)
		}
		fmt.Fprintf(out, "Model saved to %s\n", opts.save)
	}
	klog.V(1).Infof("run %s finished in %s", opts.runID, elapsed)
	return nil
}
