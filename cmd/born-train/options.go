package main

import (
	"flag"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/trainer/trainer"
)

// options holds the command-line configuration.
type options struct {
	data        string
	format      string
	useTrain    bool
	maxSamples  int
	labelColumn string
	textColumn  string
	imageSize   int
	rgb         bool

	epochs      int
	batchSize   int
	lr          float64
	wd          float64
	device      string
	hidden      string
	valRatio    float64
	seed        uint64
	standardize bool

	plot       string
	save       string
	history    bool
	perClass   bool
	noProgress bool

	runID string
}

var formats = []string{"synthetic", "idx", "csv", "images", "text"}

func registerFlags(fs *flag.FlagSet) *options {
	defaults := trainer.DefaultConfig()
	opts := &options{}
	fs.StringVar(&opts.data, "data", "./data", "Dataset location: a directory for idx/images, a file for csv/text")
	fs.StringVar(&opts.format, "format", "synthetic", "Dataset format: "+strings.Join(formats, ", "))
	fs.BoolVar(&opts.useTrain, "train", true, "idx: use the training files (60K samples) instead of the test files (10K)")
	fs.IntVar(&opts.maxSamples, "samples", 0, "Max samples to load (0 = all; per class for images)")
	fs.StringVar(&opts.labelColumn, "label-column", "label", "csv/text: name of the label column")
	fs.StringVar(&opts.textColumn, "text-column", "text", "text: name of the text column")
	fs.IntVar(&opts.imageSize, "image-size", 28, "images: width and height images are resized to")
	fs.BoolVar(&opts.rgb, "rgb", false, "images: keep 3 color channels instead of converting to grayscale")

	fs.IntVar(&opts.epochs, "epochs", 10, "Number of training epochs")
	fs.IntVar(&opts.batchSize, "batch", 32, "Batch size")
	fs.Float64Var(&opts.lr, "lr", float64(defaults.LearningRate), "Learning rate")
	fs.Float64Var(&opts.wd, "wd", float64(defaults.WeightDecay), "Weight decay")
	fs.StringVar(&opts.device, "device", defaults.Device, "Compute device: cpu or webgpu")
	fs.StringVar(&opts.hidden, "hidden", "128", "Comma separated hidden layer sizes (empty for a linear model)")
	fs.Float64Var(&opts.valRatio, "val-ratio", 0.2, "Fraction of the data held out for validation (0 disables validation)")
	fs.Uint64Var(&opts.seed, "seed", 42, "Random seed for shuffling and synthetic data")
	fs.BoolVar(&opts.standardize, "standardize", false, "Standardize features with the training set mean and std")

	fs.StringVar(&opts.plot, "plot", "", "If set, save the loss curves to this image file (.png, .svg, .pdf)")
	fs.StringVar(&opts.save, "save", "", "If set, save the trained model to this .safetensors checkpoint")
	fs.BoolVar(&opts.history, "history", true, "Print the per-epoch history table")
	fs.BoolVar(&opts.perClass, "per-class", false, "Print per-class validation accuracy")
	fs.BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	return opts
}

func (o *options) validate() error {
	valid := false
	for _, f := range formats {
		valid = valid || f == o.format
	}
	if !valid {
		return errors.Errorf("unknown format %q, expected one of %s", o.format, strings.Join(formats, ", "))
	}
	if o.epochs < 0 {
		return errors.Errorf("-epochs must be non-negative, got %d", o.epochs)
	}
	if o.batchSize <= 0 {
		return errors.Errorf("-batch must be positive, got %d", o.batchSize)
	}
	if o.valRatio < 0 || o.valRatio >= 1 {
		return errors.Errorf("-val-ratio must be in [0, 1), got %g", o.valRatio)
	}
	if _, err := o.hiddenSizes(); err != nil {
		return err
	}
	return nil
}

// hiddenSizes parses the -hidden flag.
func (o *options) hiddenSizes() ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(o.hidden, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		size, err := strconv.Atoi(part)
		if err != nil || size <= 0 {
			return nil, errors.Errorf("invalid hidden layer size %q in -hidden=%q", part, o.hidden)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

func (o *options) trainerConfig() trainer.Config {
	config := trainer.DefaultConfig()
	config.LearningRate = float32(o.lr)
	config.WeightDecay = float32(o.wd)
	config.Device = o.device
	return config
}
