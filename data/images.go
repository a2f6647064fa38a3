package data

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/born-ml/trainer/internal/parallel"
)

// ImageConfig describes how an image folder is turned into samples.
type ImageConfig struct {
	Width, Height int  // Every image is resized to Width x Height (default: 28x28)
	RGB           bool // Keep 3 channels; otherwise images are converted to grayscale
	MaxPerClass   int  // Maximum number of images per class (0 = all)
}

var imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}

// LoadImageFolder loads a directory laid out as one sub-directory per class:
//
//	root/
//	    cat/ 001.png 002.jpg ...
//	    dog/ 001.png ...
//
// Classes are the sub-directory names in sorted order. Samples are stored in
// CHW layout with values in [0, 1]: SampleShape is {1, H, W} for grayscale and
// {3, H, W} for RGB.
func LoadImageFolder(root string, config ImageConfig) (*Dataset, error) {
	if config.Width <= 0 {
		config.Width = 28
	}
	if config.Height <= 0 {
		config.Height = 28
	}
	channels := 1
	if config.RGB {
		channels = 3
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read image folder %q", root)
	}
	ds := &Dataset{SampleShape: []int{channels, config.Height, config.Width}}
	for _, entry := range entries {
		if entry.IsDir() {
			ds.Classes = append(ds.Classes, entry.Name())
		}
	}
	slices.Sort(ds.Classes)
	if len(ds.Classes) == 0 {
		return nil, errors.Errorf("image folder %q has no class sub-directories", root)
	}

	var paths []string
	for label, class := range ds.Classes {
		classDir := filepath.Join(root, class)
		files, err := os.ReadDir(classDir)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read class directory %q", classDir)
		}
		count := 0
		for _, file := range files {
			if file.IsDir() || !slices.Contains(imageExtensions, strings.ToLower(filepath.Ext(file.Name()))) {
				continue
			}
			if config.MaxPerClass > 0 && count >= config.MaxPerClass {
				break
			}
			paths = append(paths, filepath.Join(classDir, file.Name()))
			ds.Labels = append(ds.Labels, int32(label))
			count++
		}
	}

	ds.Samples = make([][]float32, len(paths))
	err = parallel.ForErr(len(paths), func(i int) error {
		sample, err := loadImageSample(paths[i], config)
		ds.Samples[i] = sample
		return err
	}, parallel.IOConfig())
	if err != nil {
		return nil, err
	}
	return ds, nil
}

// loadImageSample decodes, resizes and converts one image to CHW floats.
func loadImageSample(path string, config ImageConfig) ([]float32, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %q", path)
	}
	resized := imaging.Resize(img, config.Width, config.Height, imaging.Lanczos)
	if !config.RGB {
		resized = imaging.Grayscale(resized)
	}

	plane := config.Width * config.Height
	channels := 1
	if config.RGB {
		channels = 3
	}
	sample := make([]float32, channels*plane)
	for y := 0; y < config.Height; y++ {
		for x := 0; x < config.Width; x++ {
			offset := resized.PixOffset(x, y)
			for c := 0; c < channels; c++ {
				sample[c*plane+y*config.Width+x] = float32(resized.Pix[offset+c]) / 255.0
			}
		}
	}
	return sample, nil
}
