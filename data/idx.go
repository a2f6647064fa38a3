package data

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/born-ml/trainer/internal/parallel"
)

// IDX magic numbers (unsigned byte data, rank 3 and rank 1).
const (
	idxImagesMagic = 0x00000803
	idxLabelsMagic = 0x00000801
)

// openIDX opens an IDX file, transparently decompressing ".gz" files.
func openIDX(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(bufio.NewReader(f))
	if err != nil {
		_ = f.Close()
		return nil, errors.Wrapf(err, "failed to open gzip stream %q", path)
	}
	return &gzipFile{Reader: gz, f: f}, nil
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g *gzipFile) Close() error {
	err := g.Reader.Close()
	if ferr := g.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// ReadIDXImages reads an IDX image file.
//
// Layout (big endian):
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
//
// Returns the raw pixels per image plus the image height and width.
func ReadIDXImages(path string) (images [][]byte, rows, cols int, err error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer func() { _ = r.Close() }()

	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, 0, 0, errors.Wrapf(err, "failed to read IDX header of %q", path)
	}
	if header[0] != idxImagesMagic {
		return nil, 0, 0, errors.Errorf("invalid magic number in %q: got %d, want %d", path, header[0], idxImagesMagic)
	}
	numImages, rows, cols := int(header[1]), int(header[2]), int(header[3])

	images = make([][]byte, numImages)
	for i := range images {
		images[i] = make([]byte, rows*cols)
		if _, err := io.ReadFull(r, images[i]); err != nil {
			return nil, 0, 0, errors.Wrapf(err, "failed to read image %d of %q", i, path)
		}
	}
	return images, rows, cols, nil
}

// ReadIDXLabels reads an IDX label file.
//
// Layout (big endian):
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes
func ReadIDXLabels(path string) ([]byte, error) {
	r, err := openIDX(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrapf(err, "failed to read IDX header of %q", path)
	}
	if header[0] != idxLabelsMagic {
		return nil, errors.Errorf("invalid magic number in %q: got %d, want %d", path, header[0], idxLabelsMagic)
	}

	labels := make([]byte, header[1])
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, errors.Wrapf(err, "failed to read labels of %q", path)
	}
	return labels, nil
}

// findIDX returns name or name+".gz", whichever exists in dir.
func findIDX(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if _, err := os.Stat(path + ".gz"); err == nil {
		return path + ".gz"
	}
	return path
}

// LoadMNIST loads MNIST from the official IDX files in dataDir.
//
// Expected files (optionally gzipped):
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte  (train == true)
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte    (train == false)
//
// Pixels are normalized to [0, 1] and samples are flat ({rows*cols}).
// maxSamples limits the number of samples loaded (0 = all).
func LoadMNIST(dataDir string, train bool, maxSamples int) (*Dataset, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}
	images, rows, cols, err := ReadIDXImages(findIDX(dataDir, prefix+"-images-idx3-ubyte"))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load images")
	}
	labels, err := ReadIDXLabels(findIDX(dataDir, prefix+"-labels-idx1-ubyte"))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load labels")
	}
	if len(images) != len(labels) {
		return nil, errors.Errorf("image count (%d) != label count (%d)", len(images), len(labels))
	}

	numSamples := len(images)
	if maxSamples > 0 && numSamples > maxSamples {
		numSamples = maxSamples
	}
	ds := &Dataset{
		Samples:     make([][]float32, numSamples),
		Labels:      make([]int32, numSamples),
		SampleShape: []int{rows * cols},
		Classes:     []string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
	}
	parallel.For(numSamples, func(i int) {
		sample := make([]float32, rows*cols)
		for j, pixel := range images[i] {
			sample[j] = float32(pixel) / 255.0
		}
		ds.Samples[i] = sample
		ds.Labels[i] = int32(labels[i])
	}, parallel.DefaultConfig())
	return ds, nil
}
