package data

import (
	"os"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/pkg/errors"
	"github.com/pkoukk/tiktoken-go"
)

// Encoder turns text into token ids. *tiktoken.Tiktoken implements it.
type Encoder interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
}

// TextConfig describes how a text classification CSV is featurized.
type TextConfig struct {
	LabelColumn string // Name of the label column (default: "label")
	TextColumn  string // Name of the text column (default: "text")
	Encoding    string // tiktoken encoding used when no Encoder is given (default: "cl100k_base")
	Dimensions  int    // Size of the hashed bag-of-tokens vector (default: 1024)
	MaxSamples  int    // Maximum number of rows to load (0 = all)
}

// TokenFeaturizer maps text to a fixed-size bag-of-tokens vector: token ids
// are hashed into Dimensions buckets and the counts are normalized to
// frequencies, so every non-empty text sums to 1.
type TokenFeaturizer struct {
	enc        Encoder
	dimensions int
}

// NewTokenFeaturizer creates a featurizer. A nil enc loads the tiktoken
// encoding named by encoding, which downloads the BPE ranks on first use
// unless TIKTOKEN_CACHE_DIR already holds them.
func NewTokenFeaturizer(enc Encoder, encoding string, dimensions int) (*TokenFeaturizer, error) {
	if dimensions <= 0 {
		return nil, errors.Errorf("invalid featurizer dimensions %d", dimensions)
	}
	if enc == nil {
		if encoding == "" {
			encoding = "cl100k_base"
		}
		tke, err := tiktoken.GetEncoding(encoding)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load tiktoken encoding %q", encoding)
		}
		enc = tke
	}
	return &TokenFeaturizer{enc: enc, dimensions: dimensions}, nil
}

// Dimensions returns the length of the vectors produced by Featurize.
func (f *TokenFeaturizer) Dimensions() int {
	return f.dimensions
}

// Featurize returns the normalized hashed token counts of text.
func (f *TokenFeaturizer) Featurize(text string) []float32 {
	vec := make([]float32, f.dimensions)
	tokens := f.enc.Encode(text, nil, nil)
	if len(tokens) == 0 {
		return vec
	}
	for _, tok := range tokens {
		bucket := tok % f.dimensions
		if bucket < 0 {
			bucket += f.dimensions
		}
		vec[bucket]++
	}
	inv := 1 / float32(len(tokens))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// LoadTextCSV loads a CSV with a label column and a text column and featurizes
// each text with a TokenFeaturizer. Classes are the distinct labels in sorted
// order. enc may be nil, see NewTokenFeaturizer.
func LoadTextCSV(path string, config TextConfig, enc Encoder) (*Dataset, error) {
	if config.LabelColumn == "" {
		config.LabelColumn = "label"
	}
	if config.TextColumn == "" {
		config.TextColumn = "text"
	}
	if config.Dimensions == 0 {
		config.Dimensions = 1024
	}
	featurizer, err := NewTokenFeaturizer(enc, config.Encoding, config.Dimensions)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", path)
	}
	defer func() { _ = f.Close() }()

	df := dataframe.ReadCSV(f,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	if df.Err != nil {
		return nil, errors.Wrapf(df.Err, "failed to read CSV %q", path)
	}
	for _, col := range []string{config.LabelColumn, config.TextColumn} {
		if !slices.Contains(df.Names(), col) {
			return nil, errors.Errorf("CSV %q has no column %q (columns: %v)", path, col, df.Names())
		}
	}
	if config.MaxSamples > 0 && df.Nrow() > config.MaxSamples {
		df = df.Subset(seq(config.MaxSamples))
	}

	labelRecords := df.Col(config.LabelColumn).Records()
	classes := slices.Clone(labelRecords)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	texts := df.Col(config.TextColumn).Records()
	ds := &Dataset{
		Samples:     make([][]float32, len(texts)),
		Labels:      make([]int32, len(texts)),
		SampleShape: []int{featurizer.Dimensions()},
		Classes:     classes,
	}
	for i, text := range texts {
		ds.Samples[i] = featurizer.Featurize(text)
		idx, _ := slices.BinarySearch(classes, labelRecords[i])
		ds.Labels[i] = int32(idx)
	}
	return ds, nil
}
