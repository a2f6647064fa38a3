// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package models provides classifier networks built from Born layers.
package models

import (
	"fmt"
	"strings"

	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"
	"github.com/pkg/errors"
)

// ModelType is the type name written into checkpoints of an MLP.
const ModelType = "MLP"

// MLP is a fully-connected classifier.
//
// Architecture:
//   - Input: inFeatures neurons (samples of higher rank are flattened)
//   - Hidden: one Linear layer per entry of hidden, each followed by ReLU
//   - Output: numClasses neurons (logits, no softmax)
type MLP[B tensor.Backend] struct {
	layers     []*nn.Linear[B]
	relu       *nn.ReLU[B]
	inFeatures int
}

// NewMLP creates an MLP mapping inFeatures to numClasses logits through the
// given hidden layer sizes. With no hidden layers the model is a linear
// (softmax regression) classifier.
func NewMLP[B tensor.Backend](backend B, inFeatures int, hidden []int, numClasses int) (*MLP[B], error) {
	if inFeatures <= 0 {
		return nil, errors.Errorf("invalid number of input features %d", inFeatures)
	}
	if numClasses < 2 {
		return nil, errors.Errorf("a classifier needs at least 2 classes, got %d", numClasses)
	}
	sizes := make([]int, 0, len(hidden)+2)
	sizes = append(sizes, inFeatures)
	for i, h := range hidden {
		if h <= 0 {
			return nil, errors.Errorf("invalid size %d for hidden layer %d", h, i)
		}
		sizes = append(sizes, h)
	}
	sizes = append(sizes, numClasses)

	m := &MLP[B]{
		relu:       nn.NewReLU[B](),
		inFeatures: inFeatures,
	}
	for i := 1; i < len(sizes); i++ {
		m.layers = append(m.layers, nn.NewLinear[B](sizes[i-1], sizes[i], backend))
	}
	return m, nil
}

// Forward maps a batch of samples to logits with shape [batch_size, numClasses].
//
// Accepts [batch_size, inFeatures], a single sample [inFeatures], or samples
// of any higher rank whose trailing dimensions multiply to inFeatures
// (e.g. [batch_size, 1, 28, 28] images).
func (m *MLP[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	switch {
	case len(shape) == 1:
		input = input.Reshape(1, shape[0])
	case len(shape) > 2:
		features := 1
		for _, dim := range shape[1:] {
			features *= dim
		}
		input = input.Reshape(shape[0], features)
	}
	if got := input.Shape()[1]; got != m.inFeatures {
		panic(fmt.Sprintf("MLP: expected %d input features, got shape %v", m.inFeatures, shape))
	}

	x := input
	last := len(m.layers) - 1
	for i, layer := range m.layers {
		x = layer.Forward(x)
		if i < last {
			x = m.relu.Forward(x)
		}
	}
	return x
}

// Parameters returns all trainable parameters, layer by layer.
func (m *MLP[B]) Parameters() []*nn.Parameter[B] {
	params := make([]*nn.Parameter[B], 0, 2*len(m.layers))
	for _, layer := range m.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// NumParameters returns the number of trainable scalars.
func (m *MLP[B]) NumParameters() int {
	total := 0
	for _, param := range m.Parameters() {
		n := 1
		for _, dim := range param.Tensor().Shape() {
			n *= dim
		}
		total += n
	}
	return total
}

// InFeatures returns the number of input features.
func (m *MLP[B]) InFeatures() int {
	return m.inFeatures
}

// NumClasses returns the number of output logits.
func (m *MLP[B]) NumClasses() int {
	return m.layers[len(m.layers)-1].OutFeatures()
}

// String describes the architecture, e.g. "MLP(784-128-10)".
func (m *MLP[B]) String() string {
	sizes := []string{fmt.Sprint(m.inFeatures)}
	for _, layer := range m.layers {
		sizes = append(sizes, fmt.Sprint(layer.OutFeatures()))
	}
	return ModelType + "(" + strings.Join(sizes, "-") + ")"
}

// StateDict returns the parameters keyed "layers.{i}.weight" and "layers.{i}.bias".
func (m *MLP[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, layer := range m.layers {
		for name, raw := range layer.StateDict() {
			stateDict[fmt.Sprintf("layers.%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict copies parameters saved by StateDict into the model.
func (m *MLP[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, layer := range m.layers {
		prefix := fmt.Sprintf("layers.%d.", i)
		layerDict := make(map[string]*tensor.RawTensor)
		for name, raw := range stateDict {
			if rest, ok := strings.CutPrefix(name, prefix); ok {
				layerDict[rest] = raw
			}
		}
		if err := layer.LoadStateDict(layerDict); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
	}
	return nil
}
