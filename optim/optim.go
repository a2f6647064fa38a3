// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/born/nn"
	"github.com/born-ml/born/tensor"

	"github.com/born-ml/trainer/internal/optim"
)

// Optimizer is Born's optimizer interface (Step, ZeroGrad, GetLR).
type Optimizer = optim.Optimizer

// Stateful is an Optimizer with an adjustable learning rate and checkpointable buffers.
type Stateful = optim.Stateful

// SGD represents the SGD optimizer with momentum, dampening, Nesterov
// acceleration and weight decay.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	model := nn.NewLinear(784, 10, backend)
//	optimizer, err := optim.NewSGD(
//	    model.Parameters(),
//	    optim.SGDConfig{
//	        LR:       0.001,
//	        Momentum: 0.9,
//	        Nesterov: true,
//	    },
//	)
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) (*SGD[B], error) {
	return optim.NewSGD(params, config)
}

// TrainerSGDConfig returns the optimizer configuration the trainer uses:
// momentum 0.9, no dampening, Nesterov acceleration, with the given learning
// rate and weight decay.
func TrainerSGDConfig(lr, weightDecay float32) SGDConfig {
	return SGDConfig{
		LR:          lr,
		Momentum:    0.9,
		Dampening:   0,
		WeightDecay: weightDecay,
		Nesterov:    true,
	}
}
