// Package optim implements the optimizers used by the trainer.
//
// Born ships plain SGD (with momentum) and Adam. The trainer needs SGD with
// dampening, Nesterov acceleration and L2 weight decay, so this package
// provides it behind Born's optim.Optimizer interface: anything that accepts
// a Born optimizer accepts this one.
//
// Example usage:
//
//	optimizer, err := optim.NewSGD(model.Parameters(), optim.SGDConfig{
//	    LR:          1e-3,
//	    Momentum:    0.9,
//	    Nesterov:    true,
//	    WeightDecay: 1e-5,
//	})
//
//	backend.Tape().StartRecording()
//	loss := criterion.Forward(model.Forward(input), targets)
//	grads := autodiff.Backward(loss, backend)
//	optimizer.Step(grads)
//	optimizer.ZeroGrad()
package optim

import (
	"github.com/born-ml/born/nn"
	bornoptim "github.com/born-ml/born/optim"
	"github.com/born-ml/born/tensor"
)

// Optimizer is Born's optimizer interface: Step, ZeroGrad and GetLR.
type Optimizer = bornoptim.Optimizer

// Stateful is implemented by optimizers whose buffers can be checkpointed.
type Stateful interface {
	Optimizer
	SetLR(lr float32)
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// getGradient safely retrieves gradient for a parameter.
//
// Returns nil if no gradient is found (parameter wasn't part of computation graph).
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor().Raw()]
}
