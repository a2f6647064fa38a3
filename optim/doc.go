// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the optimizer used by the trainer.
//
// # Overview
//
// Born's own SGD supports momentum only. This package adds an SGD with the
// full update rule used by most training recipes:
//   - L2 weight decay folded into the gradient
//   - momentum with dampening
//   - Nesterov accelerated gradient
//
// The optimizer satisfies Born's optim.Optimizer interface, so it can be
// dropped into any Born training loop.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/born/autodiff"
//	    "github.com/born-ml/born/backend/cpu"
//	    "github.com/born-ml/born/nn"
//	    "github.com/born-ml/trainer/optim"
//	)
//
//	func main() {
//	    backend := autodiff.New(cpu.New())
//	    model := nn.NewLinear(784, 10, backend)
//
//	    optimizer, err := optim.NewSGD(model.Parameters(), optim.TrainerSGDConfig(1e-3, 1e-5))
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    backend.Tape().StartRecording()
//	    for batch := range batches {
//	        // 1. Zero gradients
//	        optimizer.ZeroGrad()
//
//	        // 2. Forward pass
//	        loss := criterion.Forward(model.Forward(batch.X), batch.Y)
//
//	        // 3. Backward pass
//	        grads := autodiff.Backward(loss, backend)
//
//	        // 4. Update parameters
//	        optimizer.Step(grads)
//	        backend.Tape().Clear()
//	    }
//	}
//
// # Update Rule
//
// For every parameter p with gradient g:
//
//	g = g + weightDecay * p
//	v = g                                   (first step)
//	v = momentum * v + (1 - dampening) * g  (later steps)
//	g = g + momentum * v                    (Nesterov)
//	g = v                                   (classic momentum)
//	p = p - lr * g
package optim
