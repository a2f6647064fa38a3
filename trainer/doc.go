// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package trainer provides a mini-batch training and evaluation harness for
// Born classifiers.
//
// A Trainer binds a model, an autodiff backend and a learning configuration.
// It owns a fixed optimizer (SGD with momentum 0.9, no dampening, Nesterov
// acceleration and weight decay) and a fixed cross-entropy loss.
//
// # Basic Usage
//
//	backend := autodiff.New(cpu.New())
//	model := models.NewMLP(backend, 784, []int{128}, 10)
//
//	t, err := trainer.New(model, backend, trainer.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//
//	history, err := t.Train(ctx, trainLoader, valLoader, 10)
//	for _, result := range history {
//	    fmt.Println(result.Values())
//	}
//
// # Operations
//
//   - TrainLoop: one pass over a loader, returns the summed batch losses
//   - Test: evaluation with the gradient tape stopped, returns loss, accuracy and predictions
//   - Train: TrainLoop (and Test on the validation loader) for a number of epochs
//
// Born reports shape mismatches and out-of-range labels by panicking; every
// operation converts such panics into returned errors.
//
// A Trainer is not safe for concurrent use.
package trainer
