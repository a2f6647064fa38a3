// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package data provides the batch sources consumed by the trainer.
//
// # Overview
//
// This package contains:
//   - Batch: a host-side group of samples with their class labels
//   - Loader: the batch-iterable data source interface
//   - Dataset: an in-memory labelled dataset (Split, Shuffle, Standardize)
//   - SliceLoader: mini-batching over a Dataset with optional shuffling
//   - Readers: IDX (MNIST), CSV, image folders, text CSV, synthetic blobs
//
// # Basic Usage
//
//	ds, err := data.LoadMNIST("./data", true, 0)
//	if err != nil {
//	    return err
//	}
//	train, val := ds.Split(0.2)
//	loader, err := data.NewSliceLoader(train, data.LoaderConfig{BatchSize: 32, Shuffle: true})
//
//	for {
//	    batch, err := loader.Yield()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
//
// Batches live in host memory. Moving them to a compute device is the
// trainer's job, so the same loader can feed CPU and WebGPU backends.
package data
