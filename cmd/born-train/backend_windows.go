//go:build windows

package main

import (
	"context"
	"io"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/webgpu"
	"github.com/pkg/errors"
)

func runWebGPU(ctx context.Context, opts *options, out io.Writer) error {
	if !webgpu.IsAvailable() {
		return errors.New("WebGPU is not available on this system, run with -device cpu")
	}
	gpu, err := webgpu.New()
	if err != nil {
		return errors.Wrap(err, "failed to initialize WebGPU")
	}
	defer gpu.Release()
	return run(ctx, autodiff.New(gpu), opts, out)
}
