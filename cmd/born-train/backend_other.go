//go:build !windows

package main

import (
	"context"
	"io"

	"github.com/pkg/errors"
)

func runWebGPU(_ context.Context, _ *options, _ io.Writer) error {
	return errors.New("the WebGPU backend is only available on Windows, run with -device cpu")
}
