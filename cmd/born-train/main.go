// Package main provides born-train, a command-line classifier trainer.
//
// Usage:
//
//	born-train -format synthetic -epochs 10
//	born-train -format idx -data ./mnist -hidden 128 -epochs 5 -plot losses.png
//	born-train -format images -data ./flowers -image-size 32 -device webgpu
//	born-train version
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/born-ml/born/autodiff"
	"github.com/born-ml/born/backend/cpu"
	"github.com/google/uuid"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/born-ml/trainer/device"
)

const version = "v0.1.0"

// bornVersion is the Born ML Framework release this trainer is built against.
const bornVersion = "v0.5.4"

func main() {
	klog.InitFlags(nil)
	opts := registerFlags(flag.CommandLine)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] | version\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	defer klog.Flush()

	if flag.Arg(0) == "version" {
		fmt.Printf("born-train %s (Born ML Framework %s)\n", version, bornVersion)
		return
	}
	must.M(opts.validate())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	kind := must.M1(device.Parse(opts.device))
	opts.runID = uuid.NewString()
	klog.V(1).Infof("run %s on %s", opts.runID, kind)

	var err error
	switch kind {
	case device.WebGPU:
		err = runWebGPU(ctx, opts, os.Stdout)
	default:
		err = run(ctx, autodiff.New(cpu.New()), opts, os.Stdout)
	}
	if err != nil {
		klog.Flush()
		klog.Fatalf("Training failed: %+v", err)
	}
}
