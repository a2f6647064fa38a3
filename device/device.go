// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package device parses compute device designators and describes the
// hardware behind them.
//
// Supported devices:
//   - "cpu": Born's pure Go CPU backend
//   - "webgpu": Born's WebGPU backend (Windows only)
package device

import (
	"fmt"
	"strings"

	"github.com/born-ml/born/tensor"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/cpuid/v2"
	"github.com/pkg/errors"
)

// Kind identifies a compute device.
type Kind int

// Supported devices.
const (
	CPU Kind = iota
	WebGPU
)

// ErrUnknownDevice is returned by Parse for unsupported designators.
var ErrUnknownDevice = errors.New("unknown device")

// Parse converts a designator ("cpu", "webgpu", case-insensitive) into a Kind.
func Parse(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cpu", "":
		return CPU, nil
	case "webgpu", "gpu":
		return WebGPU, nil
	}
	return CPU, errors.Wrapf(ErrUnknownDevice, "%q (expected cpu or webgpu)", s)
}

// String returns the designator accepted by Parse.
func (k Kind) String() string {
	switch k {
	case CPU:
		return "cpu"
	case WebGPU:
		return "webgpu"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Matches reports whether d, a Born tensor device, is the device k designates.
func (k Kind) Matches(d tensor.Device) bool {
	return strings.EqualFold(d.String(), k.String())
}

// Available reports whether the device can be used on this machine.
func (k Kind) Available() bool {
	switch k {
	case CPU:
		return true
	case WebGPU:
		return webgpuAvailable()
	}
	return false
}

// Describe returns a one-line description of the device.
func Describe(k Kind) string {
	switch k {
	case CPU:
		return describeCPU()
	case WebGPU:
		if webgpuAvailable() {
			return "WebGPU (available)"
		}
		return "WebGPU (not available on this system)"
	}
	return k.String()
}

// simdFeatures lists the vector extensions worth reporting, in display order.
var simdFeatures = []cpuid.FeatureID{
	cpuid.SSE4, cpuid.AVX, cpuid.AVX2, cpuid.FMA3, cpuid.AVX512F, cpuid.ASIMD,
}

func describeCPU() string {
	brand := cpuid.CPU.BrandName
	if brand == "" {
		brand = "unknown CPU"
	}
	desc := fmt.Sprintf("CPU: %s, %d physical / %d logical cores", brand, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores)
	if cpuid.CPU.Cache.L2 > 0 {
		desc += fmt.Sprintf(", L2 %s", humanize.IBytes(uint64(cpuid.CPU.Cache.L2)))
	}
	var features []string
	for _, f := range simdFeatures {
		if cpuid.CPU.Supports(f) {
			features = append(features, f.String())
		}
	}
	if len(features) > 0 {
		desc += " [" + strings.Join(features, " ") + "]"
	}
	return desc
}
