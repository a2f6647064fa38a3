//go:build !windows

package device

// Born's WebGPU backend is only built on Windows.
func webgpuAvailable() bool {
	return false
}
