//go:build nocgo
// +build nocgo

package audio

// OpenOto always fails in builds without cgo.
func OpenOto() (Device, error) {
	return nil, ErrDeviceUnavailable
}
