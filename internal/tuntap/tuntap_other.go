//go:build !linux

package tuntap

import "fmt"

// Open is unsupported outside Linux: TUNSETIFF is a Linux-specific ioctl.
func Open(name string) (Device, error) {
	return nil, fmt.Errorf("tuntap: TUN devices are not supported on this platform")
}
