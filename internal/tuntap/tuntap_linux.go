//go:build linux

package tuntap

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ifNameSize = 16
	tunPath    = "/dev/net/tun"
)

// ifReq mirrors the kernel's struct ifreq as used by the TUNSETIFF ioctl:
// a 16-byte interface name followed by a union whose first member here is
// the request flags.
type ifReq struct {
	Name  [ifNameSize]byte
	Flags uint16
	_     [22]byte // pad to sizeof(struct ifreq)
}

type linuxDevice struct {
	file *os.File
	name string
}

// Open creates (or attaches to) a TUN device named name (kernel-assigned
// if empty) in IFF_TUN|IFF_NO_PI mode, via the TUNSETIFF ioctl on
// /dev/net/tun — the standard userspace path for a point-to-point IP
// tunnel on Linux.
func Open(name string) (Device, error) {
	f, err := os.OpenFile(tunPath, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("tuntap: opening %s: %w", tunPath, err)
	}

	var req ifReq
	copy(req.Name[:], name)
	req.Flags = unix.IFF_TUN | unix.IFF_NO_PI

	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), unix.TUNSETIFF, uintptr(unsafe.Pointer(&req))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("tuntap: TUNSETIFF: %w", errno)
	}

	assigned := string(req.Name[:])
	if i := indexByte0(assigned); i >= 0 {
		assigned = assigned[:i]
	}

	return &linuxDevice{file: f, name: assigned}, nil
}

func indexByte0(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			return i
		}
	}
	return -1
}

func (d *linuxDevice) Read() ([]byte, error) {
	buf := make([]byte, 65536)
	n, err := d.file.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("tuntap: read: %w", err)
	}
	return buf[:n], nil
}

func (d *linuxDevice) Write(dgram []byte) error {
	if _, err := d.file.Write(dgram); err != nil {
		return fmt.Errorf("tuntap: write: %w", err)
	}
	return nil
}

func (d *linuxDevice) Name() string { return d.name }

func (d *linuxDevice) Close() error { return d.file.Close() }
