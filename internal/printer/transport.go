// Package printer resolves logical printer targets into live byte-level
// connections and encodes print primitives into ESC/POS command streams.
package printer

import (
	"fmt"
	"net"
	"os"
	"time"
)

const defaultWriteTimeout = 10 * time.Second

// Transport is a byte-level connection to a physical printer.
type Transport interface {
	Write(p []byte) (int, error)
	Close() error
}

// netTransport wraps a TCP connection with a per-write deadline so a stuck
// device cannot block a dispatch forever.
type netTransport struct {
	conn    net.Conn
	timeout time.Duration
}

func dialNetwork(host string, port int, timeout time.Duration) (Transport, error) {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}

	address := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}

	return &netTransport{conn: conn, timeout: timeout}, nil
}

func (t *netTransport) Write(p []byte) (int, error) {
	_ = t.conn.SetWriteDeadline(time.Now().Add(t.timeout))
	return t.conn.Write(p)
}

func (t *netTransport) Close() error {
	return t.conn.Close()
}

// fileTransport writes to a USB printer exposed as a character device
// (e.g. /dev/usb/lp0).
type fileTransport struct {
	f *os.File
}

func openDevicePath(path string) (Transport, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &fileTransport{f: f}, nil
}

func (t *fileTransport) Write(p []byte) (int, error) {
	return t.f.Write(p)
}

func (t *fileTransport) Close() error {
	return t.f.Close()
}
