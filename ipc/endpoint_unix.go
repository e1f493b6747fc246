//go:build !windows

package ipc

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
)

// PipePath returns the socket path for name. Absolute names are used as-is.
func PipePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(os.TempDir(), "CoreFxPipe_"+name)
}

func dialEndpoint(name string) (io.WriteCloser, error) {
	return net.Dial("unix", PipePath(name))
}

type unixListener struct {
	ln *net.UnixListener
}

func listenEndpoint(name string) (endpointListener, error) {
	path := PipePath(name)
	if fi, err := os.Lstat(path); err == nil {
		if fi.Mode()&os.ModeSocket == 0 {
			return nil, fmt.Errorf("ipc: %s exists and is not a socket", path)
		}
		// a socket left by a dead process answers nothing and can be replaced
		if c, err := net.Dial("unix", path); err == nil {
			c.Close()
			return nil, fmt.Errorf("ipc: %s is already being served", path)
		}
		if err := os.Remove(path); err != nil {
			return nil, fmt.Errorf("ipc: remove stale socket %s: %w", path, err)
		}
	}
	ln, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("ipc: listen on %s: %w", path, err)
	}
	return &unixListener{ln: ln}, nil
}

func (l *unixListener) Accept() (io.ReadWriteCloser, error) {
	return l.ln.Accept()
}

func (l *unixListener) Close() error {
	return l.ln.Close()
}

func (l *unixListener) Addr() string {
	return l.ln.Addr().String()
}
