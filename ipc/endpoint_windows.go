//go:build windows

package ipc

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"golang.org/x/sys/windows"
)

const pipePrefix = `\\.\pipe\`

// named pipe modes (winbase.h)
const (
	pipeAccessDuplex       = 0x00000003
	pipeTypeByte           = 0x00000000
	pipeReadModeByte       = 0x00000000
	pipeWait               = 0x00000000
	pipeUnlimitedInstances = 255
	pipeBufferSize         = 4096
)

// PipePath returns the pipe path for name.
func PipePath(name string) string {
	return pipePrefix + name
}

// Client handle options, matching the .NET NamedPipeClientStream peer.
const (
	clientShareMode = windows.FILE_SHARE_READ | windows.FILE_SHARE_WRITE
	clientFlags     = windows.FILE_FLAG_WRITE_THROUGH
)

func dialEndpoint(name string) (io.WriteCloser, error) {
	path := PipePath(name)
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		clientShareMode, nil, windows.OPEN_EXISTING, clientFlags, 0)
	if err != nil {
		return nil, err
	}
	// os.File.Sync is FlushFileBuffers, which waits for the server to read
	return os.NewFile(uintptr(h), path), nil
}

type pipeListener struct {
	path string

	mu     sync.Mutex
	closed bool
}

func listenEndpoint(name string) (endpointListener, error) {
	return &pipeListener{path: PipePath(name)}, nil
}

func (l *pipeListener) Accept() (io.ReadWriteCloser, error) {
	if l.isClosed() {
		return nil, net.ErrClosed
	}
	p, err := windows.UTF16PtrFromString(l.path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateNamedPipe(p,
		pipeAccessDuplex,
		pipeTypeByte|pipeReadModeByte|pipeWait,
		pipeUnlimitedInstances, pipeBufferSize, pipeBufferSize, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("ipc: create pipe %s: %w", l.path, err)
	}
	if err := windows.ConnectNamedPipe(h, nil); err != nil && !errors.Is(err, windows.ERROR_PIPE_CONNECTED) {
		windows.CloseHandle(h)
		return nil, fmt.Errorf("ipc: connect pipe %s: %w", l.path, err)
	}

	if l.isClosed() {
		windows.DisconnectNamedPipe(h)
		windows.CloseHandle(h)
		return nil, net.ErrClosed
	}
	return &pipeConn{File: os.NewFile(uintptr(h), l.path), h: h}, nil
}

func (l *pipeListener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *pipeListener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	// ConnectNamedPipe has no deadline; a throwaway client unblocks Accept
	if c, err := dialEndpoint(l.path[len(pipePrefix):]); err == nil {
		c.Close()
	}
	return nil
}

func (l *pipeListener) Addr() string {
	return l.path
}

type pipeConn struct {
	*os.File
	h windows.Handle
}

func (c *pipeConn) Close() error {
	windows.DisconnectNamedPipe(c.h)
	return c.File.Close()
}
