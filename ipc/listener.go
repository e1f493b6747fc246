package ipc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// maxRecordSize bounds a single record on the wire.
const maxRecordSize = 1 << 20

type endpointListener interface {
	Accept() (io.ReadWriteCloser, error)
	Close() error
	Addr() string
}

// Handler receives every decoded record. Records arrive in connection order.
type Handler func(Message)

// Listener is the reading end of a log channel.
type Listener struct {
	name   string
	ln     endpointListener
	closed *atomic.Bool
}

// Listen starts listening on name.
func Listen(name string) (*Listener, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	ln, err := listenEndpoint(name)
	if err != nil {
		return nil, err
	}
	return &Listener{name: name, ln: ln, closed: atomic.NewBool(false)}, nil
}

// Name returns the channel name.
func (l *Listener) Name() string { return l.name }

// Addr returns the platform endpoint path.
func (l *Listener) Addr() string { return l.ln.Addr() }

// Serve accepts connections until ctx is done or Close is called, handing
// each decoded record to h. Connections are served one at a time, so records
// from consecutive connections keep their order. Lines that do not decode are
// skipped.
func (l *Listener) Serve(ctx context.Context, h Handler) error {
	g, gctx := errgroup.WithContext(ctx)
	stop := context.AfterFunc(gctx, func() { _ = l.Close() })
	defer stop()

	conns := make(chan io.ReadWriteCloser)
	g.Go(func() error {
		defer close(conns)
		for {
			conn, err := l.ln.Accept()
			if err != nil {
				if l.closed.Load() {
					return nil
				}
				return fmt.Errorf("ipc: accept on %s: %w", l.name, err)
			}
			select {
			case conns <- conn:
			case <-gctx.Done():
				conn.Close()
				return nil
			}
		}
	})
	g.Go(func() error {
		for conn := range conns {
			serveConn(gctx, conn, h)
		}
		return nil
	})
	return g.Wait()
}

func serveConn(ctx context.Context, conn io.ReadWriteCloser, h Handler) {
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 4096), maxRecordSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := Decode(line)
		if err != nil {
			continue
		}
		h(msg)
	}
}

// Close stops the listener. Safe to call more than once.
func (l *Listener) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := l.ln.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		return err
	}
	return nil
}
