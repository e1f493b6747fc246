package ipc

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrChannelUnavailable is returned by Dial when nothing listens on the name.
var ErrChannelUnavailable = errors.New("ipc: channel unavailable")

// Channel is the writing end of a log channel.
type Channel struct {
	name string

	mu   sync.Mutex
	conn io.WriteCloser
}

// Dial connects to the listener serving name.
func Dial(name string) (*Channel, error) {
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChannelUnavailable, err)
	}
	conn, err := dialEndpoint(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrChannelUnavailable, name, err)
	}
	return &Channel{name: name, conn: conn}, nil
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Send writes one log record and flushes it before returning.
func (c *Channel) Send(level Level, message string) error {
	return c.SendMessage(NewLogMessage(level, message))
}

// SendMessage writes m as a single record and flushes it before returning.
func (c *Channel) SendMessage(m Message) error {
	b, err := Encode(m)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("ipc: send on closed channel %s", c.name)
	}
	if _, err := c.conn.Write(b); err != nil {
		return fmt.Errorf("ipc: write to %s: %w", c.name, err)
	}
	if s, ok := c.conn.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			return fmt.Errorf("ipc: flush %s: %w", c.name, err)
		}
	}
	return nil
}

// Close releases the connection. Closing twice is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
