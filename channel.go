package corehost

import (
	"github.com/blacktop/go-corehost/ipc"
	"go.uber.org/zap"
)

// LogSink receives progress records for one request.
type LogSink interface {
	Send(level ipc.Level, message string) error
	Close() error
}

// Dialer opens a LogSink on the named channel.
type Dialer func(name string) (LogSink, error)

// DialPipe is the default Dialer, backed by ipc.Dial.
func DialPipe(name string) (LogSink, error) {
	ch, err := ipc.Dial(name)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

// logChannel is a best-effort log channel: dial and write failures are
// counted and dropped, never returned. A nil *logChannel discards records.
type logChannel struct {
	name string
	dial Dialer
	sink LogSink
}

// openLogChannel dials name. An empty name yields a channel that only logs locally.
func openLogChannel(dial Dialer, name string) *logChannel {
	c := &logChannel{name: name, dial: dial}
	c.open()
	return c
}

func (c *logChannel) open() {
	if c == nil || c.name == "" || c.dial == nil || c.sink != nil {
		return
	}
	sink, err := c.dial(c.name)
	if err != nil {
		recordChannelFailure()
		Logger().Debug("log channel unavailable", zap.String("pipe", c.name), zap.Error(err))
		return
	}
	c.sink = sink
}

func (c *logChannel) close() {
	if c == nil || c.sink == nil {
		return
	}
	if err := c.sink.Close(); err != nil {
		Logger().Debug("failed to close log channel", zap.String("pipe", c.name), zap.Error(err))
	}
	c.sink = nil
}

func (c *logChannel) send(level ipc.Level, message string) {
	if c == nil || c.sink == nil {
		return
	}
	if err := c.sink.Send(level, message); err != nil {
		recordChannelFailure()
		Logger().Debug("log channel write failed", zap.String("pipe", c.name), zap.Error(err))
		c.close()
	}
}

func (c *logChannel) Info(message string) {
	Logger().Info(message, c.fields()...)
	c.send(ipc.LevelInformation, message)
}

func (c *logChannel) Error(message string) {
	Logger().Error(message, c.fields()...)
	c.send(ipc.LevelError, message)
}

func (c *logChannel) fields() []zap.Field {
	if c == nil || c.name == "" {
		return nil
	}
	return []zap.Field{zap.String("pipe", c.name)}
}
