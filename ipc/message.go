package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Message type discriminators.
const (
	LogMessageType               = "CoreHook.IPC.Messages.LogMessage"
	InjectionCompleteMessageType = "CoreHook.IPC.Messages.InjectionCompleteMessage"
)

// Source identifies records written by the native host.
const Source = "NativeHost"

var crlf = []byte("\r\n")

// Level follows Microsoft.Extensions.Logging.LogLevel.
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
	LevelNone
)

var levelNames = [...]string{"Trace", "Debug", "Information", "Warning", "Error", "Critical", "None"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// Message is any decoded record.
type Message interface {
	MessageType() string
}

// LogMessage is a diagnostic record.
type LogMessage struct {
	Type    string `json:"$type"`
	Level   Level  `json:"Level"`
	Source  string `json:"Source"`
	Message string `json:"Message"`
}

// NewLogMessage returns a LogMessage from this host.
func NewLogMessage(level Level, message string) *LogMessage {
	return &LogMessage{Type: LogMessageType, Level: level, Source: Source, Message: message}
}

func (m *LogMessage) MessageType() string { return LogMessageType }

// InjectionCompleteMessage reports the outcome of an injection.
type InjectionCompleteMessage struct {
	Type      string `json:"$type"`
	ProcessID int    `json:"ProcessId"`
	Completed bool   `json:"Completed"`
}

// NewInjectionCompleteMessage returns an InjectionCompleteMessage for pid.
func NewInjectionCompleteMessage(pid int, completed bool) *InjectionCompleteMessage {
	return &InjectionCompleteMessage{Type: InjectionCompleteMessageType, ProcessID: pid, Completed: completed}
}

func (m *InjectionCompleteMessage) MessageType() string { return InjectionCompleteMessageType }

// UnknownMessage keeps a record whose type is not recognized.
type UnknownMessage struct {
	Type string
	Raw  []byte
}

func (m *UnknownMessage) MessageType() string { return m.Type }

// ErrMalformedRecord is returned by Decode for input that is not a JSON object.
var ErrMalformedRecord = errors.New("ipc: malformed record")

// Encode serializes m as one CRLF-terminated line.
func Encode(m Message) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("ipc: encode %s: %w", m.MessageType(), err)
	}
	// json.Encoder terminates with '\n'
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	return append(out, crlf...), nil
}

// Decode parses one record, with or without its line terminator.
func Decode(line []byte) (Message, error) {
	line = bytes.TrimRight(line, "\r\n")
	if !gjson.ValidBytes(line) || !gjson.ParseBytes(line).IsObject() {
		return nil, ErrMalformedRecord
	}

	typ := gjson.GetBytes(line, "$type").String()
	var m Message
	switch typ {
	case LogMessageType:
		m = &LogMessage{}
	case InjectionCompleteMessageType:
		m = &InjectionCompleteMessage{}
	default:
		return &UnknownMessage{Type: typ, Raw: bytes.Clone(line)}, nil
	}
	if err := json.Unmarshal(line, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecord, err)
	}
	return m, nil
}
