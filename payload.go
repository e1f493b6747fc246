package corehost

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// EncodeWideString returns s as NUL-terminated UTF-16LE, the form managed
// entry points read with Marshal.PtrToStringUni.
func EncodeWideString(s string) ([]byte, error) {
	b, err := utf16le.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode wide string: %w", err)
	}
	return append(b, 0, 0), nil
}

// DecodeWideString decodes UTF-16LE up to the first NUL code unit.
func DecodeWideString(b []byte) (string, error) {
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			b = b[:i]
			break
		}
	}
	if len(b)%2 != 0 {
		return "", fmt.Errorf("decode wide string: odd length %d", len(b))
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode wide string: %w", err)
	}
	return string(out), nil
}

// RemoteInfo is the payload read by the managed plugin loader: which user
// library to load and the entry point to call once it is loaded.
type RemoteInfo struct {
	RemoteProcessID     int      `json:"RemoteProcessId"`
	ChannelName         string   `json:"ChannelName"`
	UserLibrary         string   `json:"UserLibrary"`
	UserLibraryName     string   `json:"UserLibraryName"`
	UserParams          []any    `json:"UserParams"`
	UserParamsTypeNames []string `json:"UserParamsTypeNames"`
	ClassName           string   `json:"ClassName,omitempty"`
	MethodName          string   `json:"MethodName,omitempty"`
}

// EncodeRemoteInfo serializes info as JSON wrapped in a wide string.
func EncodeRemoteInfo(info RemoteInfo) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(info); err != nil {
		return nil, fmt.Errorf("encode remote info: %w", err)
	}
	return EncodeWideString(strings.TrimSuffix(buf.String(), "\n"))
}

// DecodeRemoteInfo reverses EncodeRemoteInfo.
func DecodeRemoteInfo(b []byte) (RemoteInfo, error) {
	var info RemoteInfo
	s, err := DecodeWideString(b)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal([]byte(s), &info); err != nil {
		return info, fmt.Errorf("decode remote info: %w", err)
	}
	return info, nil
}

// EntryPoint is a managed method named as "Assembly.Name.Type.Method".
type EntryPoint struct {
	Assembly string
	Type     string
	Method   string
}

// ParseEntryPoint splits a dotted method name. The last part is the method,
// the one before it the type, and everything before that the assembly name,
// which is also the type's namespace.
func ParseEntryPoint(name string) (EntryPoint, error) {
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return EntryPoint{}, newHostError(ErrInvalidArgument, InvalidArgFailure,
			"entry point %q needs at least three dotted parts", name)
	}
	for _, p := range parts {
		if p == "" {
			return EntryPoint{}, newHostError(ErrInvalidArgument, InvalidArgFailure,
				"entry point %q has an empty part", name)
		}
	}
	n := len(parts)
	return EntryPoint{
		Assembly: strings.Join(parts[:n-2], "."),
		Type:     parts[n-2],
		Method:   parts[n-1],
	}, nil
}

// QualifiedTypeName returns the assembly-qualified type name, "Ns.Type, Ns".
func (e EntryPoint) QualifiedTypeName() string {
	return e.Assembly + "." + e.Type + ", " + e.Assembly
}

// NewAssemblyFunctionCall builds a call to the dotted entry point name, whose
// assembly is <dir>/<assembly>.dll.
func NewAssemblyFunctionCall(dir, name, pipeName string, payload []byte) (AssemblyFunctionCall, error) {
	ep, err := ParseEntryPoint(name)
	if err != nil {
		return AssemblyFunctionCall{}, err
	}
	call := AssemblyFunctionCall{
		AssemblyPath:      filepath.Join(dir, ep.Assembly+".dll"),
		TypeNameQualified: ep.QualifiedTypeName(),
		MethodName:        ep.Method,
		PipeName:          pipeName,
		Payload:           payload,
	}
	return call, call.Validate()
}
