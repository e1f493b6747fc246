package corehost

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/blacktop/go-corehost/ipc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 5 * time.Second
	tick    = 10 * time.Millisecond
)

// isCI returns true if running in GitHub Actions
func isCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

const fakeHostFxrPath = "/fake/dotnet/host/fxr/8.0.0/libhostfxr"

type mockLibrary struct {
	mock.Mock
}

func (m *mockLibrary) Symbol(name string) (uintptr, error) {
	args := m.Called(name)
	return args.Get(0).(uintptr), args.Error(1)
}

func (m *mockLibrary) Close() error {
	return m.Called().Error(0)
}

// newExportingLibrary returns a library exporting every required symbol.
func newExportingLibrary() *mockLibrary {
	lib := &mockLibrary{}
	for i, e := range RequiredExports() {
		lib.On("Symbol", e.String()).Return(uintptr(0x1000+i), nil)
	}
	lib.On("Close").Return(nil).Maybe()
	return lib
}

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(path string) (Library, error) {
	args := m.Called(path)
	lib, _ := args.Get(0).(Library)
	return lib, args.Error(1)
}

type staticLocator struct {
	path string
	err  error
}

func (s staticLocator) Locate(string) (string, error) {
	return s.path, s.err
}

// fakeHostFxr scripts the hosting API.
type fakeHostFxr struct {
	mu sync.Mutex

	initCode     StatusCode
	handle       ContextHandle
	delegateCode StatusCode
	delegate     uintptr

	initCalls     int
	delegateCalls int
	delegateKinds []DelegateType
	configPaths   []string
	closed        []ContextHandle
}

func newFakeHostFxr() *fakeHostFxr {
	return &fakeHostFxr{handle: 0xC0FFEE, delegate: 0xDE1E6A7E}
}

func (f *fakeHostFxr) InitializeForRuntimeConfig(configPath string) (StatusCode, ContextHandle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	f.configPaths = append(f.configPaths, configPath)
	return f.initCode, f.handle
}

func (f *fakeHostFxr) GetRuntimeDelegate(h ContextHandle, kind DelegateType) (StatusCode, uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delegateCalls++
	f.delegateKinds = append(f.delegateKinds, kind)
	return f.delegateCode, f.delegate
}

func (f *fakeHostFxr) Close(h ContextHandle) StatusCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, h)
	return Success
}

func (f *fakeHostFxr) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.closed)
}

// fakeAssemblyLoader scripts load_assembly_and_get_function_pointer.
type fakeAssemblyLoader struct {
	mu sync.Mutex

	rc StatusCode
	fn uintptr

	calls            int
	assemblyPath     string
	typeName         string
	methodName       string
	delegateTypeName uintptr
}

func (f *fakeAssemblyLoader) LoadAssemblyAndGetFunctionPointer(assemblyPath, typeName, methodName string, delegateTypeName uintptr) (StatusCode, uintptr) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.assemblyPath, f.typeName, f.methodName = assemblyPath, typeName, methodName
	f.delegateTypeName = delegateTypeName
	return f.rc, f.fn
}

func (f *fakeAssemblyLoader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type logRecord struct {
	Level   ipc.Level
	Message string
}

// recordingLog is an in-memory Dialer that tracks open sinks.
type recordingLog struct {
	mu       sync.Mutex
	records  []logRecord
	dials    int
	names    []string
	open     int
	failDial bool
}

func (r *recordingLog) dial(name string) (LogSink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dials++
	r.names = append(r.names, name)
	if r.failDial {
		return nil, ipc.ErrChannelUnavailable
	}
	r.open++
	return &recordingSink{log: r}, nil
}

func (r *recordingLog) openCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.open
}

func (r *recordingLog) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Message
	}
	return out
}

func (r *recordingLog) levels() []ipc.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ipc.Level, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Level
	}
	return out
}

type recordingSink struct {
	log    *recordingLog
	closed bool
}

func (s *recordingSink) Send(level ipc.Level, message string) error {
	s.log.mu.Lock()
	defer s.log.mu.Unlock()
	s.log.records = append(s.log.records, logRecord{Level: level, Message: message})
	return nil
}

func (s *recordingSink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.mu.Lock()
	s.log.open--
	s.log.mu.Unlock()
	return nil
}

// testHost wires a Host to fakes. Every native boundary is replaced.
type testHost struct {
	*Host
	fxr    *fakeHostFxr
	asm    *fakeAssemblyLoader
	lib    *mockLibrary
	loader *mockLoader
	log    *recordingLog
}

func newTestHost(t *testing.T) *testHost {
	t.Helper()
	th := &testHost{
		fxr:    newFakeHostFxr(),
		asm:    &fakeAssemblyLoader{fn: 0xF00D},
		lib:    newExportingLibrary(),
		loader: &mockLoader{},
		log:    &recordingLog{},
	}
	th.loader.On("Load", fakeHostFxrPath).Return(th.lib, nil)
	th.Host = NewHost(
		WithLocator(staticLocator{path: fakeHostFxrPath}),
		WithLoader(th.loader),
		WithDialer(th.log.dial),
	)
	th.boot.bind = func(hostFxrExports) HostFxr { return th.fxr }
	th.bindDelegate = func(uintptr) AssemblyLoader { return th.asm }
	th.invoke = func(uintptr, []byte) int32 { return 0 }
	return th
}

func validHostArguments() HostArguments {
	return HostArguments{
		AssemblyFilePath: "/opt/plugins/CoreHook.CoreLoader.dll",
		CoreRootPath:     "/usr/share/dotnet",
		PipeName:         "corehost-test",
	}
}

func validCall() AssemblyFunctionCall {
	return AssemblyFunctionCall{
		AssemblyPath:      "/opt/plugins/CoreHook.CoreLoader.dll",
		TypeNameQualified: "CoreHook.CoreLoader.PluginLoader, CoreHook.CoreLoader",
		MethodName:        "Load",
		PipeName:          "corehost-test",
	}
}

// serveLogPipe listens on name until the test ends and returns a snapshot
// function over the log messages received so far.
func serveLogPipe(t *testing.T, name string) func() []string {
	t.Helper()
	ln, err := ipc.Listen(name)
	require.NoError(t, err)

	var mu sync.Mutex
	var got []string
	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- ln.Serve(ctx, func(m ipc.Message) {
			if lm, ok := m.(*ipc.LogMessage); ok {
				mu.Lock()
				got = append(got, lm.Message)
				mu.Unlock()
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-served
	})

	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), got...)
	}
}

func (r *recordingLog) dialedNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
