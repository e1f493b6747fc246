package corehost

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Host owns the process-wide hosting state: the hostfxr exports and the
// load_assembly_and_get_function_pointer delegate. Both are created by the
// first successful Start and kept for the life of the Host.
type Host struct {
	boot         *Bootstrapper
	dial         Dialer
	pipeName     string
	bindDelegate func(uintptr) AssemblyLoader
	invoke       func(fn uintptr, payload []byte) int32

	mu       sync.Mutex
	delegate AssemblyLoader
}

type hostOptions struct {
	locator  Locator
	loader   Loader
	dial     Dialer
	pipeName string
}

// Option configures a Host.
type Option func(*hostOptions)

// WithLocator sets how hostfxr is found.
func WithLocator(l Locator) Option {
	return func(o *hostOptions) { o.locator = l }
}

// WithLoader sets how native libraries are opened.
func WithLoader(l Loader) Option {
	return func(o *hostOptions) { o.loader = l }
}

// WithDialer sets how log channels are opened.
func WithDialer(d Dialer) Option {
	return func(o *hostOptions) { o.dial = d }
}

// WithPipeName sets the log channel used by requests that name none.
func WithPipeName(name string) Option {
	return func(o *hostOptions) { o.pipeName = name }
}

// NewHost returns a Host that has not been started.
func NewHost(opts ...Option) *Host {
	o := hostOptions{dial: DialPipe}
	for _, opt := range opts {
		opt(&o)
	}
	return &Host{
		boot:         NewBootstrapper(o.locator, o.loader),
		dial:         o.dial,
		pipeName:     o.pipeName,
		bindDelegate: bindNativeAssemblyLoader,
		invoke:       nativeInvoke,
	}
}

var (
	defaultHost     *Host
	defaultHostOnce sync.Once
)

// Default returns the process-wide Host used by the package-level entry
// points. It is configured from the file named by COREHOST_CONFIG when set,
// and from the environment otherwise.
func Default() *Host {
	defaultHostOnce.Do(func() {
		defaultHost = NewHost(configFromEnv().HostOptions()...)
	})
	return defaultHost
}

// configFromEnv loads the file named by COREHOST_CONFIG, falling back to
// DefaultConfig with environment overrides when it is unset or unusable.
func configFromEnv() *Config {
	if path := os.Getenv(EnvConfig); path != "" {
		cfg, err := LoadConfig(path)
		if err == nil {
			return cfg
		}
		Logger().Warn("ignoring unusable config", zap.String("path", path), zap.Error(err))
	}
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	return cfg
}

// channelName returns name, or the host's default channel when name is empty.
func (h *Host) channelName(name string) string {
	if name == "" {
		return h.pipeName
	}
	return name
}

// Start bootstraps the runtime for args. Invalid arguments are rejected
// before anything is loaded or logged. Once a delegate is cached further
// calls are no-ops.
func (h *Host) Start(args HostArguments) error {
	if err := args.Validate(); err != nil {
		recordInvalidArgument()
		return err
	}

	log := openLogChannel(h.dial, h.channelName(args.PipeName))
	defer log.close()

	log.Info("CoreHook.NativeHost successfully loaded! Now starting the .NET Host.")

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.delegate != nil {
		log.Info("The .NET Host is already started.")
		return nil
	}

	fxr, err := h.boot.EnsureLoaded(args.CoreRootPath)
	if err != nil {
		log.Error("Error, unable to load the .NET Host!")
		return err
	}

	log.Info("Now loading the assembly.")

	fn, err := initializeRuntime(fxr, RuntimeConfigPath(args.AssemblyFilePath), log)
	if fn == 0 {
		if err == nil {
			err = newHostError(ErrDelegateResolution, HostInvalidState, "null load assembly function pointer")
		}
		return err
	}
	if err != nil {
		Logger().Warn("using delegate returned alongside a failure code", zap.Error(err))
	}

	h.delegate = h.bindDelegate(fn)
	log.Info("Done. Ready to execute.")
	return nil
}

// Started reports whether a delegate is cached.
func (h *Host) Started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.delegate != nil
}

// HostFxrPath returns the path hostfxr was loaded from, or "" before Start.
func (h *Host) HostFxrPath() string {
	return h.boot.Path()
}

// CreateAssemblyDelegate resolves call to a native function pointer using
// the cached delegate.
func (h *Host) CreateAssemblyDelegate(call AssemblyFunctionCall) (uintptr, error) {
	h.mu.Lock()
	loader := h.delegate
	h.mu.Unlock()

	if err := call.Validate(); err != nil {
		recordInvalidArgument()
		return 0, err
	}
	if loader == nil {
		return 0, fmt.Errorf("create delegate for %s: %w", call.QualifiedMethod(), ErrNotStarted)
	}
	return resolveEntryPoint(loader, call)
}

// isValidationError reports whether err was raised before any side effect.
func isValidationError(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}
