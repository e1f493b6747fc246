package corehost

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Bootstrapper loads hostfxr once and caches its resolved exports.
type Bootstrapper struct {
	locator Locator
	loader  Loader
	bind    func(hostFxrExports) HostFxr

	mu   sync.Mutex
	lib  Library
	fxr  HostFxr
	path string
}

// NewBootstrapper returns a Bootstrapper. Nil arguments select DefaultLocator
// and NativeLoader.
func NewBootstrapper(locator Locator, loader Loader) *Bootstrapper {
	if locator == nil {
		locator = DefaultLocator()
	}
	if loader == nil {
		loader = NativeLoader{}
	}
	return &Bootstrapper{locator: locator, loader: loader, bind: bindNativeHostFxr}
}

// EnsureLoaded locates and loads hostfxr and resolves its exports. After the
// first success it returns the cached HostFxr without touching the loader.
// A failed attempt leaves nothing cached and closes whatever it opened.
func (b *Bootstrapper) EnsureLoaded(hint string) (HostFxr, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.fxr != nil {
		return b.fxr, nil
	}

	start := time.Now()
	log := Logger().With(zap.String("hint", hint))

	path, err := b.locator.Locate(hint)
	if err != nil {
		recordBootstrapFailure()
		log.Debug("hostfxr discovery failed", zap.Error(err))
		return nil, err
	}

	lib, err := b.loader.Load(path)
	if err != nil {
		recordBootstrapFailure()
		log.Debug("hostfxr load failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	exports, err := resolveExports(lib)
	if err != nil {
		recordBootstrapFailure()
		if cerr := lib.Close(); cerr != nil {
			log.Debug("failed to close hostfxr", zap.String("path", path), zap.Error(cerr))
		}
		log.Debug("hostfxr export resolution failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	b.lib = lib
	b.path = path
	b.fxr = b.bind(exports)
	recordBootstrap(time.Since(start))
	log.Debug("hostfxr loaded", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))
	return b.fxr, nil
}

// Loaded reports whether the exports are cached.
func (b *Bootstrapper) Loaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fxr != nil
}

// Path returns the loaded hostfxr path, or "" before the first success.
func (b *Bootstrapper) Path() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.path
}
