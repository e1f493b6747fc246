//go:build linux || darwin || freebsd

package corehost

import (
	"runtime"

	"github.com/ebitengine/purego"
)

type dlLibrary struct {
	path   string
	handle uintptr
}

func openLibrary(path string) (Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, newHostError(ErrLibraryLoad, CoreHostLibLoadFailure, "dlopen %s: %v", path, err)
	}
	return &dlLibrary{path: path, handle: handle}, nil
}

func (l *dlLibrary) Symbol(name string) (uintptr, error) {
	sym, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, newHostError(ErrSymbolResolution, CoreHostEntryPointFailure, "dlsym %s in %s: %v", name, l.path, err)
	}
	if sym == 0 {
		return 0, newHostError(ErrSymbolResolution, CoreHostEntryPointFailure, "dlsym %s in %s: null address", name, l.path)
	}
	return sym, nil
}

func (l *dlLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	return err
}

func hostfxrLibName() string {
	if runtime.GOOS == "darwin" {
		return "libhostfxr.dylib"
	}
	return "libhostfxr.so"
}

func nethostLibName() string {
	if runtime.GOOS == "darwin" {
		return "libnethost.dylib"
	}
	return "libnethost.so"
}

// Supported returns true if native libraries can be loaded on this platform.
func Supported() (bool, error) {
	return true, nil
}
