//go:build windows

package corehost

import (
	"golang.org/x/sys/windows"
)

type winLibrary struct {
	path   string
	handle windows.Handle
}

func openLibrary(path string) (Library, error) {
	handle, err := windows.LoadLibrary(path)
	if err != nil {
		return nil, newHostError(ErrLibraryLoad, CoreHostLibLoadFailure, "LoadLibrary %s: %v", path, err)
	}
	return &winLibrary{path: path, handle: handle}, nil
}

func (l *winLibrary) Symbol(name string) (uintptr, error) {
	proc, err := windows.GetProcAddress(l.handle, name)
	if err != nil {
		return 0, newHostError(ErrSymbolResolution, CoreHostEntryPointFailure, "GetProcAddress %s in %s: %v", name, l.path, err)
	}
	if proc == 0 {
		return 0, newHostError(ErrSymbolResolution, CoreHostEntryPointFailure, "GetProcAddress %s in %s: null address", name, l.path)
	}
	return proc, nil
}

func (l *winLibrary) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := windows.FreeLibrary(l.handle)
	l.handle = 0
	return err
}

func hostfxrLibName() string { return "hostfxr.dll" }

func nethostLibName() string { return "nethost.dll" }

// Supported returns true if native libraries can be loaded on this platform.
func Supported() (bool, error) {
	return true, nil
}
