package corehost

// Library is a native module opened by a Loader.
type Library interface {
	// Symbol returns the address of the named export.
	Symbol(name string) (uintptr, error)
	Close() error
}

// Loader opens native modules by path.
type Loader interface {
	Load(path string) (Library, error)
}

// NativeLoader opens libraries with the platform dynamic linker.
type NativeLoader struct{}

// Load opens the library at path. Failures match ErrLibraryLoad.
func (NativeLoader) Load(path string) (Library, error) {
	if path == "" {
		return nil, newHostError(ErrLibraryLoad, CoreHostLibLoadFailure, "empty library path")
	}
	lib, err := openLibrary(path)
	if err != nil {
		recordResourceError()
		return nil, err
	}
	return lib, nil
}
