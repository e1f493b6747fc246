//go:build !linux && !darwin && !freebsd && !windows

package corehost

import "fmt"

// Supported returns false on platforms without a dynamic loader binding.
func Supported() (bool, error) {
	return false, fmt.Errorf("corehost: not supported on this platform")
}

func openLibrary(path string) (Library, error) {
	return nil, newHostError(ErrNotSupported, HostApiFailed, "cannot open %s", path)
}

func hostfxrLibName() string { return "libhostfxr.so" }

func nethostLibName() string { return "libnethost.so" }

// Stub implementations for the native call layer
func bindNativeHostFxr(hostFxrExports) HostFxr {
	return unsupportedHostFxr{}
}

func bindNativeAssemblyLoader(uintptr) AssemblyLoader {
	return unsupportedHostFxr{}
}

func nativeInvoke(uintptr, []byte) int32 {
	return HostApiFailed.Int32()
}

func callGetHostFxrPath(uintptr) (string, StatusCode) {
	return "", HostApiFailed
}

type unsupportedHostFxr struct{}

func (unsupportedHostFxr) InitializeForRuntimeConfig(string) (StatusCode, ContextHandle) {
	return HostApiFailed, 0
}

func (unsupportedHostFxr) GetRuntimeDelegate(ContextHandle, DelegateType) (StatusCode, uintptr) {
	return HostApiFailed, 0
}

func (unsupportedHostFxr) Close(ContextHandle) StatusCode {
	return HostApiFailed
}

func (unsupportedHostFxr) LoadAssemblyAndGetFunctionPointer(string, string, string, uintptr) (StatusCode, uintptr) {
	return HostApiFailed, 0
}
