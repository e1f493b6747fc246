//go:build linux || darwin || freebsd || windows

package corehost

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Every raw call across the hosting ABI goes through this file.

type nativeHostFxr struct {
	exports hostFxrExports
}

func bindNativeHostFxr(exports hostFxrExports) HostFxr {
	return &nativeHostFxr{exports: exports}
}

// hostfxr_initialize_for_runtime_config(const char_t*, const hostfxr_initialize_parameters*, hostfxr_handle*)
func (n *nativeHostFxr) InitializeForRuntimeConfig(configPath string) (StatusCode, ContextHandle) {
	path := newCharT(configPath)
	var handle uintptr
	rc, _, _ := purego.SyscallN(n.exports.initialize,
		uintptr(unsafe.Pointer(&path[0])),
		0,
		uintptr(unsafe.Pointer(&handle)))
	runtime.KeepAlive(path)
	return StatusCode(uint32(rc)), ContextHandle(handle)
}

// hostfxr_get_runtime_delegate(hostfxr_handle, hostfxr_delegate_type, void**)
func (n *nativeHostFxr) GetRuntimeDelegate(h ContextHandle, kind DelegateType) (StatusCode, uintptr) {
	var fn uintptr
	rc, _, _ := purego.SyscallN(n.exports.getDelegate,
		uintptr(h),
		uintptr(kind),
		uintptr(unsafe.Pointer(&fn)))
	return StatusCode(uint32(rc)), fn
}

// hostfxr_close(hostfxr_handle)
func (n *nativeHostFxr) Close(h ContextHandle) StatusCode {
	rc, _, _ := purego.SyscallN(n.exports.close, uintptr(h))
	return StatusCode(uint32(rc))
}

// nativeAssemblyLoader wraps the load_assembly_and_get_function_pointer delegate.
type nativeAssemblyLoader struct {
	fn uintptr
}

func bindNativeAssemblyLoader(fn uintptr) AssemblyLoader {
	return &nativeAssemblyLoader{fn: fn}
}

func (l *nativeAssemblyLoader) LoadAssemblyAndGetFunctionPointer(assemblyPath, typeName, methodName string, delegateTypeName uintptr) (StatusCode, uintptr) {
	asm := newCharT(assemblyPath)
	typ := newCharT(typeName)
	method := newCharT(methodName)
	var fn uintptr
	rc, _, _ := purego.SyscallN(l.fn,
		uintptr(unsafe.Pointer(&asm[0])),
		uintptr(unsafe.Pointer(&typ[0])),
		uintptr(unsafe.Pointer(&method[0])),
		delegateTypeName,
		0, // reserved
		uintptr(unsafe.Pointer(&fn)))
	runtime.KeepAlive(asm)
	runtime.KeepAlive(typ)
	runtime.KeepAlive(method)
	return StatusCode(uint32(rc)), fn
}

// nativeInvoke calls an UnmanagedCallersOnly entry point: int fn(const void* payload).
func nativeInvoke(fn uintptr, payload []byte) int32 {
	if len(payload) == 0 {
		rc, _, _ := purego.SyscallN(fn, 0)
		return int32(rc)
	}
	rc, _, _ := purego.SyscallN(fn, uintptr(unsafe.Pointer(&payload[0])))
	runtime.KeepAlive(payload)
	return int32(rc)
}

// get_hostfxr_path(char_t* buffer, size_t* buffer_size, const get_hostfxr_parameters*)
func callGetHostFxrPath(fn uintptr) (string, StatusCode) {
	buf := newCharTBuffer(MaxPathLength)
	size := uintptr(len(buf))
	rc, _, _ := purego.SyscallN(fn,
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(unsafe.Pointer(&size)),
		0)
	code := StatusCode(uint32(rc))
	if code != Success {
		return "", code
	}
	return buf.String(), code
}
