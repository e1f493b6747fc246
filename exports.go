package corehost

import "fmt"

// Export identifies one of the hostfxr entry points the bootstrapper needs.
type Export int

const (
	ExportInitializeForRuntimeConfig Export = iota
	ExportGetRuntimeDelegate
	ExportClose
)

var exportNames = [...]string{
	ExportInitializeForRuntimeConfig: "hostfxr_initialize_for_runtime_config",
	ExportGetRuntimeDelegate:         "hostfxr_get_runtime_delegate",
	ExportClose:                      "hostfxr_close",
}

// String returns the exported symbol name.
func (e Export) String() string {
	if e < 0 || int(e) >= len(exportNames) {
		return fmt.Sprintf("Export(%d)", int(e))
	}
	return exportNames[e]
}

// RequiredExports lists every export resolved by EnsureLoaded, in resolution order.
func RequiredExports() []Export {
	return []Export{ExportInitializeForRuntimeConfig, ExportGetRuntimeDelegate, ExportClose}
}

// DelegateType mirrors hostfxr_delegate_type.
type DelegateType int32

const (
	DelegateComActivation DelegateType = iota
	DelegateLoadInMemoryAssembly
	DelegateWinRTActivation
	DelegateComRegister
	DelegateComUnregister
	DelegateLoadAssemblyAndGetFunctionPointer
	DelegateGetFunctionPointer
	DelegateLoadAssembly
	DelegateLoadAssemblyBytes
)

// UnmanagedCallersOnlyMethod is the (char_t*)-1 delegate type name telling the
// runtime the target method is marked UnmanagedCallersOnly.
const UnmanagedCallersOnlyMethod = ^uintptr(0)

// ContextHandle is an opaque hostfxr_handle.
type ContextHandle uintptr

// HostFxr is the resolved hosting API.
type HostFxr interface {
	InitializeForRuntimeConfig(configPath string) (StatusCode, ContextHandle)
	GetRuntimeDelegate(h ContextHandle, kind DelegateType) (StatusCode, uintptr)
	Close(h ContextHandle) StatusCode
}

// AssemblyLoader is the load_assembly_and_get_function_pointer delegate.
type AssemblyLoader interface {
	LoadAssemblyAndGetFunctionPointer(assemblyPath, typeName, methodName string, delegateTypeName uintptr) (StatusCode, uintptr)
}

type hostFxrExports struct {
	initialize  uintptr
	getDelegate uintptr
	close       uintptr
}

// resolveExports looks up all required exports. Any missing export fails the
// whole table; nothing partial is returned.
func resolveExports(lib Library) (hostFxrExports, error) {
	var addrs [len(exportNames)]uintptr
	for _, e := range RequiredExports() {
		addr, err := lib.Symbol(e.String())
		if err != nil {
			return hostFxrExports{}, fmt.Errorf("failed to resolve %s: %w", e, err)
		}
		recordSymbolResolution()
		addrs[e] = addr
	}
	return hostFxrExports{
		initialize:  addrs[ExportInitializeForRuntimeConfig],
		getDelegate: addrs[ExportGetRuntimeDelegate],
		close:       addrs[ExportClose],
	}, nil
}
