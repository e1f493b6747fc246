package corehost

import "fmt"

// resolveEntryPoint asks the loaded assembly delegate for the function pointer
// of an UnmanagedCallersOnly method. An invalid call never reaches the delegate.
func resolveEntryPoint(loader AssemblyLoader, call AssemblyFunctionCall) (uintptr, error) {
	if err := call.Validate(); err != nil {
		return 0, err
	}

	rc, fn := loader.LoadAssemblyAndGetFunctionPointer(
		call.AssemblyPath,
		call.TypeNameQualified,
		call.MethodName,
		UnmanagedCallersOnlyMethod,
	)
	if rc != Success {
		return 0, newHostError(ErrDelegateInvocation, rc, "%s in %s", call.QualifiedMethod(), call.AssemblyPath)
	}
	if fn == 0 {
		return 0, fmt.Errorf("%s: %w", call.QualifiedMethod(), newHostError(ErrDelegateInvocation, HostApiFailed, "null function pointer"))
	}
	recordDelegateResolution()
	return fn, nil
}
