package corehost

// The functions below are the integer-status surface exported to native
// callers. They operate on Default().

// StartCoreCLR bootstraps the runtime. It returns 0 on success,
// StatusInvalidArgument for rejected arguments and the hosting status code
// otherwise.
func StartCoreCLR(args HostArguments) int32 {
	return Status(Default().Start(args))
}

// CreateAssemblyDelegate resolves call and stores the function pointer in
// out. out is written only on success.
func CreateAssemblyDelegate(call AssemblyFunctionCall, out *uintptr) int32 {
	if out == nil {
		return StatusInvalidArgument
	}
	fn, err := Default().CreateAssemblyDelegate(call)
	if err != nil {
		return Status(err)
	}
	*out = fn
	return 0
}

// ExecuteAssemblyFunction resolves and invokes call, returning the managed
// status or the resolution failure code.
func ExecuteAssemblyFunction(call AssemblyFunctionCall) int32 {
	rc, _ := Default().ExecuteAssemblyFunction(call)
	return rc
}

// UnloadRuntime always succeeds. The runtime cannot be unloaded once started.
func UnloadRuntime() int32 {
	return 0
}
