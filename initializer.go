package corehost

import (
	"fmt"

	"go.uber.org/zap"
)

// initializeRuntime creates a runtime context from configPath and asks it for
// the load_assembly_and_get_function_pointer delegate. The context is closed
// exactly once before returning, whatever the outcome.
//
// A non-zero pointer is the only success signal. When get-delegate fails with
// a known code the pointer it produced is still returned, alongside an error.
func initializeRuntime(fxr HostFxr, configPath string, log *logChannel) (fn uintptr, err error) {
	rc, handle := fxr.InitializeForRuntimeConfig(configPath)
	recordRuntimeInit()
	if handle != 0 {
		defer func() {
			if crc := fxr.Close(handle); crc != Success {
				Logger().Debug("hostfxr_close failed", zap.Uint32("code", uint32(crc)))
			}
			recordContextClose()
		}()
	}

	switch rc {
	case Success:
		log.Info("Success: Hosting components were successfully initialized")
	case SuccessHostAlreadyInitialized:
		log.Info("Success_HostAlreadyInitialized: Config is compatible with already initialized hosting components")
	case SuccessDifferentRuntimeProperties:
		log.Info("Success_DifferentRuntimeProperties: Config has runtime properties that differ from already initialized hosting components")
	case CoreHostIncompatibleConfig:
		log.Error("CoreHostIncompatibleConfig: Config is incompatible with already initialized hosting components")
		return 0, newHostError(ErrRuntimeInit, rc, "%s", configPath)
	case InvalidConfigFile:
		log.Error("InvalidConfigFile: The .runtimeconfig.json file is invalid")
		return 0, newHostError(ErrRuntimeInit, rc, "%s", configPath)
	default:
		log.Error(fmt.Sprintf("Failed to initialize the runtime from %s, error code 0x%08x", configPath, uint32(rc)))
		return 0, newHostError(ErrRuntimeInit, rc, "%s", configPath)
	}

	log.Info("Retrieving the function pointer...")
	rc, fn = fxr.GetRuntimeDelegate(handle, DelegateLoadAssemblyAndGetFunctionPointer)
	switch rc {
	case Success:
		log.Info("Function is ready.")
		return fn, nil
	case HostApiUnsupportedScenario:
		log.Error("HostApiUnsupportedScenario: the given delegate type is not supported using the given context")
	case HostFeatureDisabled:
		log.Error("HostFeatureDisabled: managed feature support for native host is disabled")
	default:
		log.Error(fmt.Sprintf("Failed to get the load assembly function pointer, error code 0x%08x", uint32(rc)))
	}
	// the pointer is passed through unchanged; callers decide on fn != 0
	return fn, newHostError(ErrDelegateResolution, rc, "get runtime delegate")
}
