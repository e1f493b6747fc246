package corehost

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// StatusCode is a hosting-layer return code as reported by hostfxr and nethost.
// Failure codes carry the 0x80008xxx prefix.
type StatusCode uint32

// hostfxr / nethost status codes
const (
	Success                           StatusCode = 0x00000000
	SuccessHostAlreadyInitialized     StatusCode = 0x00000001
	SuccessDifferentRuntimeProperties StatusCode = 0x00000002

	InvalidArgFailure          StatusCode = 0x80008081
	CoreHostLibLoadFailure     StatusCode = 0x80008082
	CoreHostLibMissingFailure  StatusCode = 0x80008083
	CoreHostEntryPointFailure  StatusCode = 0x80008084
	InvalidConfigFile          StatusCode = 0x80008093
	HostApiFailed              StatusCode = 0x80008097
	HostApiBufferTooSmall      StatusCode = 0x80008098
	HostInvalidState           StatusCode = 0x800080a3
	CoreHostIncompatibleConfig StatusCode = 0x800080a5
	HostApiUnsupportedScenario StatusCode = 0x800080a6
	HostFeatureDisabled        StatusCode = 0x800080a7
)

// StatusInvalidArgument is the integer status returned by the entry points
// when a request is rejected before any side effect.
const StatusInvalidArgument int32 = 1

// Succeeded reports whether c is one of the success codes.
func (c StatusCode) Succeeded() bool {
	return c == Success || c == SuccessHostAlreadyInitialized || c == SuccessDifferentRuntimeProperties
}

// Int32 returns c as the signed int the native entry points return.
func (c StatusCode) Int32() int32 {
	return int32(c)
}

// HostError wraps a StatusCode.
// Kind, when set, is one of the Err* sentinels and is what errors.Is matches.
type HostError struct {
	Code    StatusCode
	Kind    error
	detail  string
	message string // Optional custom message for sentinels
}

func newHostError(kind error, code StatusCode, format string, args ...any) *HostError {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &HostError{Code: code, Kind: kind, detail: detail}
}

func (e *HostError) Error() string {
	if e.message != "" {
		return e.message
	}

	var b strings.Builder
	if e.Kind != nil {
		b.WriteString(e.Kind.Error())
		b.WriteString(": ")
	}
	if e.detail != "" {
		b.WriteString(e.detail)
		b.WriteString(": ")
	}

	// Security: Check if we should sanitize error messages
	if isProductionEnv() {
		b.WriteString(e.sanitizedError())
	} else {
		b.WriteString(e.detailedError())
	}
	return b.String()
}

// Unwrap returns the taxonomy sentinel.
func (e *HostError) Unwrap() error {
	return e.Kind
}

// detailedError provides full error context for development
func (e *HostError) detailedError() string {
	switch e.Code {
	case Success:
		return "hostfxr: success"
	case SuccessHostAlreadyInitialized:
		return "hostfxr: success (Success_HostAlreadyInitialized) - config is compatible with the already initialized runtime"
	case SuccessDifferentRuntimeProperties:
		return "hostfxr: success (Success_DifferentRuntimeProperties) - config has runtime properties that differ from the initialized runtime"
	case InvalidArgFailure:
		return "hostfxr: invalid argument (InvalidArgFailure) - check paths and name lengths"
	case CoreHostLibLoadFailure:
		return "hostfxr: library load failed (CoreHostLibLoadFailure) - the library exists but could not be loaded"
	case CoreHostLibMissingFailure:
		return "hostfxr: library missing (CoreHostLibMissingFailure) - no hostfxr found, install the .NET runtime or set DOTNET_ROOT"
	case CoreHostEntryPointFailure:
		return "hostfxr: entry point missing (CoreHostEntryPointFailure) - the library does not export the hosting API"
	case InvalidConfigFile:
		return "hostfxr: invalid config file (InvalidConfigFile) - the .runtimeconfig.json file is invalid"
	case HostApiFailed:
		return "hostfxr: hosting API failed (HostApiFailed)"
	case HostApiBufferTooSmall:
		return "hostfxr: buffer too small (HostApiBufferTooSmall) - the resolved path does not fit the buffer"
	case HostInvalidState:
		return "hostfxr: invalid state (HostInvalidState) - the runtime has not been started"
	case CoreHostIncompatibleConfig:
		return "hostfxr: incompatible config (CoreHostIncompatibleConfig) - config is incompatible with the already initialized runtime"
	case HostApiUnsupportedScenario:
		return "hostfxr: unsupported scenario (HostApiUnsupportedScenario) - the delegate type is not supported by this context"
	case HostFeatureDisabled:
		return "hostfxr: feature disabled (HostFeatureDisabled) - managed feature support for native hosts is disabled"
	default:
		return fmt.Sprintf("hostfxr: unknown status code 0x%08x - consult the .NET hosting documentation", uint32(e.Code))
	}
}

// sanitizedError provides minimal error information for production
func (e *HostError) sanitizedError() string {
	switch e.Code {
	case Success, SuccessHostAlreadyInitialized, SuccessDifferentRuntimeProperties:
		return "hostfxr: success"
	case InvalidArgFailure:
		return "hostfxr: invalid argument"
	case CoreHostLibLoadFailure, CoreHostLibMissingFailure, CoreHostEntryPointFailure:
		return "hostfxr: host library unavailable"
	case InvalidConfigFile, CoreHostIncompatibleConfig:
		return "hostfxr: invalid configuration"
	case HostApiBufferTooSmall:
		return "hostfxr: buffer too small"
	case HostInvalidState:
		return "hostfxr: invalid state"
	case HostApiUnsupportedScenario, HostFeatureDisabled:
		return "hostfxr: operation unsupported"
	default:
		return "hostfxr: hosting error"
	}
}

// isProductionEnv checks if we're running in production environment
func isProductionEnv() bool {
	env := os.Getenv("COREHOST_ENV")
	if env == "production" || env == "prod" {
		return true
	}

	// Check if debug mode is explicitly disabled
	if debug := os.Getenv("COREHOST_DEBUG"); debug != "" {
		if val, err := strconv.ParseBool(debug); err == nil && !val {
			return true
		}
	}

	return false
}

// Error taxonomy. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrInvalidArgument    = &HostError{Code: InvalidArgFailure, message: "corehost: invalid argument"}
	ErrDiscovery          = &HostError{Code: CoreHostLibMissingFailure, message: "corehost: could not discover hostfxr"}
	ErrLibraryLoad        = &HostError{Code: CoreHostLibLoadFailure, message: "corehost: could not load library"}
	ErrSymbolResolution   = &HostError{Code: CoreHostEntryPointFailure, message: "corehost: could not resolve export"}
	ErrRuntimeInit        = &HostError{Code: HostApiFailed, message: "corehost: runtime initialization failed"}
	ErrDelegateResolution = &HostError{Code: HostApiFailed, message: "corehost: runtime delegate unavailable"}
	ErrDelegateInvocation = &HostError{Code: HostApiFailed, message: "corehost: assembly delegate failed"}
	ErrNotStarted         = &HostError{Code: HostInvalidState, message: "corehost: runtime not started"}
	ErrNotSupported       = &HostError{Code: HostApiFailed, message: "corehost: not supported on this platform"}
)

// Status flattens err into the integer contract of the exported entry points:
// 0 on success, StatusInvalidArgument for rejected input, otherwise the
// hosting status code carried by the error.
func Status(err error) int32 {
	if err == nil {
		return 0
	}
	if errors.Is(err, ErrInvalidArgument) {
		return StatusInvalidArgument
	}
	var he *HostError
	if errors.As(err, &he) {
		return he.Code.Int32()
	}
	return HostApiFailed.Int32()
}
