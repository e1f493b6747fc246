package corehost

import (
	"strings"
	"unicode/utf16"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxPathLength bounds HostArguments paths, in UTF-16 code units including the terminator.
	MaxPathLength = 260
	// MaxFunctionNameLength bounds AssemblyFunctionCall names, in UTF-16 code units including the terminator.
	MaxFunctionNameLength = 256
)

const runtimeConfigSuffix = ".runtimeconfig.json"

// HostArguments is one bootstrap request.
type HostArguments struct {
	// AssemblyFilePath locates the managed assembly; its runtime config sits next to it.
	AssemblyFilePath string `validate:"required,hostpath"`
	// CoreRootPath is the runtime directory, used as the first hostfxr search location.
	CoreRootPath string `validate:"required,hostpath"`
	// PipeName names the log channel. Empty uses the host's default channel,
	// and logging is disabled when that is empty too.
	PipeName string
}

// AssemblyFunctionCall is one invocation request.
type AssemblyFunctionCall struct {
	AssemblyPath      string `validate:"required,hostname"`
	TypeNameQualified string `validate:"required,hostname"`
	MethodName        string `validate:"required,hostname"`
	PipeName          string
	// Payload is handed to the managed entry point as-is. Nil passes a null pointer.
	Payload []byte
}

// validate is a package-level singleton; building a validator is expensive.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// registration only fails on an empty tag or nil func
	_ = v.RegisterValidation("hostpath", boundedWide(MaxPathLength))
	_ = v.RegisterValidation("hostname", boundedWide(MaxFunctionNameLength))
	return v
}

func boundedWide(limit int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return !strings.ContainsRune(s, 0) && wideLen(s) < limit
	}
}

// wideLen counts UTF-16 code units, the unit the native structs are sized in.
func wideLen(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Validate checks both paths. Failures match ErrInvalidArgument.
func (a HostArguments) Validate() error {
	if err := validate.Struct(a); err != nil {
		return newHostError(ErrInvalidArgument, InvalidArgFailure, "host arguments: %v", err)
	}
	return nil
}

// Validate checks the three name fields. Failures match ErrInvalidArgument.
func (c AssemblyFunctionCall) Validate() error {
	if err := validate.Struct(c); err != nil {
		return newHostError(ErrInvalidArgument, InvalidArgFailure, "assembly function call: %v", err)
	}
	return nil
}

// QualifiedMethod returns "<Type>.<Method>" for log messages.
func (c AssemblyFunctionCall) QualifiedMethod() string {
	return c.TypeNameQualified + "." + c.MethodName
}

// RuntimeConfigPath derives the runtime config file from an assembly path by
// replacing its four-character extension: "app.dll" -> "app.runtimeconfig.json".
// Paths shorter than four characters are kept whole.
func RuntimeConfigPath(assemblyPath string) string {
	r := []rune(assemblyPath)
	if len(r) < 4 {
		return assemblyPath + runtimeConfigSuffix
	}
	return string(r[:len(r)-4]) + runtimeConfigSuffix
}
