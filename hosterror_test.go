package corehost

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostError(t *testing.T) {
	t.Setenv("COREHOST_ENV", "")
	t.Setenv("COREHOST_DEBUG", "")

	tests := []struct {
		code StatusCode
		want string
	}{
		{Success, "hostfxr: success"},
		{SuccessHostAlreadyInitialized, "Success_HostAlreadyInitialized"},
		{SuccessDifferentRuntimeProperties, "Success_DifferentRuntimeProperties"},
		{InvalidArgFailure, "InvalidArgFailure"},
		{CoreHostLibLoadFailure, "CoreHostLibLoadFailure"},
		{CoreHostLibMissingFailure, "CoreHostLibMissingFailure"},
		{CoreHostEntryPointFailure, "CoreHostEntryPointFailure"},
		{InvalidConfigFile, "the .runtimeconfig.json file is invalid"},
		{HostApiFailed, "HostApiFailed"},
		{HostApiBufferTooSmall, "HostApiBufferTooSmall"},
		{HostInvalidState, "HostInvalidState"},
		{CoreHostIncompatibleConfig, "CoreHostIncompatibleConfig"},
		{HostApiUnsupportedScenario, "HostApiUnsupportedScenario"},
		{HostFeatureDisabled, "HostFeatureDisabled"},
		{StatusCode(0x80008099), "unknown status code 0x80008099"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("0x%08x", uint32(tt.code)), func(t *testing.T) {
			err := &HostError{Code: tt.code}
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHostErrorSanitized(t *testing.T) {
	t.Setenv("COREHOST_ENV", "production")

	err := newHostError(ErrRuntimeInit, InvalidConfigFile, "/opt/app.runtimeconfig.json")
	assert.Equal(t, "corehost: runtime initialization failed: /opt/app.runtimeconfig.json: hostfxr: invalid configuration", err.Error())
	assert.NotContains(t, err.Error(), "InvalidConfigFile")
}

func TestHostErrorDebugFalseSanitizes(t *testing.T) {
	t.Setenv("COREHOST_ENV", "")
	t.Setenv("COREHOST_DEBUG", "false")
	assert.True(t, isProductionEnv())

	t.Setenv("COREHOST_DEBUG", "true")
	assert.False(t, isProductionEnv())
}

func TestHostErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("start: %w", newHostError(ErrRuntimeInit, CoreHostIncompatibleConfig, "cfg"))

	assert.ErrorIs(t, err, ErrRuntimeInit)
	assert.NotErrorIs(t, err, ErrDiscovery)

	var he *HostError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, CoreHostIncompatibleConfig, he.Code)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int32
	}{
		{"nil", nil, 0},
		{"invalid argument", newHostError(ErrInvalidArgument, InvalidArgFailure, "x"), StatusInvalidArgument},
		{"wrapped invalid argument", fmt.Errorf("call: %w", ErrInvalidArgument), StatusInvalidArgument},
		{"discovery", newHostError(ErrDiscovery, CoreHostLibMissingFailure, "x"), CoreHostLibMissingFailure.Int32()},
		{"incompatible config", newHostError(ErrRuntimeInit, CoreHostIncompatibleConfig, "x"), CoreHostIncompatibleConfig.Int32()},
		{"not started", fmt.Errorf("x: %w", ErrNotStarted), HostInvalidState.Int32()},
		{"foreign error", errors.New("boom"), HostApiFailed.Int32()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestErrorConstants(t *testing.T) {
	sentinels := []error{
		ErrInvalidArgument, ErrDiscovery, ErrLibraryLoad, ErrSymbolResolution,
		ErrRuntimeInit, ErrDelegateResolution, ErrDelegateInvocation,
		ErrNotStarted, ErrNotSupported,
	}
	seen := make(map[string]bool)
	for _, s := range sentinels {
		msg := s.Error()
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "duplicate sentinel message %q", msg)
		seen[msg] = true
	}
	assert.True(t, Success.Succeeded())
	assert.True(t, SuccessDifferentRuntimeProperties.Succeeded())
	assert.False(t, HostApiFailed.Succeeded())
	assert.Less(t, HostApiFailed.Int32(), int32(0))
}
