package corehost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBootstrapper(locator Locator, loader Loader, fxr HostFxr) *Bootstrapper {
	b := NewBootstrapper(locator, loader)
	b.bind = func(hostFxrExports) HostFxr { return fxr }
	return b
}

func TestEnsureLoadedCaches(t *testing.T) {
	ResetMetrics()
	fxr := newFakeHostFxr()
	lib := newExportingLibrary()
	loader := &mockLoader{}
	loader.On("Load", fakeHostFxrPath).Return(lib, nil).Once()

	b := newTestBootstrapper(staticLocator{path: fakeHostFxrPath}, loader, fxr)
	assert.False(t, b.Loaded())

	got, err := b.EnsureLoaded("/usr/share/dotnet")
	require.NoError(t, err)
	assert.Same(t, fxr, got)
	assert.True(t, b.Loaded())
	assert.Equal(t, fakeHostFxrPath, b.Path())

	again, err := b.EnsureLoaded("/usr/share/dotnet")
	require.NoError(t, err)
	assert.Same(t, fxr, again)

	loader.AssertNumberOfCalls(t, "Load", 1)
	lib.AssertNumberOfCalls(t, "Symbol", len(RequiredExports()))
	lib.AssertNotCalled(t, "Close")

	m := GetMetrics()
	assert.EqualValues(t, 1, m.Bootstraps)
	assert.EqualValues(t, 3, m.SymbolResolutions)
}

func TestEnsureLoadedDiscoveryFailure(t *testing.T) {
	loader := &mockLoader{}
	b := newTestBootstrapper(staticLocator{err: newHostError(ErrDiscovery, CoreHostLibMissingFailure, "none")}, loader, newFakeHostFxr())

	_, err := b.EnsureLoaded("")
	assert.ErrorIs(t, err, ErrDiscovery)
	assert.False(t, b.Loaded())
	loader.AssertNotCalled(t, "Load")
}

func TestEnsureLoadedLoadFailure(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", fakeHostFxrPath).Return(nil, newHostError(ErrLibraryLoad, CoreHostLibLoadFailure, "bad elf"))
	b := newTestBootstrapper(staticLocator{path: fakeHostFxrPath}, loader, newFakeHostFxr())

	_, err := b.EnsureLoaded("")
	assert.ErrorIs(t, err, ErrLibraryLoad)
	assert.False(t, b.Loaded())
	assert.Empty(t, b.Path())
}

func TestEnsureLoadedPartialExportsCachesNothing(t *testing.T) {
	partial := &mockLibrary{}
	partial.On("Symbol", "hostfxr_initialize_for_runtime_config").Return(uintptr(0x1000), nil)
	partial.On("Symbol", "hostfxr_get_runtime_delegate").Return(uintptr(0x1001), nil)
	partial.On("Symbol", "hostfxr_close").
		Return(uintptr(0), newHostError(ErrSymbolResolution, CoreHostEntryPointFailure, "missing"))
	partial.On("Close").Return(nil).Once()

	full := newExportingLibrary()
	loader := &mockLoader{}
	loader.On("Load", fakeHostFxrPath).Return(partial, nil).Once()
	loader.On("Load", fakeHostFxrPath).Return(full, nil).Once()

	fxr := newFakeHostFxr()
	b := newTestBootstrapper(staticLocator{path: fakeHostFxrPath}, loader, fxr)

	_, err := b.EnsureLoaded("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSymbolResolution)
	assert.False(t, b.Loaded())
	partial.AssertExpectations(t)

	// a later attempt starts from scratch
	got, err := b.EnsureLoaded("")
	require.NoError(t, err)
	assert.Same(t, fxr, got)
	loader.AssertNumberOfCalls(t, "Load", 2)
}

func TestNewBootstrapperDefaults(t *testing.T) {
	b := NewBootstrapper(nil, nil)
	assert.IsType(t, SearchLocator{}, b.locator)
	assert.IsType(t, NativeLoader{}, b.loader)
}
