//go:build integration

package corehost

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/coreos/go-semver/semver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installedRuntime returns the dotnet root and the highest installed
// Microsoft.NETCore.App version, skipping when no runtime is installed.
func installedRuntime(t *testing.T) (root, version string) {
	t.Helper()
	fxr, err := DefaultLocator().Locate("")
	if err != nil {
		t.Skipf("no .NET runtime installed: %v", err)
	}
	// <root>/host/fxr/<version>/<lib>
	root = filepath.Dir(filepath.Dir(filepath.Dir(filepath.Dir(fxr))))

	entries, err := os.ReadDir(filepath.Join(root, "shared", "Microsoft.NETCore.App"))
	if err != nil {
		t.Skipf("no shared framework under %s: %v", root, err)
	}
	var best *semver.Version
	for _, e := range entries {
		v, err := semver.NewVersion(e.Name())
		if err != nil || v.PreRelease != "" {
			continue
		}
		if best == nil || best.LessThan(*v) {
			best = v
		}
	}
	if best == nil {
		t.Skipf("no released framework under %s", root)
	}
	return root, best.String()
}

func writeRuntimeConfig(t *testing.T, dir, name, version string) string {
	t.Helper()
	v := semver.New(version)
	cfg := map[string]any{
		"runtimeOptions": map[string]any{
			"tfm": fmt.Sprintf("net%d.%d", v.Major, v.Minor),
			"framework": map[string]string{
				"name":    "Microsoft.NETCore.App",
				"version": version,
			},
		},
	}
	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".runtimeconfig.json"), b, 0o644))
	return filepath.Join(dir, name+".dll")
}

func TestIntegrationBootstrap(t *testing.T) {
	if isCI() {
		t.Skip("Skipping runtime tests in CI environment")
	}
	root, _ := installedRuntime(t)

	b := NewBootstrapper(nil, nil)
	fxr, err := b.EnsureLoaded(root)
	require.NoError(t, err)
	require.NotNil(t, fxr)
	assert.True(t, b.Loaded())
	assert.FileExists(t, b.Path())

	again, err := b.EnsureLoaded("")
	require.NoError(t, err)
	assert.Same(t, fxr, again)
}

func TestIntegrationStartWithLogChannel(t *testing.T) {
	if isCI() {
		t.Skip("Skipping runtime tests in CI environment")
	}
	root, version := installedRuntime(t)
	asm := writeRuntimeConfig(t, t.TempDir(), "CoreHook.CoreLoader", version)

	pipe := filepath.Join(t.TempDir(), "log.sock")
	records := serveLogPipe(t, pipe)

	h := NewHost()
	require.NoError(t, h.Start(HostArguments{
		AssemblyFilePath: asm,
		CoreRootPath:     root,
		PipeName:         pipe,
	}))
	assert.True(t, h.Started())

	// A second start is a no-op.
	require.NoError(t, h.Start(HostArguments{AssemblyFilePath: asm, CoreRootPath: root}))

	assert.Eventually(t, func() bool {
		for _, m := range records() {
			if m == "Done. Ready to execute." {
				return true
			}
		}
		return false
	}, waitFor, tick)
}
