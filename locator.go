package corehost

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/coreos/go-semver/semver"
	"go.uber.org/zap"
)

// Locator finds the hostfxr library. hint is an optional runtime root that is
// searched first; implementations may ignore it.
type Locator interface {
	Locate(hint string) (string, error)
}

// SearchLocator scans runtime roots on disk for hostfxr.
//
// Each root is checked for a self-contained layout (<root>/<hostfxr>) and
// then for a shared install (<root>/host/fxr/<version>/<hostfxr>), where the
// highest semantic version wins.
type SearchLocator struct {
	// Roots are searched after the hint, in order.
	Roots []string
	// UseDefaults appends DOTNET_ROOT, the install_location file and the
	// platform install directories to the search.
	UseDefaults bool
}

// DefaultLocator searches the hint, then the standard install locations.
func DefaultLocator() Locator {
	return SearchLocator{UseDefaults: true}
}

// Locate implements Locator. Failure matches ErrDiscovery.
func (s SearchLocator) Locate(hint string) (string, error) {
	roots := s.roots(hint)
	for _, root := range roots {
		if p, ok := findHostFxr(root); ok {
			Logger().Debug("hostfxr located", zap.String("root", root), zap.String("path", p))
			return p, nil
		}
	}
	return "", newHostError(ErrDiscovery, CoreHostLibMissingFailure, "%s not found in %d locations", hostfxrLibName(), len(roots))
}

func (s SearchLocator) roots(hint string) []string {
	var roots []string
	seen := make(map[string]bool)
	add := func(r string) {
		if r == "" {
			return
		}
		r = filepath.Clean(r)
		if !seen[r] {
			seen[r] = true
			roots = append(roots, r)
		}
	}
	add(hint)
	for _, r := range s.Roots {
		add(r)
	}
	if s.UseDefaults {
		add(os.Getenv("DOTNET_ROOT"))
		add(installLocation())
		for _, r := range defaultRoots() {
			add(r)
		}
	}
	return roots
}

// findHostFxr checks one root for hostfxr.
func findHostFxr(root string) (string, bool) {
	direct := filepath.Join(root, hostfxrLibName())
	if isFile(direct) {
		return direct, true
	}

	fxrDir := filepath.Join(root, "host", "fxr")
	entries, err := os.ReadDir(fxrDir)
	if err != nil {
		return "", false
	}
	var best *semver.Version
	var bestPath string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		v, err := semver.NewVersion(e.Name())
		if err != nil {
			continue
		}
		p := filepath.Join(fxrDir, e.Name(), hostfxrLibName())
		if !isFile(p) {
			continue
		}
		if best == nil || best.LessThan(*v) {
			best, bestPath = v, p
		}
	}
	return bestPath, best != nil
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && fi.Mode().IsRegular()
}

// installLocation reads the registered install root from /etc/dotnet, trying
// the architecture-specific file first.
func installLocation() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	for _, name := range []string{"install_location_" + dotnetArch(), "install_location"} {
		if root := readFirstLine(filepath.Join("/etc/dotnet", name)); root != "" {
			return root
		}
	}
	return ""
}

func readFirstLine(p string) string {
	f, err := os.Open(p)
	if err != nil {
		return ""
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text())
	}
	return ""
}

func dotnetArch() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	default:
		return runtime.GOARCH
	}
}

func defaultRoots() []string {
	var roots []string
	switch runtime.GOOS {
	case "windows":
		if pf := os.Getenv("ProgramFiles"); pf != "" {
			roots = append(roots, filepath.Join(pf, "dotnet"))
		}
	case "darwin":
		roots = append(roots, "/usr/local/share/dotnet")
	default:
		roots = append(roots, "/usr/share/dotnet", "/usr/lib/dotnet", "/usr/local/share/dotnet")
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".dotnet"))
	}
	return roots
}

// NethostLocator asks the nethost library for the hostfxr path.
type NethostLocator struct {
	// Path to the nethost library. Empty uses the platform library name.
	Path   string
	Loader Loader
}

// Locate implements Locator; the hint is not used. Any non-zero status from
// get_hostfxr_path, including a too-small buffer, matches ErrDiscovery.
func (n NethostLocator) Locate(string) (string, error) {
	loader := n.Loader
	if loader == nil {
		loader = NativeLoader{}
	}
	path := n.Path
	if path == "" {
		path = nethostLibName()
	}

	lib, err := loader.Load(path)
	if err != nil {
		return "", newHostError(ErrDiscovery, CoreHostLibMissingFailure, "load nethost: %v", err)
	}
	defer lib.Close()

	fn, err := lib.Symbol("get_hostfxr_path")
	if err != nil {
		return "", newHostError(ErrDiscovery, CoreHostEntryPointFailure, "%v", err)
	}
	p, code := callGetHostFxrPath(fn)
	if code != Success {
		return "", newHostError(ErrDiscovery, code, "get_hostfxr_path")
	}
	return p, nil
}

// ChainLocator tries each locator in order and returns the first hit.
type ChainLocator []Locator

// Locate implements Locator. When every locator fails the last error is returned.
func (c ChainLocator) Locate(hint string) (string, error) {
	err := error(newHostError(ErrDiscovery, CoreHostLibMissingFailure, "no locators configured"))
	for _, l := range c {
		var p string
		p, err = l.Locate(hint)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrDiscovery) {
			return "", err
		}
	}
	return "", err
}
