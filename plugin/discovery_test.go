package plugin

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writePlugin(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, PluginPrefix+name)
	if runtime.GOOS == "windows" {
		path += ".exe"
	}
	if err := os.WriteFile(path, []byte("fake"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(PluginDirEnv, "")
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func findPlugin(plugins []Info, name string) (Info, bool) {
	for _, p := range plugins {
		if p.Name == name {
			return p, true
		}
	}
	return Info{}, false
}

func TestDiscover_ConfigDir(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := writePlugin(t, dir, "curve")

	p, ok := findPlugin(Discover(dir), "curve")
	if !ok {
		t.Fatal("plugin 'curve' not found")
	}
	if p.Path != path {
		t.Errorf("Path = %q, want %q", p.Path, path)
	}
	if p.Dir != dir {
		t.Errorf("Dir = %q, want %q", p.Dir, dir)
	}
}

func TestDiscover_EnvVar(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writePlugin(t, dir, "envtest")
	t.Setenv(PluginDirEnv, dir)

	if _, ok := findPlugin(Discover(""), "envtest"); !ok {
		t.Error("plugin 'envtest' not found")
	}
}

func TestDiscover_LocalDir(t *testing.T) {
	isolate(t)
	local := filepath.Join(".", LocalPluginDir)
	if err := os.MkdirAll(local, 0755); err != nil {
		t.Fatal(err)
	}
	writePlugin(t, local, "local")

	if _, ok := findPlugin(Discover(""), "local"); !ok {
		t.Error("plugin 'local' not found")
	}
}

func TestDiscover_NamingConvention(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writePlugin(t, dir, "valid")

	// wrong prefix
	if err := os.WriteFile(filepath.Join(dir, "accountant-other"), []byte("x"), 0755); err != nil {
		t.Fatal(err)
	}
	// not executable
	if runtime.GOOS != "windows" {
		if err := os.WriteFile(filepath.Join(dir, PluginPrefix+"noexec"), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	// directory
	if err := os.Mkdir(filepath.Join(dir, PluginPrefix+"dir"), 0755); err != nil {
		t.Fatal(err)
	}

	plugins := Discover(dir)
	if len(plugins) != 1 || plugins[0].Name != "valid" {
		t.Errorf("Discover() = %+v, want only 'valid'", plugins)
	}
}

func TestDiscover_Priority(t *testing.T) {
	isolate(t)
	first := t.TempDir()
	second := t.TempDir()
	want := writePlugin(t, first, "dup")
	writePlugin(t, second, "dup")
	t.Setenv(PluginDirEnv, second)

	plugins := Discover(first)
	if len(plugins) != 1 {
		t.Fatalf("len(plugins) = %d, want 1", len(plugins))
	}
	if plugins[0].Path != want {
		t.Errorf("Path = %q, want %q", plugins[0].Path, want)
	}
}

func TestDiscover_MissingDir(t *testing.T) {
	isolate(t)
	if plugins := Discover(filepath.Join(t.TempDir(), "missing")); len(plugins) != 0 {
		t.Errorf("Discover() = %+v, want none", plugins)
	}
}

func TestSearchPaths(t *testing.T) {
	isolate(t)
	t.Setenv(PluginDirEnv, "/from/env")

	paths := SearchPaths("/from/config")
	if len(paths) < 2 {
		t.Fatalf("SearchPaths() = %v", paths)
	}
	if paths[0] != "/from/config" || paths[1] != "/from/env" {
		t.Errorf("SearchPaths() = %v, want config then env first", paths)
	}
}

func TestStripExecutableExtension(t *testing.T) {
	want := "curve.exe"
	if runtime.GOOS == "windows" {
		want = "curve"
	}
	if got := stripExecutableExtension("curve.exe"); got != want {
		t.Errorf("stripExecutableExtension() = %q, want %q", got, want)
	}
	if got := stripExecutableExtension("curve"); got != "curve" {
		t.Errorf("stripExecutableExtension() = %q, want %q", got, "curve")
	}
}
