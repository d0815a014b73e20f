// Package kmodule implements the import cache, search path, and
// native-module onload-hook dispatch described in §4.7. Grounded on
// the teacher's internal/module/module.go ModuleLoader (cache map,
// searchPath slice, findModule's direct/index/nested-path probing),
// generalized from the teacher's fixed switch-on-name builtin list to
// a registerable onload-hook table so internal/stdlib packages can
// plug themselves in via RegisterNative instead of editing this file
// per module.
//
// Loader never imports internal/kcompiler or internal/kvm directly —
// doing so would cycle back through kvm's own dependency on this
// package. Instead the owning VM supplies Compile and Run callbacks at
// construction time.
package kmodule

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"kuro/internal/kobject"
)

// OnloadHook builds a native module's namespace (§4.7: "native modules
// run a Go onload hook instead of interpreting bytecode").
type OnloadHook func() *kobject.Module

// CompileFunc compiles source text into a module-flagged code object;
// supplied by internal/kcompiler through the owning VM.
type CompileFunc func(source, filename string) (*kobject.CodeObject, error)

// RunFunc executes a module's top-level code object with its globals
// bound to module.Globals; supplied by internal/kvm.
type RunFunc func(module *kobject.Module, code *kobject.CodeObject) error

// Loader caches compiled/native modules by dotted name and resolves
// source modules against a search path (§4.7).
type Loader struct {
	mu         sync.RWMutex
	cache      map[string]*kobject.Module
	searchPath []string
	natives    map[string]OnloadHook

	Compile CompileFunc
	Run     RunFunc
}

// New constructs a Loader. searchPathEnv is the KURO_PATH-equivalent
// environment variable name (colon-separated directories prepended to
// the defaults); empty string disables the env lookup.
func New(searchPathEnv string) *Loader {
	l := &Loader{
		cache:      make(map[string]*kobject.Module),
		searchPath: defaultSearchPath(),
		natives:    make(map[string]OnloadHook),
	}
	if searchPathEnv != "" {
		if v := os.Getenv(searchPathEnv); v != "" {
			extra := strings.Split(v, string(os.PathListSeparator))
			l.searchPath = append(extra, l.searchPath...)
		}
	}
	return l
}

func defaultSearchPath() []string {
	return []string{".", "./lib", "./modules"}
}

// RegisterNative installs a native module's onload hook under a
// dotted name (§4.7). Called from internal/stdlib package init-time
// wiring in cmd/kuro, not from kmodule itself — this package holds no
// import on any concrete stdlib package, which is what lets
// internal/stdlib/* each depend only on kobject/kvalue/kmodule instead
// of everything depending on everything.
func (l *Loader) RegisterNative(name string, hook OnloadHook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.natives[name] = hook
}

// AddSearchPath appends a directory to the search path.
func (l *Loader) AddSearchPath(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.searchPath = append(l.searchPath, path)
}

func (l *Loader) SearchPath() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.searchPath...)
}

// Load resolves name to a *kobject.Module, consulting the cache, then
// registered native hooks, then the source search path (§4.7).
func (l *Loader) Load(name string) (*kobject.Module, error) {
	l.mu.RLock()
	if m, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return m, nil
	}
	hook, isNative := l.natives[name]
	l.mu.RUnlock()

	if isNative {
		mod := hook()
		mod.Native = true
		l.store(name, mod)
		return mod, nil
	}

	path, err := l.findModule(name)
	if err != nil {
		return nil, err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("kmodule: failed to read module %q: %w", name, err)
	}

	code, err := l.Compile(string(source), path)
	if err != nil {
		return nil, fmt.Errorf("kmodule: failed to compile module %q: %w", name, err)
	}

	mod := kobject.NewModule(name, path)
	code.Module = mod
	if err := l.Run(mod, code); err != nil {
		return nil, err
	}
	l.store(name, mod)
	return mod, nil
}

func (l *Loader) store(name string, mod *kobject.Module) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache[name] = mod
}

// findModule probes the search path for name as a direct file, a
// directory with an __init__ source file, or a nested dotted path
// (§4.7's "collections.list" -> "collections/list" resolution).
func (l *Loader) findModule(name string) (string, error) {
	if strings.HasSuffix(name, ".kuro") {
		if fileExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("kmodule: module file not found: %s", name)
	}

	parts := strings.Split(name, ".")
	rel := filepath.Join(parts...)

	for _, dir := range l.SearchPath() {
		if p := filepath.Join(dir, rel+".kuro"); fileExists(p) {
			return p, nil
		}
		if p := filepath.Join(dir, rel, "__init__.kuro"); fileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("kmodule: module not found: %s", name)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ClearCache drops every cached module; used by test harnesses that
// reload the same module name across independent VM instances.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*kobject.Module)
}
