package kmodule

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kuro/internal/kobject"
	"kuro/internal/kvalue"
)

func newTestLoader(t *testing.T) (*Loader, *int) {
	t.Helper()
	calls := 0
	l := New("")
	l.Compile = func(source, filename string) (*kobject.CodeObject, error) {
		calls++
		return kobject.NewCodeObject("<module>", filename), nil
	}
	l.Run = func(mod *kobject.Module, code *kobject.CodeObject) error {
		mod.Globals["__name__"] = kvalue.Object(kobject.Intern(mod.Name))
		return nil
	}
	return l, &calls
}

func TestRegisterNativeServesWithoutTouchingDisk(t *testing.T) {
	l, _ := newTestLoader(t)
	called := false
	l.RegisterNative("builtin_math", func() *kobject.Module {
		called = true
		return kobject.NewModule("builtin_math", "<native>")
	})
	mod, err := l.Load("builtin_math")
	require.NoError(t, err)
	assert.True(t, called, "onload hook should have been invoked")
	assert.True(t, mod.Native)
}

func TestLoadCachesByName(t *testing.T) {
	l, calls := newTestLoader(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "greet.kuro")
	require.NoError(t, os.WriteFile(path, []byte("let x = 1\n"), 0o644))
	l.AddSearchPath(dir)

	m1, err := l.Load("greet")
	require.NoError(t, err)
	m2, err := l.Load("greet")
	require.NoError(t, err)
	assert.Same(t, m1, m2, "second Load should return the cached module")
	assert.Equal(t, 1, *calls, "Compile should only run once")
}

func TestFindModuleNestedDottedPath(t *testing.T) {
	l, _ := newTestLoader(t)
	dir := t.TempDir()
	nested := filepath.Join(dir, "collections")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	path := filepath.Join(nested, "list.kuro")
	require.NoError(t, os.WriteFile(path, []byte("let x = 1\n"), 0o644))
	l.AddSearchPath(dir)

	mod, err := l.Load("collections.list")
	require.NoError(t, err)
	assert.Equal(t, path, mod.Filename)
}

func TestLoadMissingModuleErrors(t *testing.T) {
	l, _ := newTestLoader(t)
	_, err := l.Load("does_not_exist")
	assert.Error(t, err)
}
