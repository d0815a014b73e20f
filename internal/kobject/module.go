package kobject

import "kuro/internal/kvalue"

// Module is the heap object a compiled or native module's namespace
// lives in (§4.7's import machinery, §3's CodeObject.Module link). The
// cache, search path, and onload-hook dispatch are internal/kmodule's
// job; Module itself only needs to be GC-scannable and hold the
// globals dict code running "inside" it reads and writes through
// OP_GET_GLOBAL/OP_SET_GLOBAL.
type Module struct {
	Header
	Name     string
	Filename string
	Globals  map[string]kvalue.Value
	// Native is set for modules backed by a Go onload hook rather than
	// compiled bytecode (§4.7); such modules have no Code.
	Native bool
}

func NewModule(name, filename string) *Module {
	return &Module{Name: name, Filename: filename, Globals: map[string]kvalue.Value{}}
}

func (m *Module) TypeName() string { return "module" }

func (m *Module) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	for _, v := range m.Globals {
		visitValue(v)
	}
}
