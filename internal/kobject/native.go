package kobject

import "kuro/internal/kvalue"

// NativeFunc is the common NativeCallable implementation used by
// host-provided builtins and by every native stdlib module in
// internal/stdlib — one GoFunc wrapper rather than a bespoke type per
// native function, matching how small bytecode VMs in the retrieval
// pack (e.g. the teacher's own RegisterBuiltin pattern) register
// builtins as plain Go closures.
type NativeFunc struct {
	Header
	name  string
	doc   string
	flags NativeFlags
	fn    func(vmHandle interface{}, self kvalue.Value, args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error)
}

func NewNativeFunc(name, doc string, flags NativeFlags, fn func(interface{}, kvalue.Value, []kvalue.Value, map[string]kvalue.Value) (kvalue.Value, error)) *NativeFunc {
	return &NativeFunc{name: name, doc: doc, flags: flags, fn: fn}
}

func (n *NativeFunc) TypeName() string { return "native_function" }
func (n *NativeFunc) GCScan(func(kvalue.Value), func(Obj)) {}
func (n *NativeFunc) Name() string       { return n.name }
func (n *NativeFunc) Doc() string        { return n.doc }
func (n *NativeFunc) Flags() NativeFlags { return n.flags }

func (n *NativeFunc) Call(vmHandle interface{}, self kvalue.Value, args []kvalue.Value, kwargs map[string]kvalue.Value) (kvalue.Value, error) {
	return n.fn(vmHandle, self, args, kwargs)
}
