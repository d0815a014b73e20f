package kobject

import "kuro/internal/kvalue"

// Frame captures one entry of an exception's traceback: the closure
// executing and the instruction offset active when the exception was
// raised or propagated through that frame (§4.5: "traceback is a list
// of (closure, instruction-offset) pairs").
type Frame struct {
	Closure *Closure
	Offset  int
}

// Exception is the instance backing every raised error (§4.5). It
// embeds Instance rather than duplicating the Fields map, since
// user-defined exception subclasses attach arbitrary fields the same
// way any other instance does; Arg/Cause/Context/Traceback are the
// four slots the unwinder and except-clause machinery read directly
// without going through attribute lookup.
type Exception struct {
	Instance
	Arg        kvalue.Value
	Cause      kvalue.Value // __cause__: explicit `raise ... from ...`
	Context    kvalue.Value // __context__: exception active when this one was raised
	Traceback  []Frame
}

func NewException(class *Class, arg kvalue.Value) *Exception {
	e := &Exception{Arg: arg, Cause: kvalue.None(), Context: kvalue.None()}
	e.Fields = map[string]kvalue.Value{}
	e.SetClass(class)
	return e
}

func (e *Exception) TypeName() string {
	if e.Class() != nil {
		return e.Class().Name
	}
	return "exception"
}

func (e *Exception) GCScan(visitValue func(kvalue.Value), visitObj func(Obj)) {
	e.Instance.GCScan(visitValue, visitObj)
	visitValue(e.Arg)
	visitValue(e.Cause)
	visitValue(e.Context)
	for _, fr := range e.Traceback {
		if fr.Closure != nil {
			visitObj(fr.Closure)
		}
	}
}

// PushFrame records one more traceback entry as the exception
// propagates out through a call frame, innermost-first (§4.5).
func (e *Exception) PushFrame(closure *Closure, offset int) {
	e.Traceback = append(e.Traceback, Frame{Closure: closure, Offset: offset})
}
