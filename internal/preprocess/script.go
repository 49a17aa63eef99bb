package preprocess

import (
	"context"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// ScriptFileName is the workspace-relative file holding a user
// transform script.
const ScriptFileName = "preprocess.lua"

// DefaultScriptTimeout bounds a single script run (best-effort;
// Lua code that never yields cannot be interrupted mid-instruction).
const DefaultScriptTimeout = 2 * time.Second

// Script is an optional user-supplied markup transform. The script
// must define transform(markup) returning the rewritten markup. It
// runs before the auto-quote pass.
//
// Scripts execute in a sandboxed Lua state: only the base, table,
// string and math libraries are open, and file/loader functions are
// removed. Any script failure leaves the markup unchanged, keeping
// the preprocessing pipeline total.
type Script struct {
	source  string
	timeout time.Duration
}

// NewScript creates a script from Lua source.
func NewScript(source string) *Script {
	return &Script{
		source:  source,
		timeout: DefaultScriptTimeout,
	}
}

// WithTimeout sets the per-run execution timeout.
func (s *Script) WithTimeout(d time.Duration) *Script {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Transform runs the script over the markup. On any error (compile
// failure, runtime error, timeout, missing or non-function transform,
// non-string result) the input is returned unchanged.
func (s *Script) Transform(markup string) string {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibraries(L)

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	L.SetContext(ctx)

	if err := L.DoString(s.source); err != nil {
		return markup
	}

	fn := L.GetGlobal("transform")
	if fn.Type() != lua.LTFunction {
		return markup
	}

	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(markup))
	if err != nil {
		return markup
	}

	ret := L.Get(-1)
	L.Pop(1)

	out, ok := ret.(lua.LString)
	if !ok {
		return markup
	}
	return string(out)
}

// openSafeLibraries opens only side-effect-free Lua standard
// libraries and strips loader functions that could escape the
// sandbox.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// io, os, debug and package stay closed; these can read files,
	// spawn processes or bypass the sandbox.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}
