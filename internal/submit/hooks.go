package submit

import (
	"fmt"
	"os"
	"time"

	"github.com/dop251/goja"
)

// hookTimeout bounds one hook invocation. Hooks run synchronously in
// the submission path, a runaway script must not stall the batch.
const hookTimeout = 5 * time.Second

// Hook is a compiled pre-submit JavaScript hook. The script must define
// a `patch(jobInfo)` function; it may mutate jobInfo in place or return
// a replacement object.
type Hook struct {
	name string
	prog *goja.Program
}

// CompileHook compiles hook source. name is used in error messages.
func CompileHook(name, src string) (*Hook, error) {
	prog, err := goja.Compile(name, src, true)
	if err != nil {
		return nil, NewHookError(fmt.Sprintf("compile hook %q", name), err)
	}
	return &Hook{name: name, prog: prog}, nil
}

// LoadHookFile compiles a hook from a script file.
func LoadHookFile(path string) (*Hook, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, NewHookError(fmt.Sprintf("read hook file %q", path), err)
	}
	return CompileHook(path, string(src))
}

// Apply runs the hook against one JobInfo map and returns the patched
// map. Each invocation gets a fresh runtime so hooks cannot leak state
// between submissions.
func (h *Hook) Apply(jobInfo map[string]interface{}) (map[string]interface{}, error) {
	vm := goja.New()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-time.After(hookTimeout):
			vm.Interrupt("hook timed out")
		case <-done:
		}
	}()

	if _, err := vm.RunProgram(h.prog); err != nil {
		return nil, NewHookError(fmt.Sprintf("run hook %q", h.name), err)
	}

	patch, ok := goja.AssertFunction(vm.Get("patch"))
	if !ok {
		return nil, NewHookError(
			fmt.Sprintf("hook %q defines no patch function", h.name), nil)
	}

	val, err := patch(goja.Undefined(), vm.ToValue(jobInfo))
	if err != nil {
		return nil, NewHookError(fmt.Sprintf("hook %q patch failed", h.name), err)
	}

	// A returned object replaces the map, anything else means the hook
	// mutated jobInfo through the wrapper.
	if val != nil && !goja.IsUndefined(val) && !goja.IsNull(val) {
		if replaced, ok := val.Export().(map[string]interface{}); ok {
			return replaced, nil
		}
	}
	return jobInfo, nil
}
