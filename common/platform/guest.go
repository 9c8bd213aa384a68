package platform

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hulkholden/webglhost/common/resource"
	"github.com/hulkholden/webglhost/common/wasmmem"
)

// ErrMissingExports is returned when the game module lacks an export the host
// calls.
var ErrMissingExports = errors.New("game module missing required exports")

// RequiredExports are the functions every game module must export.
var RequiredExports = []string{
	"_start",
	"onInit",
	"update",
	"render",
	"wasm_allocator_alloc",
	"wasm_fail_fetch",
	"wasm_finalize_fetch",
}

// Names of the exported globals holding the addresses of the error numbers.
const (
	errnoOutOfMemoryGlobal = "ERRNO_OUT_OF_MEMORY"
	errnoNotFoundGlobal    = "ERRNO_NOT_FOUND"
	errnoUnknownGlobal     = "ERRNO_UNKNOWN"
)

// CheckExports reports every required function or memory the compiled module
// does not export, in a single error.
func CheckExports(cm wazero.CompiledModule) error {
	return checkExports(cm.ExportedFunctions(), cm.ExportedMemories())
}

func checkExports(funcs map[string]api.FunctionDefinition, mems map[string]api.MemoryDefinition) error {
	var missing []string
	for _, name := range RequiredExports {
		if _, ok := funcs[name]; !ok {
			missing = append(missing, name)
		}
	}
	if _, ok := mems["memory"]; !ok {
		missing = append(missing, "memory")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: [%s]", ErrMissingExports, strings.Join(missing, ", "))
	}
	return nil
}

// Guest is an instantiated game module.
type Guest struct {
	mod api.Module

	start         api.Function
	onInit        api.Function
	update        api.Function
	render        api.Function
	alloc         api.Function
	failFetch     api.Function
	finalizeFetch api.Function
}

// NewGuest binds the exports of mod.
func NewGuest(mod api.Module) (*Guest, error) {
	g := &Guest{mod: mod}
	fns := map[string]*api.Function{
		"_start":               &g.start,
		"onInit":               &g.onInit,
		"update":               &g.update,
		"render":               &g.render,
		"wasm_allocator_alloc": &g.alloc,
		"wasm_fail_fetch":      &g.failFetch,
		"wasm_finalize_fetch":  &g.finalizeFetch,
	}
	var missing []string
	for name, dst := range fns {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			missing = append(missing, name)
			continue
		}
		*dst = fn
	}
	if mod.Memory() == nil {
		missing = append(missing, "memory")
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: [%s]", ErrMissingExports, strings.Join(missing, ", "))
	}
	return g, nil
}

func (g *Guest) Memory() wasmmem.Memory { return g.mod.Memory() }

// Start runs the module's _start entry point.
func (g *Guest) Start(ctx context.Context) error {
	_, err := g.start.Call(ctx)
	return err
}

func (g *Guest) OnInit(ctx context.Context, id uint32) error {
	_, err := g.onInit.Call(ctx, api.EncodeU32(id))
	return err
}

func (g *Guest) Update(ctx context.Context, tickTime, tickDelta float64) error {
	_, err := g.update.Call(ctx, api.EncodeF64(tickTime), api.EncodeF64(tickDelta))
	return err
}

func (g *Guest) Render(ctx context.Context, alpha float64) error {
	_, err := g.render.Call(ctx, api.EncodeF64(alpha))
	return err
}

func (g *Guest) Alloc(ctx context.Context, allocator, size uint32) (uint32, error) {
	results, err := g.alloc.Call(ctx, api.EncodeU32(allocator), api.EncodeU32(size))
	if err != nil {
		return 0, err
	}
	if len(results) != 1 {
		return 0, fmt.Errorf("wasm_allocator_alloc returned %d results", len(results))
	}
	return api.DecodeU32(results[0]), nil
}

func (g *Guest) FailFetch(ctx context.Context, callback, fetchCtx, errno uint32) error {
	_, err := g.failFetch.Call(ctx, api.EncodeU32(callback), api.EncodeU32(fetchCtx), api.EncodeU32(errno))
	return err
}

func (g *Guest) FinalizeFetch(ctx context.Context, callback, fetchCtx, ptr, length uint32) error {
	_, err := g.finalizeFetch.Call(ctx, api.EncodeU32(callback), api.EncodeU32(fetchCtx), api.EncodeU32(ptr), api.EncodeU32(length))
	return err
}

// Errnos reads the error numbers. Each ERRNO_* global holds the address of a
// u32 in linear memory.
func (g *Guest) Errnos() (resource.Errnos, error) {
	var errnos resource.Errnos
	for _, e := range []struct {
		global string
		dst    *uint32
	}{
		{errnoOutOfMemoryGlobal, &errnos.OutOfMemory},
		{errnoNotFoundGlobal, &errnos.NotFound},
		{errnoUnknownGlobal, &errnos.Unknown},
	} {
		global := g.mod.ExportedGlobal(e.global)
		if global == nil {
			return errnos, fmt.Errorf("%w: [%s]", ErrMissingExports, e.global)
		}
		v, err := wasmmem.ReadUint32(g.Memory(), api.DecodeU32(global.Get()))
		if err != nil {
			return errnos, fmt.Errorf("reading %s: %w", e.global, err)
		}
		*e.dst = v
	}
	return errnos, nil
}
