package platform

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
)

// Host loads a game module and runs it against an Env.
type Host struct {
	Env *Env
	// RuntimeConfig defaults to the interpreter, which also works under
	// js/wasm.
	RuntimeConfig wazero.RuntimeConfig
	Logger        *zap.Logger
}

// Run compiles and instantiates wasm, runs its _start entry point and then
// serves the event loop until ctx is done or the game traps.
func (h *Host) Run(ctx context.Context, wasm []byte) error {
	logger := h.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := h.RuntimeConfig
	if cfg == nil {
		cfg = wazero.NewRuntimeConfigInterpreter()
	}
	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	defer rt.Close(context.Background())

	if _, err := h.Env.Instantiate(ctx, rt); err != nil {
		return err
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		return fmt.Errorf("compiling game module: %w", err)
	}
	if err := CheckExports(compiled); err != nil {
		return err
	}

	// _start is called from the loop rather than at instantiation so the
	// guest is bound before its first import call.
	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("game").WithStartFunctions())
	if err != nil {
		return fmt.Errorf("instantiating game module: %w", err)
	}
	guest, err := NewGuest(mod)
	if err != nil {
		return err
	}
	h.Env.Bind(guest)

	loop := h.Env.Loop()
	loop.Post(func(ctx context.Context) error {
		logger.Info("starting game")
		if err := guest.Start(ctx); err != nil {
			return fmt.Errorf("running _start: %w", err)
		}
		return nil
	})
	return loop.Run(ctx)
}
