package host

import (
	"context"
	"fmt"
	"log/slog"

	hostfn "github.com/corral-dev/corral-host-sdk/wazero"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Executor owns a wazero runtime and instantiates guest components against
// host Instances. One Executor can run many guests concurrently.
type Executor struct {
	runtime wazero.Runtime
	cache   wazero.CompilationCache
}

// NewExecutor creates an executor with WASI preview1 available to guests.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}

	cfg := wazero.NewRuntimeConfig()
	if e.cache != nil {
		cfg = cfg.WithCompilationCache(e.cache)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, cfg)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	if err := hostfn.InstantiateLogging(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	e.runtime = rt

	return e, nil
}

// Close releases the runtime and every module it instantiated.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Guest is one instantiated component together with its host-side state.
type Guest struct {
	module   api.Module
	instance *Instance
}

// Instantiate compiles and instantiates a guest binary. The instance's
// stdio multiplexers back the module's stdin, stdout and stderr, so stream
// rebinds take effect on the guest's next read or write.
func (e *Executor) Instantiate(ctx context.Context, name string, wasmBytes []byte, inst *Instance) (*Guest, error) {
	if inst == nil {
		inst = NewInstance(nil)
	}

	cfg := wazero.NewModuleConfig().
		WithName(name).
		WithStdin(inst.Stdin).
		WithStdout(inst.Stdout).
		WithStderr(inst.Stderr)

	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate guest %q: %w", name, err)
	}

	if init := mod.ExportedFunction("_initialize"); init != nil {
		if _, err := init.Call(ctx); err != nil {
			_ = mod.Close(ctx)
			return nil, fmt.Errorf("guest %q _initialize failed: %w", name, err)
		}
	}

	slog.DebugContext(ctx, "guest instantiated", "name", name)

	return &Guest{module: mod, instance: inst}, nil
}

// Instance returns the host-side state of this guest.
func (g *Guest) Instance() *Instance {
	return g.instance
}

// Call invokes an exported guest function by name.
func (g *Guest) Call(ctx context.Context, name string, params ...uint64) ([]uint64, error) {
	fn := g.module.ExportedFunction(name)
	if fn == nil {
		return nil, fmt.Errorf("function %q not exported by guest", name)
	}
	res, err := fn.Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("guest call %q failed: %w", name, err)
	}
	return res, nil
}

// Close tears the guest down. Its instance streams stay with the embedder.
func (g *Guest) Close(ctx context.Context) error {
	return g.module.Close(ctx)
}
