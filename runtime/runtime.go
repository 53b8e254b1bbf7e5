package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"

	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/wat"
)

// Runtime executes compiled modules using wazero.
type Runtime struct {
	runtime wazero.Runtime
}

// New creates a runtime. Close it when done.
func New(ctx context.Context) *Runtime {
	return &Runtime{runtime: wazero.NewRuntime(ctx)}
}

func (r *Runtime) Close(ctx context.Context) error {
	return r.runtime.Close(ctx)
}

// Instantiate validates, compiles and instantiates a binary module.
func (r *Runtime) Instantiate(ctx context.Context, wasm []byte) (*Instance, error) {
	compiled, err := r.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile module", err)
	}

	// Anonymous so multiple instances of the same module can coexist.
	mod, err := r.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return nil, errors.Load("instantiate module", err)
	}
	return &Instance{module: mod}, nil
}

// InstantiateWAT compiles WAT source and instantiates the result.
func (r *Runtime) InstantiateWAT(ctx context.Context, source string) (*Instance, error) {
	wasm, err := wat.Compile(source)
	if err != nil {
		return nil, err
	}
	return r.Instantiate(ctx, wasm)
}
