package runtime

import (
	"context"
	"sort"

	"github.com/tetratelabs/wazero/api"

	"github.com/echoptic/watc/errors"
)

// Instance is a running module.
// It is not safe for concurrent use; give each goroutine its own Instance.
type Instance struct {
	module api.Module
}

func (i *Instance) Close(ctx context.Context) error {
	return i.module.Close(ctx)
}

// Exports returns the exported function names in sorted order.
func (i *Instance) Exports() []string {
	defs := i.module.ExportedFunctionDefinitions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Arity reports the parameter count of an exported function.
func (i *Instance) Arity(name string) (int, error) {
	def, ok := i.module.ExportedFunctionDefinitions()[name]
	if !ok {
		return 0, errors.NotFound("export", name)
	}
	return len(def.ParamTypes()), nil
}

// Call invokes an exported function with raw stack values.
func (i *Instance) Call(ctx context.Context, name string, args ...uint64) ([]uint64, error) {
	fn := i.module.ExportedFunction(name)
	if fn == nil {
		return nil, errors.NotFound("export", name)
	}
	results, err := fn.Call(ctx, args...)
	if err != nil {
		return nil, errors.Trap(name, err)
	}
	return results, nil
}

// CallI32 invokes an exported function taking and returning i32 values.
func (i *Instance) CallI32(ctx context.Context, name string, args ...int32) (int32, error) {
	raw := make([]uint64, len(args))
	for n, a := range args {
		raw[n] = api.EncodeI32(a)
	}
	results, err := i.Call(ctx, name, raw...)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errors.New(errors.StageRun, errors.KindMissingValue).
			Symbol(name).
			Detail("function returns no value").
			Build()
	}
	return api.DecodeI32(results[0]), nil
}
