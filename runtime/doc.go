// Package runtime executes compiled modules on wazero.
//
// The compiler itself never runs code; this package exists so callers
// and tests can go from WAT source to a live instance in one step:
//
//	rt := runtime.New(ctx)
//	defer rt.Close(ctx)
//
//	inst, err := rt.InstantiateWAT(ctx, source)
//	...
//	sum, err := inst.CallI32(ctx, "add", 2, 3)
package runtime
