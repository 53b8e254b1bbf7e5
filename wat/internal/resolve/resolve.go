// Package resolve rewrites name references into index references.
// It runs in two deterministic passes: a module pass numbering functions
// in declaration order, then a per-function pass numbering params before
// locals. After it succeeds no unresolved reference remains; the encoder
// only ever validates indices.
package resolve

import (
	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/wat/internal/ast"
)

const moduleScope = "module"

// Module resolves every reference in m in place.
func Module(m *ast.Module) error {
	funcs := make(map[string]uint32, len(m.Funcs))
	for i, fn := range m.Funcs {
		if fn.Name == "" {
			continue
		}
		if _, exists := funcs[fn.Name]; exists {
			return errors.DuplicateSymbol(fn.Pos, fn.Name, moduleScope)
		}
		funcs[fn.Name] = uint32(i)
	}

	// Exports hold refs by value; resolve on the slice itself.
	for i := range m.Exports {
		if err := resolveRef(&m.Exports[i].Func, funcs, m.Exports[i].Pos, moduleScope); err != nil {
			return err
		}
	}

	for _, fn := range m.Funcs {
		if err := resolveFunc(fn, funcs); err != nil {
			return err
		}
	}
	return nil
}

// resolveFunc numbers params first, locals after, one continuous index
// sequence. This ordering matches the binary format's local indexing.
func resolveFunc(fn *ast.Func, funcs map[string]uint32) error {
	locals := make(map[string]uint32, len(fn.Params)+len(fn.Locals))
	next := uint32(0)
	for _, b := range fn.Params {
		if b.Name != "" {
			if _, exists := locals[b.Name]; exists {
				return errors.DuplicateSymbol(fn.Pos, b.Name, fn.Label())
			}
			locals[b.Name] = next
		}
		next++
	}
	for _, b := range fn.Locals {
		if b.Name != "" {
			if _, exists := locals[b.Name]; exists {
				return errors.DuplicateSymbol(fn.Pos, b.Name, fn.Label())
			}
			locals[b.Name] = next
		}
		next++
	}

	return resolveSeq(fn.Body, funcs, locals, fn.Label())
}

func resolveSeq(instrs []ast.Instr, funcs, locals map[string]uint32, scope string) error {
	for _, ins := range instrs {
		switch v := ins.(type) {
		case *ast.Const:
		case *ast.LocalGet:
			if err := resolveRef(&v.Local, locals, v.Pos, scope); err != nil {
				return err
			}
		case *ast.BinOp:
			if err := resolveSeq(v.LHS, funcs, locals, scope); err != nil {
				return err
			}
			if err := resolveSeq(v.RHS, funcs, locals, scope); err != nil {
				return err
			}
		case *ast.If:
			if err := resolveSeq(v.Cond, funcs, locals, scope); err != nil {
				return err
			}
			if err := resolveSeq(v.Then, funcs, locals, scope); err != nil {
				return err
			}
			if err := resolveSeq(v.Else, funcs, locals, scope); err != nil {
				return err
			}
		case *ast.Call:
			if err := resolveRef(&v.Target, funcs, v.Pos, moduleScope); err != nil {
				return err
			}
			for _, arg := range v.Args {
				if err := resolveSeq(arg, funcs, locals, scope); err != nil {
					return err
				}
			}
		case *ast.Return:
			if err := resolveSeq(v.Value, funcs, locals, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveRef(r *ast.Ref, table map[string]uint32, pos errors.Pos, scope string) error {
	if r.Resolved {
		return nil
	}
	idx, ok := table[r.Name]
	if !ok {
		return errors.UnknownSymbol(pos, r.Name, scope)
	}
	r.Index = idx
	r.Resolved = true
	return nil
}
