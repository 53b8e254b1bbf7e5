// Package wat compiles a bounded subset of the WebAssembly text format
// into binary WASM.
//
// Basic usage:
//
//	wasm, err := wat.Compile(`(module
//		(func (export "add") (param $a i32) (param $b i32) (result i32)
//			(i32.add (local.get $a) (local.get $b)))
//	)`)
//
// Supported forms:
//   - module, func (named and anonymous), param, result, local
//   - export, both module-level and the inline (func (export "name")) form
//   - i32.const, i32.add, i32.sub, i32.eq
//   - local.get (and the legacy get_local spelling), by name or index
//   - call with folded arguments, return
//   - if/then/else with an optional (result i32) block type
//   - line comments (;;) and nested block comments (; ;)
//
// Instructions use the folded (expression-nested) form only. Everything
// outside this subset — memories, tables, globals, other value types,
// loops and branches — is rejected with a structured error rather than
// silently miscompiled.
//
// Compilation runs as a one-way pipeline: lexing, s-expression building,
// AST construction, name resolution, instruction encoding, and section
// assembly. Each stage either completes for the entire module or aborts
// the run with the first error; there is no partial output.
package wat
