// Package errors provides structured error types for the watc compiler.
//
// Errors are categorized by Stage (which pipeline pass failed) and Kind
// (error category), and carry the source position where available. Every
// error is terminal: the pipeline stops at the first one and produces no
// output.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.StageResolve, errors.KindUnknownSymbol).
//		At(pos).
//		Symbol("$fib").
//		Scope("$main").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownSymbol(pos, "$fib", "$main")
//	err := errors.ArityMismatch(pos, "$add", 2, 0)
//
// All errors implement the standard error interface and support errors.Is/As;
// Is matches on the (Stage, Kind) pair.
package errors
