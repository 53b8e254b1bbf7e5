package errors

import (
	"fmt"
	"strings"
)

// Stage indicates where in the pipeline the error occurred
type Stage string

const (
	StageLex      Stage = "lex"      // tokenization
	StageParse    Stage = "parse"    // s-expression structure
	StageBuild    Stage = "build"    // AST construction
	StageResolve  Stage = "resolve"  // name to index resolution
	StageCodeGen  Stage = "codegen"  // instruction encoding
	StageAssemble Stage = "assemble" // binary section assembly
	StageLoad     Stage = "load"     // loading compiled output into a runtime
	StageRun      Stage = "run"      // invoking an exported function
)

// Kind categorizes the error
type Kind string

const (
	KindMalformedToken      Kind = "malformed_token"
	KindUnterminatedComment Kind = "unterminated_comment"
	KindUnterminatedString  Kind = "unterminated_string"
	KindUnbalanced          Kind = "unbalanced"
	KindUnexpectedEnd       Kind = "unexpected_end"
	KindUnsupported         Kind = "unsupported"
	KindMalformedForm       Kind = "malformed_form"
	KindUnknownSymbol       Kind = "unknown_symbol"
	KindDuplicateSymbol     Kind = "duplicate_symbol"
	KindArityMismatch       Kind = "arity_mismatch"
	KindMissingValue        Kind = "missing_value"
	KindUnresolvedRef       Kind = "unresolved_ref"
	KindIndexRange          Kind = "index_range"
	KindInvalidModule       Kind = "invalid_module"
	KindNotFound            Kind = "not_found"
	KindTrap                Kind = "trap"
)

// Pos is a 1-based source position. The zero value means "no position".
type Pos struct {
	Line int
	Col  int
}

func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Error is the structured error type used throughout the compiler
type Error struct {
	Cause  error
	Stage  Stage
	Kind   Kind
	Symbol string
	Scope  string
	Detail string
	Pos    Pos
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Stage))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Pos.IsValid() {
		b.WriteString(" at ")
		b.WriteString(e.Pos.String())
	}

	if e.Symbol != "" {
		b.WriteString(": ")
		b.WriteString(e.Symbol)
		if e.Scope != "" {
			b.WriteString(" in ")
			b.WriteString(e.Scope)
		}
	}

	if e.Detail != "" {
		if e.Symbol != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Stage == t.Stage && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(stage Stage, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Stage: stage,
			Kind:  kind,
		},
	}
}

// At sets the source position
func (b *Builder) At(pos Pos) *Builder {
	b.err.Pos = pos
	return b
}

// Symbol sets the offending symbol text
func (b *Builder) Symbol(s string) *Builder {
	b.err.Symbol = s
	return b
}

// Scope sets the enclosing scope (function name or "module")
func (b *Builder) Scope(s string) *Builder {
	b.err.Scope = s
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the pipeline taxonomy

// Lex creates a malformed-token error
func Lex(pos Pos, detail string, args ...any) *Error {
	return New(StageLex, KindMalformedToken).At(pos).Detail(detail, args...).Build()
}

// UnterminatedComment reports a block comment that never closes.
// The position is where the comment opened.
func UnterminatedComment(pos Pos) *Error {
	return New(StageLex, KindUnterminatedComment).At(pos).Detail("block comment is never closed").Build()
}

// Parse creates an s-expression structure error
func Parse(pos Pos, kind Kind, detail string, args ...any) *Error {
	return New(StageParse, kind).At(pos).Detail(detail, args...).Build()
}

// Unsupported reports a form outside the compiler's instruction subset
func Unsupported(pos Pos, form string) *Error {
	return New(StageBuild, KindUnsupported).At(pos).Symbol(form).Detail("form is not supported").Build()
}

// UnknownSymbol reports a reference to an undeclared name.
// scope is the enclosing function, or "module" for function-name references.
func UnknownSymbol(pos Pos, symbol, scope string) *Error {
	return New(StageResolve, KindUnknownSymbol).At(pos).Symbol(symbol).Scope(scope).Build()
}

// DuplicateSymbol reports a name declared twice within one namespace
func DuplicateSymbol(pos Pos, symbol, scope string) *Error {
	return New(StageResolve, KindDuplicateSymbol).At(pos).Symbol(symbol).Scope(scope).Build()
}

// ArityMismatch reports a call whose argument count disagrees with the
// target's declared parameter count
func ArityMismatch(pos Pos, target string, want, got int) *Error {
	return New(StageCodeGen, KindArityMismatch).
		At(pos).
		Symbol(target).
		Detail("expected %d argument(s), got %d", want, got).
		Build()
}

// MissingValue reports a bare return inside a function that declares a result
func MissingValue(pos Pos, fn string) *Error {
	return New(StageCodeGen, KindMissingValue).
		At(pos).
		Scope(fn).
		Detail("return must supply a value in a function with a declared result").
		Build()
}

// CodeGen creates a generic encoding-stage error
func CodeGen(pos Pos, kind Kind, detail string, args ...any) *Error {
	return New(StageCodeGen, kind).At(pos).Detail(detail, args...).Build()
}

// Load wraps a runtime module-loading failure
func Load(detail string, cause error) *Error {
	return New(StageLoad, KindInvalidModule).Detail(detail).Cause(cause).Build()
}

// NotFound reports a missing export
func NotFound(what, name string) *Error {
	return New(StageRun, KindNotFound).Detail("%s %q not found", what, name).Build()
}

// Trap wraps a failure raised while executing an exported function
func Trap(name string, cause error) *Error {
	return New(StageRun, KindTrap).Symbol(name).Cause(cause).Build()
}
