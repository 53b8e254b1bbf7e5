package ast

import "github.com/echoptic/watc/errors"

// Module is the sole ownership root of one compilation: declared functions
// in source order (declaration order fixes index assignment) plus exports.
type Module struct {
	Funcs   []*Func
	Exports []Export
}

// FuncByIndex returns the function declared at idx, or nil.
func (m *Module) FuncByIndex(idx uint32) *Func {
	if int(idx) >= len(m.Funcs) {
		return nil
	}
	return m.Funcs[idx]
}

type Func struct {
	Name   string // "$name", empty when anonymous
	Params []Binding
	Locals []Binding
	Body   []Instr
	Result ValType // 0 means no declared result
	Pos    errors.Pos
}

// Label names the function for diagnostics.
func (f *Func) Label() string {
	if f.Name != "" {
		return f.Name
	}
	return "unnamed function"
}

// Binding is one named (or anonymous) param/local slot.
type Binding struct {
	Name string
	Type ValType
}

type Export struct {
	Name string // external name
	Func Ref
	Pos  errors.Pos
}

// Ref is a reference to a function or local: by name until resolution, by
// index afterwards. Numeric references in source are born resolved.
type Ref struct {
	Name     string
	Index    uint32
	Resolved bool
}

func NameRef(name string) Ref {
	return Ref{Name: name}
}

func IndexRef(idx uint32) Ref {
	return Ref{Index: idx, Resolved: true}
}

func (r Ref) String() string {
	if r.Resolved {
		return "resolved"
	}
	return r.Name
}

// Instr is the tagged instruction variant. Operands of compound
// instructions are instruction sequences themselves, mirroring the folded
// source grammar.
type Instr interface {
	instr()
	At() errors.Pos
}

// Const pushes an i32 constant.
type Const struct {
	Value int32
	Pos   errors.Pos
}

// LocalGet pushes a param or local.
type LocalGet struct {
	Local Ref
	Pos   errors.Pos
}

type BinKind int

const (
	BinAdd BinKind = iota
	BinSub
	BinEq
)

func (k BinKind) String() string {
	switch k {
	case BinAdd:
		return "i32.add"
	case BinSub:
		return "i32.sub"
	case BinEq:
		return "i32.eq"
	}
	return "unknown"
}

// BinOp evaluates LHS then RHS, then applies the operator.
type BinOp struct {
	LHS  []Instr
	RHS  []Instr
	Kind BinKind
	Pos  errors.Pos
}

// If evaluates Cond and branches. A missing branch encodes as an empty
// instruction sequence. Result is the optional block type.
type If struct {
	Cond    []Instr
	Then    []Instr
	Else    []Instr
	HasElse bool
	Result  ValType // 0 means empty block type
	Pos     errors.Pos
}

// Call evaluates each argument sequence in order, then calls Target.
type Call struct {
	Target Ref
	Args   [][]Instr
	Pos    errors.Pos
}

// Return evaluates its operand (if any) and returns from the function.
type Return struct {
	Value []Instr
	Pos   errors.Pos
}

func (*Const) instr()    {}
func (*LocalGet) instr() {}
func (*BinOp) instr()    {}
func (*If) instr()       {}
func (*Call) instr()     {}
func (*Return) instr()   {}

func (i *Const) At() errors.Pos    { return i.Pos }
func (i *LocalGet) At() errors.Pos { return i.Pos }
func (i *BinOp) At() errors.Pos    { return i.Pos }
func (i *If) At() errors.Pos       { return i.Pos }
func (i *Call) At() errors.Pos     { return i.Pos }
func (i *Return) At() errors.Pos   { return i.Pos }

// FuncType is a deduplicated signature entry in the type section.
type FuncType struct {
	Params []ValType
	Result ValType // 0 means void
}

func (ft FuncType) Equal(other FuncType) bool {
	if len(ft.Params) != len(other.Params) || ft.Result != other.Result {
		return false
	}
	for i, p := range ft.Params {
		if p != other.Params[i] {
			return false
		}
	}
	return true
}

// Signature derives the function's type-section entry.
func (f *Func) Signature() FuncType {
	ft := FuncType{Result: f.Result}
	for _, p := range f.Params {
		ft.Params = append(ft.Params, p.Type)
	}
	return ft
}
