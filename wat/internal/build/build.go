// Package build interprets the s-expression tree as a module declaration.
// It recognizes the fixed grammar of the compiler's subset; any other form
// at a declaration or instruction position is rejected here, which is the
// boundary enforcing the scope of the instruction set.
package build

import (
	"strconv"

	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/wat/internal/ast"
	"github.com/echoptic/watc/wat/internal/sexpr"
	"github.com/echoptic/watc/wat/internal/token"
)

// maxNesting bounds folded-expression depth so adversarial input cannot
// grow the host call stack without limit.
const maxNesting = 4096

// Module interprets the root s-expression as a (module ...) form.
func Module(root *sexpr.Node) (*ast.Module, error) {
	if !root.IsList() {
		return nil, errors.Parse(root.Pos, errors.KindUnbalanced, "expected a list at top level")
	}
	head := root.Head()
	if head == nil || head.Value != "module" {
		return nil, errors.Unsupported(root.Pos, headText(root))
	}

	mod := &ast.Module{}
	for _, item := range root.Items[1:] {
		if !item.IsList() {
			return nil, errors.Unsupported(item.Pos, item.Tok.Value)
		}
		h := item.Head()
		if h == nil {
			return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
				At(item.Pos).
				Detail("empty form in module body").
				Build()
		}
		switch h.Value {
		case "func":
			fn, inlineExports, err := buildFunc(item)
			if err != nil {
				return nil, err
			}
			funcIdx := uint32(len(mod.Funcs))
			mod.Funcs = append(mod.Funcs, fn)
			for _, name := range inlineExports {
				mod.Exports = append(mod.Exports, ast.Export{
					Name: name,
					Func: ast.IndexRef(funcIdx),
					Pos:  item.Pos,
				})
			}
		case "export":
			exp, err := buildExport(item)
			if err != nil {
				return nil, err
			}
			mod.Exports = append(mod.Exports, *exp)
		default:
			return nil, errors.Unsupported(h.Pos, h.Value)
		}
	}
	return mod, nil
}

func headText(n *sexpr.Node) string {
	if h := n.Head(); h != nil {
		return h.Value
	}
	return "()"
}

func isName(n *sexpr.Node) bool {
	return n.Kind == sexpr.Atom && n.Tok.Type == token.Ident && len(n.Tok.Value) > 0 && n.Tok.Value[0] == '$'
}

// buildFunc interprets (func $name? clauses* instr*). Inline export names
// are returned separately; the caller knows the function's index.
func buildFunc(n *sexpr.Node) (*ast.Func, []string, error) {
	fn := &ast.Func{Pos: n.Pos}
	var exports []string

	items := n.Items[1:]
	if len(items) > 0 && isName(items[0]) {
		fn.Name = items[0].Tok.Value
		items = items[1:]
	}

	// Signature clauses, then the body. Once an instruction is seen the
	// clause forms are no longer recognized.
	i := 0
clauses:
	for ; i < len(items); i++ {
		item := items[i]
		if !item.IsList() {
			return nil, nil, errors.Unsupported(item.Pos, item.Tok.Value)
		}
		h := item.Head()
		if h == nil {
			break
		}
		switch h.Value {
		case "export":
			name, err := exportName(item)
			if err != nil {
				return nil, nil, err
			}
			exports = append(exports, name)
		case "param":
			bindings, err := buildBindings(item)
			if err != nil {
				return nil, nil, err
			}
			fn.Params = append(fn.Params, bindings...)
		case "result":
			if err := buildResult(item, fn); err != nil {
				return nil, nil, err
			}
		case "local":
			bindings, err := buildBindings(item)
			if err != nil {
				return nil, nil, err
			}
			fn.Locals = append(fn.Locals, bindings...)
		default:
			break clauses
		}
	}

	body, err := buildInstrSeq(items[i:], 0)
	if err != nil {
		return nil, nil, err
	}
	fn.Body = body
	return fn, exports, nil
}

// exportName reads the inline form (export "name").
func exportName(n *sexpr.Node) (string, error) {
	if len(n.Items) != 2 || n.Items[1].Kind != sexpr.Atom || n.Items[1].Tok.Type != token.String {
		return "", errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("export expects a quoted name").
			Build()
	}
	return n.Items[1].Tok.Value, nil
}

// buildBindings reads (param ...) and (local ...) alike: either a single
// named slot ($x i32) or any number of anonymous types (i32 i32).
func buildBindings(n *sexpr.Node) ([]ast.Binding, error) {
	items := n.Items[1:]
	if len(items) > 0 && isName(items[0]) {
		if len(items) != 2 {
			return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
				At(n.Pos).
				Detail("a named %s declares exactly one type", n.Head().Value).
				Build()
		}
		vt, err := valType(items[1])
		if err != nil {
			return nil, err
		}
		return []ast.Binding{{Name: items[0].Tok.Value, Type: vt}}, nil
	}

	var bindings []ast.Binding
	for _, item := range items {
		vt, err := valType(item)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, ast.Binding{Type: vt})
	}
	return bindings, nil
}

func buildResult(n *sexpr.Node, fn *ast.Func) error {
	if len(n.Items) != 2 {
		return errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("result declares exactly one type").
			Build()
	}
	if fn.Result != 0 {
		return errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("duplicate result clause").
			Build()
	}
	vt, err := valType(n.Items[1])
	if err != nil {
		return err
	}
	fn.Result = vt
	return nil
}

func valType(n *sexpr.Node) (ast.ValType, error) {
	if n.Kind != sexpr.Atom {
		return 0, errors.Unsupported(n.Pos, headText(n))
	}
	if n.Tok.Value != "i32" {
		return 0, errors.Unsupported(n.Pos, n.Tok.Value)
	}
	return ast.ValTypeI32, nil
}

// buildExport reads the module-level form (export "name" (func $f)).
func buildExport(n *sexpr.Node) (*ast.Export, error) {
	if len(n.Items) != 3 || n.Items[1].Kind != sexpr.Atom || n.Items[1].Tok.Type != token.String {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail(`export expects ("name" (func $target))`).
			Build()
	}
	desc := n.Items[2]
	h := desc.Head()
	if h == nil || h.Value != "func" || len(desc.Items) != 2 {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(desc.Pos).
			Detail("export descriptor must be (func $target)").
			Build()
	}
	ref, err := refOperand(desc.Items[1])
	if err != nil {
		return nil, err
	}
	return &ast.Export{Name: n.Items[1].Tok.Value, Func: ref, Pos: n.Pos}, nil
}

// refOperand reads a $name or numeric index. Numeric references are born
// resolved.
func refOperand(n *sexpr.Node) (ast.Ref, error) {
	if n.Kind != sexpr.Atom {
		return ast.Ref{}, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("expected a name or index").
			Build()
	}
	if isName(n) {
		return ast.NameRef(n.Tok.Value), nil
	}
	if n.Tok.Type == token.Number {
		idx, err := strconv.ParseUint(n.Tok.Value, 10, 32)
		if err != nil {
			return ast.Ref{}, errors.New(errors.StageBuild, errors.KindMalformedToken).
				At(n.Pos).
				Detail("index %q out of range", n.Tok.Value).
				Build()
		}
		return ast.IndexRef(uint32(idx)), nil
	}
	return ast.Ref{}, errors.New(errors.StageBuild, errors.KindMalformedForm).
		At(n.Pos).
		Detail("expected a name or index, got %q", n.Tok.Value).
		Build()
}

// buildInstrSeq interprets a run of folded instruction expressions.
func buildInstrSeq(nodes []*sexpr.Node, depth int) ([]ast.Instr, error) {
	var instrs []ast.Instr
	for _, n := range nodes {
		ins, err := buildInstr(n, depth)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, ins)
	}
	return instrs, nil
}

func buildInstr(n *sexpr.Node, depth int) (ast.Instr, error) {
	if depth > maxNesting {
		return nil, errors.New(errors.StageBuild, errors.KindUnsupported).
			At(n.Pos).
			Detail("expression nesting exceeds %d levels", maxNesting).
			Build()
	}
	if !n.IsList() {
		return nil, errors.Unsupported(n.Pos, n.Tok.Value)
	}
	h := n.Head()
	if h == nil {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("empty form at instruction position").
			Build()
	}

	switch h.Value {
	case "i32.const":
		return buildConst(n)
	case "local.get", "get_local":
		return buildLocalGet(n)
	case "i32.add":
		return buildBinOp(n, ast.BinAdd, depth)
	case "i32.sub":
		return buildBinOp(n, ast.BinSub, depth)
	case "i32.eq":
		return buildBinOp(n, ast.BinEq, depth)
	case "if":
		return buildIf(n, depth)
	case "call":
		return buildCall(n, depth)
	case "return":
		return buildReturn(n, depth)
	default:
		return nil, errors.Unsupported(h.Pos, h.Value)
	}
}

func buildConst(n *sexpr.Node) (ast.Instr, error) {
	if len(n.Items) != 2 || n.Items[1].Kind != sexpr.Atom || n.Items[1].Tok.Type != token.Number {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("i32.const expects one integer literal").
			Build()
	}
	lit := n.Items[1].Tok
	v, err := strconv.ParseInt(lit.Value, 10, 32)
	if err != nil {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedToken).
			At(lit.Pos).
			Detail("integer literal %q does not fit in i32", lit.Value).
			Build()
	}
	return &ast.Const{Value: int32(v), Pos: n.Pos}, nil
}

func buildLocalGet(n *sexpr.Node) (ast.Instr, error) {
	if len(n.Items) != 2 {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("%s expects one local name or index", n.Head().Value).
			Build()
	}
	ref, err := refOperand(n.Items[1])
	if err != nil {
		return nil, err
	}
	return &ast.LocalGet{Local: ref, Pos: n.Pos}, nil
}

func buildBinOp(n *sexpr.Node, kind ast.BinKind, depth int) (ast.Instr, error) {
	if len(n.Items) != 3 {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("%s expects two operands, got %d", kind, len(n.Items)-1).
			Build()
	}
	lhs, err := buildInstr(n.Items[1], depth+1)
	if err != nil {
		return nil, err
	}
	rhs, err := buildInstr(n.Items[2], depth+1)
	if err != nil {
		return nil, err
	}
	return &ast.BinOp{Kind: kind, LHS: []ast.Instr{lhs}, RHS: []ast.Instr{rhs}, Pos: n.Pos}, nil
}

// buildIf reads (if (result i32)? cond+ (then instr*)? (else instr*)?).
// A missing branch stays an empty sequence; the encoder still emits the
// structured markers around it.
func buildIf(n *sexpr.Node, depth int) (ast.Instr, error) {
	ins := &ast.If{Pos: n.Pos}
	items := n.Items[1:]

	if len(items) > 0 && items[0].IsList() {
		if h := items[0].Head(); h != nil && h.Value == "result" {
			fakeFn := &ast.Func{}
			if err := buildResult(items[0], fakeFn); err != nil {
				return nil, err
			}
			ins.Result = fakeFn.Result
			items = items[1:]
		}
	}

	i := 0
	for ; i < len(items); i++ {
		if h := items[i].Head(); h != nil && (h.Value == "then" || h.Value == "else") {
			break
		}
		cond, err := buildInstr(items[i], depth+1)
		if err != nil {
			return nil, err
		}
		ins.Cond = append(ins.Cond, cond)
	}
	if len(ins.Cond) == 0 {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("if has no condition").
			Build()
	}

	if i < len(items) && items[i].Head() != nil && items[i].Head().Value == "then" {
		seq, err := buildInstrSeq(items[i].Items[1:], depth+1)
		if err != nil {
			return nil, err
		}
		ins.Then = seq
		i++
	}
	if i < len(items) && items[i].Head() != nil && items[i].Head().Value == "else" {
		seq, err := buildInstrSeq(items[i].Items[1:], depth+1)
		if err != nil {
			return nil, err
		}
		ins.Else = seq
		ins.HasElse = true
		i++
	}
	if i < len(items) {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(items[i].Pos).
			Detail("unexpected form after if branches").
			Build()
	}
	return ins, nil
}

func buildCall(n *sexpr.Node, depth int) (ast.Instr, error) {
	if len(n.Items) < 2 {
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("call expects a function name or index").
			Build()
	}
	target, err := refOperand(n.Items[1])
	if err != nil {
		return nil, err
	}
	ins := &ast.Call{Target: target, Pos: n.Pos}
	for _, arg := range n.Items[2:] {
		one, err := buildInstr(arg, depth+1)
		if err != nil {
			return nil, err
		}
		ins.Args = append(ins.Args, []ast.Instr{one})
	}
	return ins, nil
}

func buildReturn(n *sexpr.Node, depth int) (ast.Instr, error) {
	ins := &ast.Return{Pos: n.Pos}
	switch len(n.Items) {
	case 1:
	case 2:
		one, err := buildInstr(n.Items[1], depth+1)
		if err != nil {
			return nil, err
		}
		ins.Value = []ast.Instr{one}
	default:
		return nil, errors.New(errors.StageBuild, errors.KindMalformedForm).
			At(n.Pos).
			Detail("return takes at most one operand").
			Build()
	}
	return ins, nil
}
