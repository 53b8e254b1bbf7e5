package encoder

import (
	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/wat/internal/ast"
)

// encodeSeq lowers an instruction sequence into buf. Sub-instructions are
// emitted before their parent's opcode, matching evaluation order on the
// operand stack.
func encodeSeq(buf *Buffer, m *ast.Module, fn *ast.Func, instrs []ast.Instr) error {
	for _, ins := range instrs {
		if err := encodeInstr(buf, m, fn, ins); err != nil {
			return err
		}
	}
	return nil
}

func encodeInstr(buf *Buffer, m *ast.Module, fn *ast.Func, ins ast.Instr) error {
	switch v := ins.(type) {
	case *ast.Const:
		buf.AppendByte(ast.OpI32Const)
		buf.WriteI32(v.Value)

	case *ast.LocalGet:
		idx, err := localIndex(fn, v.Local, v.Pos)
		if err != nil {
			return err
		}
		buf.AppendByte(ast.OpLocalGet)
		buf.WriteU32(idx)

	case *ast.BinOp:
		if err := encodeSeq(buf, m, fn, v.LHS); err != nil {
			return err
		}
		if err := encodeSeq(buf, m, fn, v.RHS); err != nil {
			return err
		}
		buf.AppendByte(binOpcode(v.Kind))

	case *ast.If:
		return encodeIf(buf, m, fn, v)

	case *ast.Call:
		return encodeCall(buf, m, fn, v)

	case *ast.Return:
		if len(v.Value) == 0 && fn.Result != 0 {
			return errors.MissingValue(v.Pos, fn.Label())
		}
		if err := encodeSeq(buf, m, fn, v.Value); err != nil {
			return err
		}
		buf.AppendByte(ast.OpReturn)

	default:
		return errors.CodeGen(ins.At(), errors.KindUnsupported, "unencodable instruction %T", ins)
	}
	return nil
}

func binOpcode(kind ast.BinKind) byte {
	switch kind {
	case ast.BinAdd:
		return ast.OpI32Add
	case ast.BinSub:
		return ast.OpI32Sub
	default:
		return ast.OpI32Eq
	}
}

// encodeIf emits condition, block type, then-branch, optional else marker
// and branch, and the terminating end. The markers are emitted even when a
// branch is empty so the structured encoding stays well-formed.
func encodeIf(buf *Buffer, m *ast.Module, fn *ast.Func, v *ast.If) error {
	if err := encodeSeq(buf, m, fn, v.Cond); err != nil {
		return err
	}
	buf.AppendByte(ast.OpIf)
	if v.Result != 0 {
		buf.AppendByte(byte(v.Result))
	} else {
		buf.AppendByte(ast.BlockTypeEmpty)
	}
	if err := encodeSeq(buf, m, fn, v.Then); err != nil {
		return err
	}
	if v.HasElse {
		buf.AppendByte(ast.OpElse)
		if err := encodeSeq(buf, m, fn, v.Else); err != nil {
			return err
		}
	}
	buf.AppendByte(ast.OpEnd)
	return nil
}

// encodeCall checks arity against the target's declared parameters before
// emitting anything.
func encodeCall(buf *Buffer, m *ast.Module, fn *ast.Func, v *ast.Call) error {
	idx, err := refIndex(v.Target, v.Pos)
	if err != nil {
		return err
	}
	target := m.FuncByIndex(idx)
	if target == nil {
		return errors.CodeGen(v.Pos, errors.KindIndexRange,
			"function index %d out of range (%d declared)", idx, len(m.Funcs))
	}
	if len(v.Args) != len(target.Params) {
		return errors.ArityMismatch(v.Pos, target.Label(), len(target.Params), len(v.Args))
	}
	for _, arg := range v.Args {
		if err := encodeSeq(buf, m, fn, arg); err != nil {
			return err
		}
	}
	buf.AppendByte(ast.OpCall)
	buf.WriteU32(idx)
	return nil
}

// refIndex unwraps a resolved reference. An unresolved reference reaching
// the encoder is a defect in the resolution pass, not a user error.
func refIndex(r ast.Ref, pos errors.Pos) (uint32, error) {
	if !r.Resolved {
		return 0, errors.CodeGen(pos, errors.KindUnresolvedRef,
			"reference %q was never resolved", r.Name)
	}
	return r.Index, nil
}

func localIndex(fn *ast.Func, r ast.Ref, pos errors.Pos) (uint32, error) {
	idx, err := refIndex(r, pos)
	if err != nil {
		return 0, err
	}
	if n := uint32(len(fn.Params) + len(fn.Locals)); idx >= n {
		return 0, errors.CodeGen(pos, errors.KindIndexRange,
			"local index %d out of range in %s (%d slots)", idx, fn.Label(), n)
	}
	return idx, nil
}
