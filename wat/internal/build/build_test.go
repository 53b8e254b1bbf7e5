package build

import (
	stderrors "errors"
	"testing"

	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/wat/internal/ast"
	"github.com/echoptic/watc/wat/internal/sexpr"
	"github.com/echoptic/watc/wat/internal/token"
)

func buildModule(t *testing.T, source string) (*ast.Module, error) {
	t.Helper()
	root, err := sexpr.Build(token.NewLexer(source))
	if err != nil {
		t.Fatalf("sexpr stage failed: %v", err)
	}
	return Module(root)
}

func TestModule(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		mod, err := buildModule(t, "(module)")
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		if len(mod.Funcs) != 0 || len(mod.Exports) != 0 {
			t.Errorf("expected empty module, got %+v", mod)
		}
	})

	t.Run("func_signature", func(t *testing.T) {
		mod, err := buildModule(t, `(module
			(func $add (param $a i32) (param $b i32) (result i32)
				(i32.add (local.get $a) (local.get $b))))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		if len(mod.Funcs) != 1 {
			t.Fatalf("got %d funcs, want 1", len(mod.Funcs))
		}
		fn := mod.Funcs[0]
		if fn.Name != "$add" {
			t.Errorf("name = %q, want $add", fn.Name)
		}
		if len(fn.Params) != 2 || fn.Params[0].Name != "$a" || fn.Params[1].Name != "$b" {
			t.Errorf("unexpected params: %+v", fn.Params)
		}
		if fn.Result != ast.ValTypeI32 {
			t.Errorf("result = %v, want i32", fn.Result)
		}
		if len(fn.Body) != 1 {
			t.Fatalf("body has %d instrs, want 1", len(fn.Body))
		}
		bin, ok := fn.Body[0].(*ast.BinOp)
		if !ok || bin.Kind != ast.BinAdd {
			t.Fatalf("body[0] = %#v, want i32.add", fn.Body[0])
		}
		lhs, ok := bin.LHS[0].(*ast.LocalGet)
		if !ok || lhs.Local.Name != "$a" || lhs.Local.Resolved {
			t.Errorf("lhs = %#v, want unresolved $a", bin.LHS[0])
		}
	})

	t.Run("anonymous_params_and_locals", func(t *testing.T) {
		mod, err := buildModule(t, `(module
			(func (param i32 i32) (result i32) (local i32)
				(local.get 2)))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		fn := mod.Funcs[0]
		if len(fn.Params) != 2 || len(fn.Locals) != 1 {
			t.Fatalf("params/locals = %d/%d, want 2/1", len(fn.Params), len(fn.Locals))
		}
		lg := fn.Body[0].(*ast.LocalGet)
		if !lg.Local.Resolved || lg.Local.Index != 2 {
			t.Errorf("numeric reference should be born resolved at 2, got %+v", lg.Local)
		}
	})

	t.Run("module_level_export", func(t *testing.T) {
		mod, err := buildModule(t, `(module
			(func $f)
			(export "main" (func $f)))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		if len(mod.Exports) != 1 {
			t.Fatalf("got %d exports, want 1", len(mod.Exports))
		}
		exp := mod.Exports[0]
		if exp.Name != "main" || exp.Func.Resolved || exp.Func.Name != "$f" {
			t.Errorf("unexpected export: %+v", exp)
		}
	})

	t.Run("inline_export", func(t *testing.T) {
		mod, err := buildModule(t, `(module
			(func $zero)
			(func (export "one")))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		if len(mod.Exports) != 1 {
			t.Fatalf("got %d exports, want 1", len(mod.Exports))
		}
		exp := mod.Exports[0]
		if exp.Name != "one" || !exp.Func.Resolved || exp.Func.Index != 1 {
			t.Errorf("inline export should target index 1: %+v", exp)
		}
	})

	t.Run("if_then_else", func(t *testing.T) {
		mod, err := buildModule(t, `(module
			(func (param $n i32) (result i32)
				(if (result i32) (local.get $n)
					(then (i32.const 1))
					(else (i32.const 2)))))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		ins := mod.Funcs[0].Body[0].(*ast.If)
		if ins.Result != ast.ValTypeI32 {
			t.Error("if result annotation lost")
		}
		if len(ins.Cond) != 1 || len(ins.Then) != 1 || len(ins.Else) != 1 || !ins.HasElse {
			t.Errorf("unexpected if shape: %+v", ins)
		}
	})

	t.Run("if_missing_branches", func(t *testing.T) {
		mod, err := buildModule(t, `(module (func (param $n i32) (if (local.get $n))))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		ins := mod.Funcs[0].Body[0].(*ast.If)
		if len(ins.Then) != 0 || ins.HasElse {
			t.Errorf("branches should be empty: %+v", ins)
		}
	})

	t.Run("call_args", func(t *testing.T) {
		mod, err := buildModule(t, `(module
			(func $f (param i32 i32))
			(func (call $f (i32.const 1) (i32.const 2))))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		call := mod.Funcs[1].Body[0].(*ast.Call)
		if call.Target.Name != "$f" || len(call.Args) != 2 {
			t.Errorf("unexpected call: %+v", call)
		}
	})

	t.Run("return_with_value", func(t *testing.T) {
		mod, err := buildModule(t, `(module (func (result i32) (return (i32.const 7))))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		ret := mod.Funcs[0].Body[0].(*ast.Return)
		if len(ret.Value) != 1 {
			t.Errorf("return operand lost: %+v", ret)
		}
	})

	t.Run("get_local_alias", func(t *testing.T) {
		mod, err := buildModule(t, `(module (func (param $n i32) (result i32) (get_local $n)))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		if _, ok := mod.Funcs[0].Body[0].(*ast.LocalGet); !ok {
			t.Error("get_local did not build a LocalGet")
		}
	})

	t.Run("negative_const", func(t *testing.T) {
		mod, err := buildModule(t, `(module (func (result i32) (i32.const -42)))`)
		if err != nil {
			t.Fatalf("Module failed: %v", err)
		}
		c := mod.Funcs[0].Body[0].(*ast.Const)
		if c.Value != -42 {
			t.Errorf("const = %d, want -42", c.Value)
		}
	})
}

func TestModuleErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		kind   errors.Kind
	}{
		{"not_a_module", "(func)", errors.KindUnsupported},
		{"unknown_module_field", "(module (memory 1))", errors.KindUnsupported},
		{"unknown_instruction", "(module (func (i32.mul (i32.const 1) (i32.const 2))))", errors.KindUnsupported},
		{"unsupported_type", "(module (func (param $x i64)))", errors.KindUnsupported},
		{"unsupported_result_type", "(module (func (result f64)))", errors.KindUnsupported},
		{"loop_out_of_scope", "(module (func (loop)))", errors.KindUnsupported},
		{"bare_atom_instruction", "(module (func nop))", errors.KindUnsupported},
		{"then_outside_if", "(module (func (then)))", errors.KindUnsupported},
		{"binop_arity", "(module (func (i32.add (i32.const 1))))", errors.KindMalformedForm},
		{"if_without_condition", "(module (func (if (then))))", errors.KindMalformedForm},
		{"return_two_operands", "(module (func (return (i32.const 1) (i32.const 2))))", errors.KindMalformedForm},
		{"const_overflow", "(module (func (i32.const 99999999999)))", errors.KindMalformedToken},
		{"const_missing_literal", "(module (func (i32.const)))", errors.KindMalformedForm},
		{"export_without_descriptor", `(module (export "f"))`, errors.KindMalformedForm},
		{"empty_form", "(module ())", errors.KindMalformedForm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildModule(t, tt.source)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Stage: errors.StageBuild, Kind: tt.kind}) {
				t.Errorf("error = %v, want build/%s", err, tt.kind)
			}
		})
	}
}

func TestUnsupportedCarriesHeadAndPosition(t *testing.T) {
	_, err := buildModule(t, "(module\n  (table 1))")
	if err == nil {
		t.Fatal("expected error")
	}
	var berr *errors.Error
	if !stderrors.As(err, &berr) {
		t.Fatalf("unexpected error type: %T", err)
	}
	if berr.Symbol != "table" {
		t.Errorf("symbol = %q, want table", berr.Symbol)
	}
	if berr.Pos.Line != 2 {
		t.Errorf("line = %d, want 2", berr.Pos.Line)
	}
}
