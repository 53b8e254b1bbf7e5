package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Stage:  StageResolve,
				Kind:   KindUnknownSymbol,
				Pos:    Pos{Line: 3, Col: 9},
				Symbol: "$fib",
				Scope:  "$main",
			},
			contains: []string{"[resolve]", "unknown_symbol", "3:9", "$fib", "in $main"},
		},
		{
			name: "minimal error",
			err: &Error{
				Stage: StageParse,
				Kind:  KindUnbalanced,
			},
			contains: []string{"[parse]", "unbalanced"},
		},
		{
			name: "error with cause",
			err: &Error{
				Stage:  StageLoad,
				Kind:   KindInvalidModule,
				Detail: "load module",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[load]", "invalid_module", "load module", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Load("read module", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is did not find cause through Unwrap")
	}
}

func TestError_Is(t *testing.T) {
	err := UnknownSymbol(Pos{Line: 1, Col: 1}, "$x", "$f")

	if !errors.Is(err, &Error{Stage: StageResolve, Kind: KindUnknownSymbol}) {
		t.Error("expected match on same stage and kind")
	}
	if errors.Is(err, &Error{Stage: StageResolve, Kind: KindDuplicateSymbol}) {
		t.Error("unexpected match on different kind")
	}
	if errors.Is(err, &Error{Stage: StageCodeGen, Kind: KindUnknownSymbol}) {
		t.Error("unexpected match on different stage")
	}
}

func TestBuilder(t *testing.T) {
	err := New(StageCodeGen, KindArityMismatch).
		At(Pos{Line: 7, Col: 13}).
		Symbol("$add").
		Detail("expected %d argument(s), got %d", 2, 0).
		Build()

	if err.Stage != StageCodeGen || err.Kind != KindArityMismatch {
		t.Errorf("wrong stage/kind: %s/%s", err.Stage, err.Kind)
	}
	if err.Detail != "expected 2 argument(s), got 0" {
		t.Errorf("wrong detail: %q", err.Detail)
	}
	if !strings.Contains(err.Error(), "7:13") {
		t.Errorf("position missing from %q", err.Error())
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *Error
		stage Stage
		kind  Kind
	}{
		{"lex", Lex(Pos{1, 2}, "stray character %q", '@'), StageLex, KindMalformedToken},
		{"unterminated_comment", UnterminatedComment(Pos{4, 1}), StageLex, KindUnterminatedComment},
		{"parse", Parse(Pos{2, 3}, KindUnexpectedEnd, "input ends inside a form"), StageParse, KindUnexpectedEnd},
		{"unsupported", Unsupported(Pos{1, 2}, "memory"), StageBuild, KindUnsupported},
		{"unknown_symbol", UnknownSymbol(Pos{1, 2}, "$n", "$f"), StageResolve, KindUnknownSymbol},
		{"arity", ArityMismatch(Pos{1, 2}, "$f", 1, 0), StageCodeGen, KindArityMismatch},
		{"missing_value", MissingValue(Pos{1, 2}, "$f"), StageCodeGen, KindMissingValue},
		{"not_found", NotFound("export", "main"), StageRun, KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Stage != tt.stage {
				t.Errorf("stage = %s, want %s", tt.err.Stage, tt.stage)
			}
			if tt.err.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", tt.err.Kind, tt.kind)
			}
		})
	}
}

func TestArityMismatch_Message(t *testing.T) {
	err := ArityMismatch(Pos{Line: 5, Col: 3}, "$fib", 1, 0)
	msg := err.Error()
	for _, want := range []string{"$fib", "expected 1", "got 0"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}
