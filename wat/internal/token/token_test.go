package token

import (
	stderrors "errors"
	"testing"

	"github.com/echoptic/watc/errors"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			"empty",
			"",
			nil,
		},
		{
			"parens",
			"()",
			[]Token{
				{"(", LParen, errors.Pos{Line: 1, Col: 1}},
				{")", RParen, errors.Pos{Line: 1, Col: 2}},
			},
		},
		{
			"module",
			"(module)",
			[]Token{
				{"(", LParen, errors.Pos{Line: 1, Col: 1}},
				{"module", Ident, errors.Pos{Line: 1, Col: 2}},
				{")", RParen, errors.Pos{Line: 1, Col: 8}},
			},
		},
		{
			"whitespace",
			"  (  module  )  ",
			[]Token{
				{"(", LParen, errors.Pos{Line: 1, Col: 3}},
				{"module", Ident, errors.Pos{Line: 1, Col: 6}},
				{")", RParen, errors.Pos{Line: 1, Col: 14}},
			},
		},
		{
			"newlines",
			"(\nmodule\n)",
			[]Token{
				{"(", LParen, errors.Pos{Line: 1, Col: 1}},
				{"module", Ident, errors.Pos{Line: 2, Col: 1}},
				{")", RParen, errors.Pos{Line: 3, Col: 1}},
			},
		},
		{
			"name",
			"$foo",
			[]Token{{"$foo", Ident, errors.Pos{Line: 1, Col: 1}}},
		},
		{
			"dotted_opcode",
			"i32.const",
			[]Token{{"i32.const", Ident, errors.Pos{Line: 1, Col: 1}}},
		},
		{
			"number",
			"42",
			[]Token{{"42", Number, errors.Pos{Line: 1, Col: 1}}},
		},
		{
			"negative_number",
			"-42",
			[]Token{{"-42", Number, errors.Pos{Line: 1, Col: 1}}},
		},
		{
			"positive_number",
			"+7",
			[]Token{{"+7", Number, errors.Pos{Line: 1, Col: 1}}},
		},
		{
			"string",
			`"add"`,
			[]Token{{"add", String, errors.Pos{Line: 1, Col: 1}}},
		},
		{
			"line_comment",
			";; nothing to see\n(module)",
			[]Token{
				{"(", LParen, errors.Pos{Line: 2, Col: 1}},
				{"module", Ident, errors.Pos{Line: 2, Col: 2}},
				{")", RParen, errors.Pos{Line: 2, Col: 8}},
			},
		},
		{
			"block_comment",
			"(; skip me ;)(module)",
			[]Token{
				{"(", LParen, errors.Pos{Line: 1, Col: 14}},
				{"module", Ident, errors.Pos{Line: 1, Col: 15}},
				{")", RParen, errors.Pos{Line: 1, Col: 21}},
			},
		},
		{
			"nested_block_comment",
			"(; outer (; inner ;) still outer ;)42",
			[]Token{{"42", Number, errors.Pos{Line: 1, Col: 36}}},
		},
		{
			"comment_inside_form",
			"(module ;; trailing\n)",
			[]Token{
				{"(", LParen, errors.Pos{Line: 1, Col: 1}},
				{"module", Ident, errors.Pos{Line: 1, Col: 2}},
				{")", RParen, errors.Pos{Line: 2, Col: 1}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			if err != nil {
				t.Fatalf("Tokenize failed: %v", err)
			}
			if len(tokens) != len(tt.expected) {
				t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(tt.expected), tokens)
			}
			for i, tok := range tokens {
				if tok != tt.expected[i] {
					t.Errorf("token %d = %+v, want %+v", i, tok, tt.expected[i])
				}
			}
		})
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  errors.Kind
	}{
		{"unterminated_block_comment", "(; never closed", errors.KindUnterminatedComment},
		{"unterminated_nested_comment", "(; outer (; inner ;)", errors.KindUnterminatedComment},
		{"unterminated_string", `(export "oops`, errors.KindUnterminatedString},
		{"stray_character", "(module @)", errors.KindMalformedToken},
		{"bare_sign", "(- )", errors.KindMalformedToken},
		{"number_glued_to_letters", "12ab", errors.KindMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Tokenize(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if !stderrors.Is(err, &errors.Error{Stage: errors.StageLex, Kind: tt.kind}) {
				t.Errorf("error = %v, want lex/%s", err, tt.kind)
			}
		})
	}
}

func TestUnterminatedCommentPosition(t *testing.T) {
	_, err := Tokenize("(module)\n  (; dangling")
	if err == nil {
		t.Fatal("expected error")
	}
	var lexErr *errors.Error
	if !stderrors.As(err, &lexErr) {
		t.Fatalf("unexpected error type: %T", err)
	}
	if lexErr.Pos != (errors.Pos{Line: 2, Col: 3}) {
		t.Errorf("comment start position = %v, want 2:3", lexErr.Pos)
	}
}

func TestLexerIsLazy(t *testing.T) {
	// The bad character sits after the first two tokens; pulling just those
	// must not fail.
	l := NewLexer("(module @")
	for i := 0; i < 2; i++ {
		tok, err := l.Next()
		if err != nil || tok == nil {
			t.Fatalf("token %d: tok=%v err=%v", i, tok, err)
		}
	}
	if _, err := l.Next(); err == nil {
		t.Fatal("expected error on third token")
	}
}
