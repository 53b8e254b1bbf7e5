package token

import (
	"unicode"

	"github.com/echoptic/watc/errors"
)

type Type int

const (
	LParen Type = iota
	RParen
	Ident
	String
	Number
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Pos   errors.Pos
}

// Lexer turns source text into a stream of tokens. A Lexer is single-use:
// create a fresh one per source.
type Lexer struct {
	runes []rune
	pos   int
	line  int
	col   int
}

func NewLexer(source string) *Lexer {
	return &Lexer{runes: []rune(source), line: 1, col: 1}
}

func (l *Lexer) at() errors.Pos {
	return errors.Pos{Line: l.line, Col: l.col}
}

func (l *Lexer) advance() {
	if l.pos < len(l.runes) {
		if l.runes[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *Lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.runes) {
		return 0
	}
	return l.runes[l.pos+offset]
}

// Next returns the next token, or (nil, nil) at end of input.
func (l *Lexer) Next() (*Token, error) {
	for l.pos < len(l.runes) {
		r := l.runes[l.pos]

		if unicode.IsSpace(r) {
			l.advance()
			continue
		}

		// Line comment
		if r == ';' && l.peek(1) == ';' {
			for l.pos < len(l.runes) && l.runes[l.pos] != '\n' {
				l.advance()
			}
			continue
		}

		// Block comment (nesting) or left paren
		if r == '(' {
			if l.peek(1) == ';' {
				if err := l.skipBlockComment(); err != nil {
					return nil, err
				}
				continue
			}
			tok := &Token{Value: "(", Type: LParen, Pos: l.at()}
			l.advance()
			return tok, nil
		}

		if r == ')' {
			tok := &Token{Value: ")", Type: RParen, Pos: l.at()}
			l.advance()
			return tok, nil
		}

		if r == '"' {
			return l.scanString()
		}

		if r == '-' || r == '+' || unicode.IsDigit(r) {
			return l.scanNumber()
		}

		if r == '$' || r == '_' || unicode.IsLetter(r) {
			return l.scanIdent()
		}

		return nil, errors.Lex(l.at(), "stray character %q", r)
	}
	return nil, nil
}

func (l *Lexer) skipBlockComment() error {
	start := l.at()
	l.advance() // '('
	l.advance() // ';'
	depth := 1
	for l.pos < len(l.runes) {
		if l.runes[l.pos] == '(' && l.peek(1) == ';' {
			depth++
			l.advance()
			l.advance()
			continue
		}
		if l.runes[l.pos] == ';' && l.peek(1) == ')' {
			depth--
			l.advance()
			l.advance()
			if depth == 0 {
				return nil
			}
			continue
		}
		l.advance()
	}
	return errors.UnterminatedComment(start)
}

func (l *Lexer) scanString() (*Token, error) {
	start := l.at()
	l.advance() // opening quote
	from := l.pos
	for l.pos < len(l.runes) && l.runes[l.pos] != '"' {
		if l.runes[l.pos] == '\\' {
			l.advance()
		}
		l.advance()
	}
	if l.pos >= len(l.runes) {
		return nil, errors.New(errors.StageLex, errors.KindUnterminatedString).
			At(start).
			Detail("string literal is never closed").
			Build()
	}
	value := string(l.runes[from:l.pos])
	l.advance() // closing quote
	return &Token{Value: value, Type: String, Pos: start}, nil
}

func (l *Lexer) scanNumber() (*Token, error) {
	start := l.at()
	from := l.pos
	if r := l.runes[l.pos]; r == '-' || r == '+' {
		l.advance()
	}
	digits := 0
	for l.pos < len(l.runes) && unicode.IsDigit(l.runes[l.pos]) {
		digits++
		l.advance()
	}
	if digits == 0 {
		return nil, errors.Lex(start, "expected digits after sign")
	}
	// A trailing identifier character means something like "1abc",
	// which is no token we know.
	if r := l.peek(0); r == '$' || r == '_' || r == '.' || unicode.IsLetter(r) {
		return nil, errors.Lex(start, "malformed number starting with %q", string(l.runes[from:l.pos]))
	}
	return &Token{Value: string(l.runes[from:l.pos]), Type: Number, Pos: start}, nil
}

func (l *Lexer) scanIdent() (*Token, error) {
	start := l.at()
	from := l.pos
	for l.pos < len(l.runes) {
		r := l.runes[l.pos]
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '$' || r == '-' {
			l.advance()
		} else {
			break
		}
	}
	return &Token{Value: string(l.runes[from:l.pos]), Type: Ident, Pos: start}, nil
}

// Tokenize collects the whole stream. Mainly for tests; the pipeline
// pulls tokens lazily via Next.
func Tokenize(source string) ([]Token, error) {
	l := NewLexer(source)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			return tokens, nil
		}
		tokens = append(tokens, *tok)
	}
}
