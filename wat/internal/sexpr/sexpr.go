// Package sexpr restores parenthesis structure over the token stream.
// It performs no interpretation of the forms it builds.
package sexpr

import (
	"github.com/echoptic/watc/errors"
	"github.com/echoptic/watc/wat/internal/token"
)

type Kind int

const (
	Atom Kind = iota
	List
)

// Node is one s-expression: an atom wrapping a single token, or a list of
// child nodes mirroring one matched paren pair.
type Node struct {
	Items []*Node
	Tok   token.Token
	Kind  Kind
	Pos   errors.Pos
}

func (n *Node) IsList() bool {
	return n.Kind == List
}

// Head returns the leading atom of a list, or nil if the list is empty or
// starts with a sublist.
func (n *Node) Head() *token.Token {
	if n.Kind != List || len(n.Items) == 0 || n.Items[0].Kind != Atom {
		return nil
	}
	return &n.Items[0].Tok
}

// Build consumes the lexer and produces the single root list. Nesting is
// tracked with an explicit stack of open lists, so input depth never grows
// the host call stack.
func Build(lx *token.Lexer) (*Node, error) {
	var root *Node
	var open []*Node

	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok == nil {
			break
		}

		if root != nil {
			return nil, errors.Parse(tok.Pos, errors.KindUnbalanced,
				"unexpected %s after the module form", tok.Type)
		}

		switch tok.Type {
		case token.LParen:
			open = append(open, &Node{Kind: List, Pos: tok.Pos})

		case token.RParen:
			if len(open) == 0 {
				return nil, errors.Parse(tok.Pos, errors.KindUnbalanced, "unmatched ')'")
			}
			done := open[len(open)-1]
			open = open[:len(open)-1]
			if len(open) == 0 {
				root = done
			} else {
				parent := open[len(open)-1]
				parent.Items = append(parent.Items, done)
			}

		default:
			if len(open) == 0 {
				return nil, errors.Parse(tok.Pos, errors.KindUnbalanced,
					"expected '(', got %s %q", tok.Type, tok.Value)
			}
			parent := open[len(open)-1]
			parent.Items = append(parent.Items, &Node{Kind: Atom, Tok: *tok, Pos: tok.Pos})
		}
	}

	if len(open) > 0 {
		innermost := open[len(open)-1]
		return nil, errors.Parse(innermost.Pos, errors.KindUnexpectedEnd,
			"input ends with %d unclosed form(s); innermost opened here", len(open))
	}
	if root == nil {
		return nil, errors.Parse(errors.Pos{}, errors.KindUnexpectedEnd, "no module form in input")
	}
	return root, nil
}
