// Package filter implements the Haystack filter expression language: a
// tokenizer (C3), a shunting-yard converter to reverse Polish notation
// (C4), and a stack-based evaluator (C5) that runs the RPN against an
// in-memory entity/tag dataset, including reference-chain path traversal
// with dead-end pruning.
package filter

import "github.com/glennpierce/go-haystack/zinc"

// Operation enumerates the filter language's logical and comparison
// operators (spec.md §3.4). Path traversal via "->" is never a standalone
// operator: it is always folded directly into a Path token by the
// tokenizer.
type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
	OpEquals
	OpNotEquals
	OpLessThan
	OpLessThanEquals
	OpMoreThan
	OpMoreThanEquals
)

func (op Operation) String() string {
	switch op {
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	case OpEquals:
		return "=="
	case OpNotEquals:
		return "!="
	case OpLessThan:
		return "<"
	case OpLessThanEquals:
		return "<="
	case OpMoreThan:
		return ">"
	case OpMoreThanEquals:
		return ">="
	default:
		return "?"
	}
}

// TokenKind selects which alternative of FilterToken is populated.
type TokenKind int

const (
	KindVal TokenKind = iota
	KindPath
	KindBinary
	KindUnary
	KindLParen
	KindRParen
)

// FilterToken is the filter AST's token type (spec.md §3.4). This package
// targets the canonical, non-pre-folded emission style noted in spec.md
// §9: a Compare expression is a separate Path; Val; Binary(op) triple
// rather than one Compare node, since that composes more directly with
// the shunting-yard.
type FilterToken struct {
	kind TokenKind
	val  zinc.Token
	path []zinc.Token // non-empty, each of zinc.KindID
	op   Operation
}

func NewValToken(t zinc.Token) FilterToken { return FilterToken{kind: KindVal, val: t} }

func NewPathToken(ids []zinc.Token) FilterToken { return FilterToken{kind: KindPath, path: ids} }

func NewBinaryToken(op Operation) FilterToken { return FilterToken{kind: KindBinary, op: op} }

func NewUnaryToken(op Operation) FilterToken { return FilterToken{kind: KindUnary, op: op} }

var LParenToken = FilterToken{kind: KindLParen}
var RParenToken = FilterToken{kind: KindRParen}

func (t FilterToken) Kind() TokenKind { return t.kind }
func (t FilterToken) Val() zinc.Token { return t.val }
func (t FilterToken) Path() []zinc.Token { return t.path }
func (t FilterToken) Op() Operation    { return t.op }
