package zinc

import "strings"

// ValKind selects which alternative of Val is populated.
type ValKind int

const (
	ValKindToken ValKind = iota
	ValKindList
	ValKindDict
	ValKindGrid
)

// Val is a cell value: a closed sum type over {scalar Token, List, Dict,
// nested Grid}. The source this library is modeled on used an open,
// runtime-typed holder (a trait object with a downcast); spec.md §9 calls
// for the closed reimplementation here instead, so a Val can only ever be
// one of these four shapes and callers switch on Kind() rather than
// downcasting.
type Val struct {
	kind ValKind
	tok  Token
	list List
	dict Dict
	grid *Grid
}

func NewTokenVal(t Token) Val  { return Val{kind: ValKindToken, tok: t} }
func NewListVal(l List) Val    { return Val{kind: ValKindList, list: l} }
func NewDictVal(d Dict) Val    { return Val{kind: ValKindDict, dict: d} }
func NewGridVal(g *Grid) Val   { return Val{kind: ValKindGrid, grid: g} }

func (v Val) Kind() ValKind { return v.kind }

func (v Val) Token() (Token, bool) {
	if v.kind != ValKindToken {
		return Token{}, false
	}
	return v.tok, true
}

func (v Val) List() (List, bool) {
	if v.kind != ValKindList {
		return nil, false
	}
	return v.list, true
}

func (v Val) Dict() (Dict, bool) {
	if v.kind != ValKindDict {
		return Dict{}, false
	}
	return v.dict, true
}

func (v Val) Grid() (*Grid, bool) {
	if v.kind != ValKindGrid {
		return nil, false
	}
	return v.grid, true
}

func (v Val) ToZinc() string {
	switch v.kind {
	case ValKindToken:
		return v.tok.ToZinc()
	case ValKindList:
		return v.list.ToZinc()
	case ValKindDict:
		return "{" + v.dict.ToZinc() + "}"
	case ValKindGrid:
		return "<<" + v.grid.ToZinc() + ">>"
	default:
		return ""
	}
}

// ToJSON is a placeholder hook for a JSON rendering (spec.md §1's
// explicitly out-of-scope JSON encoding); it always returns "", mirroring
// every to_json implementation in the original source.
func (v Val) ToJSON() string { return "" }

// List is an ordered sequence of Val (spec.md §3.2).
type List []Val

func (l List) ToZinc() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = v.ToZinc()
	}
	return "[" + strings.Join(parts, ",") + "]"
}
