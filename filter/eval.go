package filter

import (
	"sort"

	"github.com/glennpierce/go-haystack/zinc"
)

// RefTag is one entity with its tags: the dataset unit the evaluator
// consumes (spec.md §3.3). The key is a zinc.Ref token; tag ids are
// expected unique within one entity.
type RefTag struct {
	Ref  zinc.Token
	Tags zinc.Tags
}

// RefTags is the ordered entity/tag dataset the evaluator runs against.
type RefTags []RefTag

// route is one (id, next_ref?) pair at a single layer of path resolution
// (spec.md §4.5.1's "Route"), plus the raw tag value backing it so a
// Compare can test the terminal leaf without a second dataset scan.
type route struct {
	id      zinc.Token
	val     zinc.Token
	next    zinc.Token
	hasNext bool
}

func buildLayers(dataset RefTags, tagNames []zinc.Token) [][]route {
	n := len(tagNames)
	layers := make([][]route, n)
	for i := 0; i < n; i++ {
		name := tagNames[i].IDVal()
		var layer []route
		for _, e := range dataset {
			tag, ok := e.Tags.Get(name)
			if !ok {
				continue
			}
			r := route{id: e.Ref}
			if v, ok := tag.ValueToken(); ok {
				r.val = v
				if i < n-1 && v.IsRef() {
					r.next = v
					r.hasNext = true
				}
			}
			layer = append(layer, r)
		}
		layers[i] = layer
	}
	return layers
}

func filterLayer(layer []route, keep func(route) bool) []route {
	var out []route
	for _, r := range layer {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func idsOf(layer []route) map[string]bool {
	m := make(map[string]bool, len(layer))
	for _, r := range layer {
		m[r.id.Key()] = true
	}
	return m
}

func refsPointedToBy(layer []route) map[string]bool {
	m := make(map[string]bool)
	for _, r := range layer {
		if r.hasNext {
			m[r.next.Key()] = true
		}
	}
	return m
}

// resolvePath runs the layered-routes algorithm of spec.md §4.5.1: build
// each tag's layer, optionally filter the terminal layer by predicate
// (the Compare case), then prune every earlier layer from the terminal
// layer backward so that a route surviving at layer 0 is guaranteed to
// reach an entity that satisfies the whole chain.
//
// Spec.md describes this as three passes (forward prune during
// construction, a terminal prune, then a backward
// traverse_up_routes_removing_paths sweep). Those collapse here into one
// right-to-left sweep run after the terminal filter: trimming an earlier
// layer against the already-fully-resolved next layer is a strict
// refinement of trimming it against that layer's raw, unpruned form, so
// the two produce identical survivors while only the single sweep is
// needed to compute them.
func resolvePath(dataset RefTags, tagNames []zinc.Token, predicate func(zinc.Token) bool) []route {
	layers := buildLayers(dataset, tagNames)
	n := len(layers)

	if predicate != nil {
		layers[n-1] = filterLayer(layers[n-1], func(r route) bool { return predicate(r.val) })
	}

	for i := n - 1; i >= 1; i-- {
		refSet := refsPointedToBy(layers[i-1])
		layers[i] = filterLayer(layers[i], func(r route) bool { return refSet[r.id.Key()] })
		survivorIDs := idsOf(layers[i])
		layers[i-1] = filterLayer(layers[i-1], func(r route) bool {
			return r.hasNext && survivorIDs[r.next.Key()]
		})
	}

	return layers[0]
}

func routesToRefs(layer []route) []zinc.Token {
	out := make([]zinc.Token, len(layer))
	for i, r := range layer {
		out[i] = r.id
	}
	return out
}

func sortedUniqueRefs(refs []zinc.Token) []zinc.Token {
	seen := make(map[string]bool, len(refs))
	var out []zinc.Token
	for _, r := range refs {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

func complement(dataset RefTags, refs []zinc.Token) []zinc.Token {
	excluded := make(map[string]bool, len(refs))
	for _, r := range refs {
		excluded[r.Key()] = true
	}
	var out []zinc.Token
	for _, e := range dataset {
		if !excluded[e.Ref.Key()] {
			out = append(out, e.Ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

func intersectRefs(a, b []zinc.Token) []zinc.Token {
	bset := make(map[string]bool, len(b))
	for _, t := range b {
		bset[t.Key()] = true
	}
	var out []zinc.Token
	for _, t := range a {
		if bset[t.Key()] {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

func unionRefs(a, b []zinc.Token) []zinc.Token {
	return sortedUniqueRefs(append(append([]zinc.Token{}, a...), b...))
}

// swapOperator returns the operator to apply with operands reversed, so
// that `literal op pathValue` can be evaluated as `pathValue swapOperator(op) literal`
// (spec.md §9's symmetric-comparison resolution: "swap operands and apply
// the same route-resolution and leaf-filter logic").
func swapOperator(op Operation) Operation {
	switch op {
	case OpLessThan:
		return OpMoreThan
	case OpLessThanEquals:
		return OpMoreThanEquals
	case OpMoreThan:
		return OpLessThan
	case OpMoreThanEquals:
		return OpLessThanEquals
	default:
		return op
	}
}

func comparePredicate(op Operation, literal zinc.Token) func(zinc.Token) bool {
	return func(v zinc.Token) bool {
		// A comparison between mismatched value kinds never matches
		// (spec.md §8: "number == string: empty result, not an error").
		if v.Kind() != literal.Kind() {
			return false
		}
		c := v.Compare(literal)
		switch op {
		case OpEquals:
			return c == 0
		case OpNotEquals:
			return c != 0
		case OpLessThan:
			return c < 0
		case OpLessThanEquals:
			return c <= 0
		case OpMoreThan:
			return c > 0
		case OpMoreThanEquals:
			return c >= 0
		default:
			return false
		}
	}
}

type stackKind int

const (
	svToken stackKind = iota
	svRefs
)

type stackValue struct {
	kind     stackKind
	tok      zinc.Token
	refs     []zinc.Token
	pathTags []zinc.Token // set only when refs came straight from a Path token
}

// EvaluateRefs runs an RPN token sequence against dataset and returns the
// matching reference set in canonical (Token-ordered) order (spec.md
// §4.5). It is the direct implementation of the stack machine in
// spec.md §4.5's semantic rules 1-6.
func EvaluateRefs(rpn []FilterToken, dataset RefTags) ([]zinc.Token, error) {
	var stack []stackValue

	pop := func() (stackValue, error) {
		if len(stack) == 0 {
			return stackValue{}, evalErrf("stack is empty, this is impossible")
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for _, tok := range rpn {
		switch tok.Kind() {
		case KindVal:
			stack = append(stack, stackValue{kind: svToken, tok: tok.Val()})

		case KindPath:
			path := tok.Path()
			survivors := resolvePath(dataset, path, nil)
			stack = append(stack, stackValue{
				kind:     svRefs,
				refs:     sortedUniqueRefs(routesToRefs(survivors)),
				pathTags: path,
			})

		case KindUnary:
			x, err := pop()
			if err != nil {
				return nil, err
			}
			if x.kind != svRefs {
				return nil, evalErrf("unary %s requires a reference-set operand", tok.Op())
			}
			switch tok.Op() {
			case OpNot:
				stack = append(stack, stackValue{kind: svRefs, refs: complement(dataset, x.refs)})
			default:
				return nil, evalErrf("unimplemented unary operation: %s", tok.Op())
			}

		case KindBinary:
			right, err := pop()
			if err != nil {
				return nil, err
			}
			left, err := pop()
			if err != nil {
				return nil, err
			}

			switch tok.Op() {
			case OpAnd, OpOr:
				if left.kind != svRefs || right.kind != svRefs {
					return nil, evalErrf("%s requires two reference-set operands", tok.Op())
				}
				var refs []zinc.Token
				if tok.Op() == OpAnd {
					refs = intersectRefs(left.refs, right.refs)
				} else {
					refs = unionRefs(left.refs, right.refs)
				}
				stack = append(stack, stackValue{kind: svRefs, refs: refs})

			default: // comparison operators
				refs, err := evalCompare(dataset, left, right, tok.Op())
				if err != nil {
					return nil, err
				}
				stack = append(stack, stackValue{kind: svRefs, refs: refs})
			}
		}
	}

	result, err := pop()
	if err != nil {
		return nil, err
	}
	if len(stack) != 0 {
		return nil, evalErrf("there are still %d items on the stack", len(stack))
	}
	if result.kind != svRefs {
		return nil, evalErrf("expression did not evaluate to a reference set")
	}
	return result.refs, nil
}

// evalCompare implements spec.md §4.5 rule 3: a comparison whose left or
// right operand is a Path's result re-resolves that path with the
// comparison folded into the terminal-layer filter, rather than
// comparing the already-flattened reference set (which carries no
// per-route leaf value). spec.md §9's open question is resolved here:
// a literal on the left is handled by swapping the operator and
// resolving the path on the right exactly as if it had been on the left.
func evalCompare(dataset RefTags, left, right stackValue, op Operation) ([]zinc.Token, error) {
	switch {
	case left.pathTags != nil && right.kind == svToken:
		survivors := resolvePath(dataset, left.pathTags, comparePredicate(op, right.tok))
		return sortedUniqueRefs(routesToRefs(survivors)), nil
	case right.pathTags != nil && left.kind == svToken:
		survivors := resolvePath(dataset, right.pathTags, comparePredicate(swapOperator(op), left.tok))
		return sortedUniqueRefs(routesToRefs(survivors)), nil
	default:
		return nil, evalErrf("unsupported operand types for %s", op)
	}
}

// Eval tokenizes, converts to RPN, and evaluates expr against dataset in
// one call, returning the matching subset of dataset in its original
// order (spec.md §4.5's stated evaluator output contract).
func Eval(expr string, dataset RefTags) (RefTags, error) {
	tokens, err := Tokenize(expr)
	if err != nil {
		return nil, err
	}
	rpn, err := ToRPN(tokens)
	if err != nil {
		return nil, err
	}
	refs, err := EvaluateRefs(rpn, dataset)
	if err != nil {
		return nil, err
	}
	matched := make(map[string]bool, len(refs))
	for _, r := range refs {
		matched[r.Key()] = true
	}
	var out RefTags
	for _, e := range dataset {
		if matched[e.Ref.Key()] {
			out = append(out, e)
		}
	}
	return out, nil
}
