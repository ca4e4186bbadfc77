package filter

type associativity int

const (
	assocLeft associativity = iota
	assocRight
	assocNA
)

// precAssoc returns the operator precedence and associativity for a
// token, per the table in spec.md §4.4. Precedence level 5 is
// deliberately unused, reserved should a level-5 operator ever be added.
func precAssoc(t FilterToken) (int, associativity) {
	switch t.kind {
	case KindBinary:
		switch t.op {
		case OpOr:
			return 1, assocLeft
		case OpAnd:
			return 2, assocLeft
		case OpEquals, OpNotEquals:
			return 3, assocLeft
		case OpLessThan, OpLessThanEquals, OpMoreThan, OpMoreThanEquals:
			return 4, assocLeft
		}
	case KindUnary:
		if t.op == OpNot {
			return 6, assocNA
		}
	}
	return 0, assocNA
}

// ToRPN converts a tokenized infix filter expression to reverse Polish
// notation via Dijkstra's shunting-yard algorithm (spec.md §4.4).
func ToRPN(input []FilterToken) ([]FilterToken, error) {
	output := make([]FilterToken, 0, len(input))
	type stackEntry struct {
		index int
		tok   FilterToken
	}
	var stack []stackEntry

	for index, tok := range input {
		switch tok.kind {
		case KindVal, KindPath:
			output = append(output, tok)
		case KindUnary:
			stack = append(stack, stackEntry{index, tok})
		case KindBinary:
			pa1, assoc1 := precAssoc(tok)
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				pa2, _ := precAssoc(top.tok)
				if (assoc1 == assocLeft && pa1 <= pa2) || (assoc1 == assocRight && pa1 < pa2) {
					output = append(output, top.tok)
					stack = stack[:len(stack)-1]
					continue
				}
				break
			}
			stack = append(stack, stackEntry{index, tok})
		case KindLParen:
			stack = append(stack, stackEntry{index, tok})
		case KindRParen:
			found := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.tok.kind == KindLParen {
					found = true
					break
				}
				output = append(output, top.tok)
			}
			if !found {
				return nil, mismatchedRParenErr(index)
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch top.tok.kind {
		case KindUnary, KindBinary:
			output = append(output, top.tok)
		case KindLParen:
			return nil, mismatchedLParenErr(top.index)
		}
	}

	nOperands := 0
	for index, tok := range output {
		switch tok.kind {
		case KindVal, KindPath:
			nOperands++
		case KindBinary:
			nOperands--
		}
		if nOperands <= 0 {
			return nil, notEnoughOperandsErr(index)
		}
	}
	if nOperands > 1 {
		return nil, tooManyOperandsErr()
	}

	return output, nil
}
