package directive

// Op is a comparison operator used by conditional and row styling rules.
type Op string

const (
	OpLT Op = "<"
	OpGT Op = ">"
	OpLE Op = "<="
	OpGE Op = ">="
	OpEQ Op = "=="
	OpNE Op = "!="
)

// parseOp validates a raw operator run. The tokenizer captures the maximal
// run of < > ! = characters; anything that is not exactly one of the six
// operators (=<, ===, a bare =) invalidates the whole clause.
func parseOp(raw string) (Op, bool) {
	switch Op(raw) {
	case OpLT, OpGT, OpLE, OpGE, OpEQ, OpNE:
		return Op(raw), true
	}
	return "", false
}

// Compare evaluates a <op> b over floats.
func (o Op) Compare(a, b float64) bool {
	switch o {
	case OpLT:
		return a < b
	case OpGT:
		return a > b
	case OpLE:
		return a <= b
	case OpGE:
		return a >= b
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	}
	return false
}

// CompareStrings evaluates a <op> b over strings. Ordering operators use
// lexicographic byte order, which sorts digits before uppercase before
// lowercase and compares multi-byte text by encoding order.
func (o Op) CompareStrings(a, b string) bool {
	switch o {
	case OpLT:
		return a < b
	case OpGT:
		return a > b
	case OpLE:
		return a <= b
	case OpGE:
		return a >= b
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	}
	return false
}
