package codegen

// floatSetMnemonic maps a relational/equality BIN_OP operator to the
// SSE2 byte-set instruction used after a ucomisd comparison.
var floatSetMnemonic = map[string]string{
	"EQ": "sete",
	"NE": "setne",
	"LT": "setb",
	"LE": "setbe",
	"GT": "seta",
	"GE": "setae",
}

// arithAssignOp maps a compound-assignment operator token to the plain
// arithmetic operator it performs before storing back.
var arithAssignOp = map[string]string{
	"PLUS_ASSIGN":  "PLUS",
	"MINUS_ASSIGN": "MINUS",
	"MULT_ASSIGN":  "ASTERISK",
	"DIV_ASSIGN":   "SLASH",
	"MOD_ASSIGN":   "MOD",
}

func isRelational(op string) bool {
	switch op {
	case "EQ", "NE", "LT", "LE", "GT", "GE":
		return true
	}
	return false
}
