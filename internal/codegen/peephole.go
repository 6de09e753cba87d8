package codegen

import "strings"

// peephole runs a two-line sliding window over the assembled output,
// dropping a "push rax" immediately followed by a matching "pop rax"
// and any "mov rax, rax", while leaving labels and comments untouched.
//
// Grounded on original_source/src/compiler/x86_64_linux.py's peephole
// pass, which exists because the straightforward per-node lowering
// above routinely emits exactly these redundant pairs (e.g. a BIN_OP
// whose LHS turned out not to need saving).
func peephole(asm string) string {
	lines := strings.Split(asm, "\n")
	var out []string

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if trimmed == "mov rax, rax" {
			continue
		}

		if trimmed == "push rax" && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "pop rax" {
			i++ // also skip the matching pop
			continue
		}

		out = append(out, line)
	}

	return strings.Join(out, "\n")
}
