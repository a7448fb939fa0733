package cache

import "strings"

// funcKeywords are the item keywords the lightweight scanner treats as
// introducing a function/type definition worth hashing independently.
var funcKeywords = []string{"F ", "S ", "E ", "U ", "T ", "I "}

// ScanDefinitions extracts a rough FunctionMetadata list from source by
// looking for the language's function/struct/enum keywords at the start
// of a line and walking brace balance to find each definition's extent,
// without a full parse. This is deliberately approximate — it exists only
// to let the cache hash sub-file spans; the compiler's own parser is the
// source of truth for actual semantics.
func ScanDefinitions(source string) []FunctionMetadata {
	var defs []FunctionMetadata
	lines := strings.Split(source, "\n")
	offset := 0
	lineOffsets := make([]int, len(lines))
	for i, l := range lines {
		lineOffsets[i] = offset
		offset += len(l) + 1
	}

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		kw, ok := matchKeyword(trimmed)
		if !ok {
			continue
		}
		name := extractName(trimmed[len(kw):])
		if name == "" {
			continue
		}
		start := lineOffsets[i] + (len(line) - len(trimmed))
		end := extentEnd(source, start)
		defs = append(defs, FunctionMetadata{
			Name: name,
			Hash: HashBytes([]byte(source[start:end])),
		})
	}
	return defs
}

func matchKeyword(s string) (string, bool) {
	for _, kw := range funcKeywords {
		if strings.HasPrefix(s, kw) {
			return kw, true
		}
	}
	return "", false
}

func extractName(s string) string {
	i := 0
	for i < len(s) && isIdentRune(s[i]) {
		i++
	}
	return s[:i]
}

func isIdentRune(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// extentEnd walks brace balance from start to find the end of the
// definition: the index just past the matching closing brace of the
// first `{` encountered, or the end of the line if no brace appears
// (a signature-only or single-expression definition).
func extentEnd(source string, start int) int {
	depth := 0
	seenBrace := false
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '{':
			depth++
			seenBrace = true
		case '}':
			depth--
			if seenBrace && depth == 0 {
				return i + 1
			}
		case '\n':
			if !seenBrace {
				return i
			}
		}
	}
	return len(source)
}
