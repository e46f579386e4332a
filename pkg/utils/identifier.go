package utils

import "strings"

// QuoteIdentifier wraps each part of a (possibly qualified) T-SQL identifier in
// square brackets, escaping closing brackets inside a part.
//
// Examples:
//   - "Tests" -> "[Tests]"
//   - "tSQLt.RunAll" -> "[tSQLt].[RunAll]"
//   - "[Tests].test" -> "[Tests].[test]"
//   - "odd]name" -> "[odd]]name]"
//   - "" -> ""
func QuoteIdentifier(name string) string {
	if name == "" {
		return ""
	}

	parts := SplitIdentifier(name)
	for i, part := range parts {
		parts[i] = "[" + strings.ReplaceAll(part, "]", "]]") + "]"
	}

	return strings.Join(parts, ".")
}

// SplitIdentifier splits a qualified identifier on dots that are not enclosed in
// brackets or double quotes and unquotes each part.
//
// Examples:
//   - "tSQLt.NewTestClass" -> ["tSQLt", "NewTestClass"]
//   - "[My.Class].[test it]" -> ["My.Class", "test it"]
//   - `"a""b".c` -> [`a"b`, "c"]
func SplitIdentifier(name string) []string {
	var (
		parts   []string
		current strings.Builder
		closer  rune
	)

	runes := []rune(name)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case closer != 0 && r == closer:
			// A doubled closer is an escaped literal.
			if i+1 < len(runes) && runes[i+1] == closer {
				current.WriteRune(r)
				current.WriteRune(r)
				i++
				continue
			}
			current.WriteRune(r)
			closer = 0
		case closer != 0:
			current.WriteRune(r)
		case r == '[':
			closer = ']'
			current.WriteRune(r)
		case r == '"':
			closer = '"'
			current.WriteRune(r)
		case r == '.':
			parts = append(parts, UnquoteIdentifier(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}

	return append(parts, UnquoteIdentifier(current.String()))
}

// UnquoteIdentifier removes bracket or double-quote delimiters from a single
// identifier part, collapsing escaped delimiters.
//
// Examples:
//   - "[Tests]" -> "Tests"
//   - "[a]]b]" -> "a]b"
//   - `"a""b"` -> `a"b`
//   - "plain" -> "plain"
func UnquoteIdentifier(s string) string {
	if len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']' {
		return strings.ReplaceAll(s[1:len(s)-1], "]]", "]")
	}

	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
	}

	return s
}

// QuoteString renders s as a Unicode T-SQL string literal.
//
// Examples:
//   - "MyTests" -> "N'MyTests'"
//   - "it's" -> "N'it''s'"
func QuoteString(s string) string {
	return "N'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// UnquoteString strips the quotes (and optional N prefix) from a T-SQL string
// literal, collapsing doubled single quotes. Values that are not literals are
// returned unchanged.
//
// Examples:
//   - "'MyTests'" -> "MyTests"
//   - "N'it''s'" -> "it's"
func UnquoteString(s string) string {
	if len(s) >= 3 && (s[0] == 'N' || s[0] == 'n') && s[1] == '\'' {
		s = s[1:]
	}

	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return strings.ReplaceAll(s[1:len(s)-1], "''", "'")
	}

	return s
}
