package sqlguard

import "strings"

// StripLiterals returns the SQL with comments blanked and string literals
// replaced by empty '' placeholders, so keyword scanning never fires on
// quoted text and comments cannot smuggle statement fragments. Handles --
// and # line comments, /* */ block comments, single and double quotes with
// doubled-quote and backslash escapes, and backtick identifiers.
func StripLiterals(sql string) string {
	var out strings.Builder
	out.Grow(len(sql))
	i, n := 0, len(sql)

	for i < n {
		switch {
		case i+1 < n && sql[i] == '-' && sql[i+1] == '-':
			for i < n && sql[i] != '\n' {
				i++
			}
			out.WriteByte(' ')

		case sql[i] == '#':
			for i < n && sql[i] != '\n' {
				i++
			}
			out.WriteByte(' ')

		case i+1 < n && sql[i] == '/' && sql[i+1] == '*':
			i += 2
			for i+1 < n && !(sql[i] == '*' && sql[i+1] == '/') {
				i++
			}
			// An unterminated block comment swallows the rest.
			if i+1 < n {
				i += 2
			} else {
				i = n
			}
			out.WriteByte(' ')

		case sql[i] == '\'':
			i = skipQuoted(sql, i, '\'')
			out.WriteString("''")

		case sql[i] == '"':
			i = skipQuoted(sql, i, '"')
			out.WriteString(`""`)

		case sql[i] == '`':
			i = skipQuoted(sql, i, '`')
			out.WriteString("``")

		default:
			out.WriteByte(sql[i])
			i++
		}
	}
	return out.String()
}

// skipQuoted advances past a quoted region starting at sql[start] and
// returns the index after the closing quote. Doubled quotes and backslash
// escapes stay inside the region.
func skipQuoted(sql string, start int, quote byte) int {
	i, n := start+1, len(sql)
	for i < n {
		switch sql[i] {
		case quote:
			if i+1 < n && sql[i+1] == quote {
				i += 2
				continue
			}
			return i + 1
		case '\\':
			if quote != '`' && i+1 < n {
				i += 2
				continue
			}
			i++
		default:
			i++
		}
	}
	return n
}
