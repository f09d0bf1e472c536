package executor

import "strings"

// splitStatements cuts script at top-level semicolons. Semicolons inside
// quoted strings, quoted identifiers, dollar-quoted bodies and comments do
// not end a statement. Comments ahead of a statement are not part of it;
// pieces holding nothing but whitespace and comments are dropped.
func splitStatements(script string) []string {
	var (
		stmts []string
		start int
		code  bool
	)
	begin := func(i int) {
		if !code {
			start, code = i, true
		}
	}
	emit := func(end int) {
		if code {
			stmts = append(stmts, strings.TrimSpace(script[start:end]))
		}
		code = false
	}

	for i := 0; i < len(script); i++ {
		c := script[i]
		switch {
		case c == ';':
			emit(i)
		case c == '-' && strings.HasPrefix(script[i:], "--"):
			i = skipPast(script, i+2, "\n") - 1
		case c == '/' && strings.HasPrefix(script[i:], "/*"):
			i = skipPast(script, i+2, "*/") - 1
		case c == '\'' || c == '"' || c == '`':
			begin(i)
			i = skipQuoted(script, i+1, c) - 1
		case c == '$':
			begin(i)
			if tag, ok := dollarTag(script[i:]); ok {
				i = skipPast(script, i+len(tag), tag) - 1
			}
		case c != ' ' && c != '\t' && c != '\n' && c != '\r':
			begin(i)
		}
	}
	emit(len(script))
	return stmts
}

// skipPast returns the index just after the first end at or after from, or
// len(s) when end never appears.
func skipPast(s string, from int, end string) int {
	if n := strings.Index(s[from:], end); n >= 0 {
		return from + n + len(end)
	}
	return len(s)
}

// skipQuoted returns the index just after the closing quote. A doubled
// quote is an escaped quote.
func skipQuoted(s string, from int, q byte) int {
	for i := from; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		if i+1 < len(s) && s[i+1] == q {
			i++
			continue
		}
		return i + 1
	}
	return len(s)
}

// dollarTag reports the opening tag of a postgres dollar-quoted string
// ($$ or $name$) at the start of s. Positional parameters like $1 are not
// tags.
func dollarTag(s string) (string, bool) {
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '$':
			return s[:i+1], true
		case c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 1:
		default:
			return "", false
		}
	}
	return "", false
}
