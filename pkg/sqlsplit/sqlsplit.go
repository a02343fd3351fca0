// Package sqlsplit splits free-form SQL text into individually
// executable statements. Splitting is syntax-aware: a semicolon inside
// a string literal, a quoted identifier, a comment, or a PostgreSQL
// dollar-quoted body is never treated as a statement separator.
package sqlsplit

import "strings"

// scanner walks SQL input byte by byte, tracking quoting state.
type scanner struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
}

func newScanner(input string) *scanner {
	s := &scanner{input: input}
	s.readChar()
	return s
}

// readChar advances to the next character.
func (s *scanner) readChar() {
	if s.readPos >= len(s.input) {
		s.ch = 0 // ASCII NUL = EOF
	} else {
		s.ch = s.input[s.readPos]
	}
	s.pos = s.readPos
	s.readPos++
}

// peekChar returns the next character without advancing.
func (s *scanner) peekChar() byte {
	if s.readPos >= len(s.input) {
		return 0
	}
	return s.input[s.readPos]
}

// Split breaks sql into statements in submission order. Trailing
// semicolons are stripped and segments that contain only whitespace or
// comments are dropped. All three family quoting forms are recognized:
// single-quoted strings (with '' and backslash escapes), double-quoted
// and backtick-quoted identifiers, line and block comments, and
// dollar-quoted strings.
func Split(sql string) []string {
	s := newScanner(sql)

	var statements []string
	var current strings.Builder
	sawToken := false

	flush := func() {
		stmt := strings.TrimSpace(current.String())
		stmt = strings.TrimSuffix(stmt, ";")
		stmt = strings.TrimSpace(stmt)
		if sawToken && stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
		sawToken = false
	}

	for s.ch != 0 {
		switch {
		case s.ch == ';':
			current.WriteByte(s.ch)
			s.readChar()
			flush()
		case s.ch == '\'':
			sawToken = true
			s.consumeQuoted(&current, '\'', true)
		case s.ch == '"':
			sawToken = true
			s.consumeQuoted(&current, '"', false)
		case s.ch == '`':
			sawToken = true
			s.consumeQuoted(&current, '`', false)
		case s.ch == '-' && s.peekChar() == '-':
			s.consumeLineComment(&current)
		case s.ch == '#':
			s.consumeLineComment(&current)
		case s.ch == '/' && s.peekChar() == '*':
			s.consumeBlockComment(&current)
		case s.ch == '$':
			if tag, ok := s.peekDollarTag(); ok {
				sawToken = true
				s.consumeDollarQuoted(&current, tag)
			} else {
				sawToken = true
				current.WriteByte(s.ch)
				s.readChar()
			}
		default:
			if !isSpace(s.ch) {
				sawToken = true
			}
			current.WriteByte(s.ch)
			s.readChar()
		}
	}
	flush()

	return statements
}

// consumeQuoted copies a quoted region including both delimiters.
// Doubled delimiters stay inside the region; backslash escapes are
// honored only inside string literals (MySQL).
func (s *scanner) consumeQuoted(out *strings.Builder, quote byte, allowBackslash bool) {
	out.WriteByte(s.ch) // opening quote
	s.readChar()
	for s.ch != 0 {
		if allowBackslash && s.ch == '\\' && s.peekChar() != 0 {
			out.WriteByte(s.ch)
			s.readChar()
			out.WriteByte(s.ch)
			s.readChar()
			continue
		}
		if s.ch == quote {
			if s.peekChar() == quote {
				// doubled delimiter, still inside
				out.WriteByte(s.ch)
				s.readChar()
				out.WriteByte(s.ch)
				s.readChar()
				continue
			}
			out.WriteByte(s.ch) // closing quote
			s.readChar()
			return
		}
		out.WriteByte(s.ch)
		s.readChar()
	}
}

// consumeLineComment copies up to (not including) the newline.
func (s *scanner) consumeLineComment(out *strings.Builder) {
	for s.ch != 0 && s.ch != '\n' {
		out.WriteByte(s.ch)
		s.readChar()
	}
}

// consumeBlockComment copies a /* */ region, honoring nesting as
// PostgreSQL does.
func (s *scanner) consumeBlockComment(out *strings.Builder) {
	depth := 0
	for s.ch != 0 {
		if s.ch == '/' && s.peekChar() == '*' {
			depth++
			out.WriteByte(s.ch)
			s.readChar()
			out.WriteByte(s.ch)
			s.readChar()
			continue
		}
		if s.ch == '*' && s.peekChar() == '/' {
			depth--
			out.WriteByte(s.ch)
			s.readChar()
			out.WriteByte(s.ch)
			s.readChar()
			if depth == 0 {
				return
			}
			continue
		}
		out.WriteByte(s.ch)
		s.readChar()
	}
}

// peekDollarTag checks whether the current position starts a
// dollar-quote delimiter ($$ or $tag$) and returns the full delimiter.
func (s *scanner) peekDollarTag() (string, bool) {
	end := s.pos + 1
	for end < len(s.input) {
		c := s.input[end]
		if c == '$' {
			return s.input[s.pos : end+1], true
		}
		if !isTagChar(c) {
			return "", false
		}
		end++
	}
	return "", false
}

// consumeDollarQuoted copies a dollar-quoted region including both
// delimiters.
func (s *scanner) consumeDollarQuoted(out *strings.Builder, tag string) {
	out.WriteString(tag)
	for i := 0; i < len(tag); i++ {
		s.readChar()
	}
	for s.ch != 0 {
		if s.ch == '$' && strings.HasPrefix(s.input[s.pos:], tag) {
			out.WriteString(tag)
			for i := 0; i < len(tag); i++ {
				s.readChar()
			}
			return
		}
		out.WriteByte(s.ch)
		s.readChar()
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isTagChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// LeadingKeyword returns the first SQL keyword of a statement,
// uppercased, skipping leading comments and parentheses. Used to
// classify whether a statement returns rows.
func LeadingKeyword(stmt string) string {
	s := newScanner(stmt)
	for s.ch != 0 {
		switch {
		case s.ch == '-' && s.peekChar() == '-':
			for s.ch != 0 && s.ch != '\n' {
				s.readChar()
			}
		case s.ch == '/' && s.peekChar() == '*':
			var discard strings.Builder
			s.consumeBlockComment(&discard)
		case isSpace(s.ch) || s.ch == '(':
			s.readChar()
		default:
			start := s.pos
			for s.ch != 0 && isWordChar(s.ch) {
				s.readChar()
			}
			return strings.ToUpper(stmt[start:s.pos])
		}
	}
	return ""
}

func isWordChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// ContainsKeyword reports whether stmt contains keyword as a bare word
// outside string literals, quoted identifiers, and comments. Matching
// is case-insensitive. Used to detect clauses such as RETURNING that
// change a statement's result shape.
func ContainsKeyword(stmt, keyword string) bool {
	s := newScanner(stmt)
	var discard strings.Builder
	upper := strings.ToUpper(keyword)
	for s.ch != 0 {
		switch {
		case s.ch == '\'':
			s.consumeQuoted(&discard, '\'', true)
		case s.ch == '"':
			s.consumeQuoted(&discard, '"', false)
		case s.ch == '`':
			s.consumeQuoted(&discard, '`', false)
		case s.ch == '-' && s.peekChar() == '-':
			s.consumeLineComment(&discard)
		case s.ch == '#':
			s.consumeLineComment(&discard)
		case s.ch == '/' && s.peekChar() == '*':
			s.consumeBlockComment(&discard)
		case s.ch == '$':
			if tag, ok := s.peekDollarTag(); ok {
				s.consumeDollarQuoted(&discard, tag)
			} else {
				s.readChar()
			}
		case isWordChar(s.ch):
			start := s.pos
			for s.ch != 0 && isWordChar(s.ch) {
				s.readChar()
			}
			if strings.ToUpper(stmt[start:s.pos]) == upper {
				return true
			}
		default:
			s.readChar()
		}
	}
	return false
}
