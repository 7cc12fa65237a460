package recipe

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites recipe source into something zygomys reads:
//
//   - :keyword becomes the string "__kw_keyword", so keywords never clash
//     with user variables of the same name.
//   - kebab-case identifiers become snake_case (zygomys reads a hyphen
//     as subtraction).
//   - ; line comments become // comments.
//
// String literals (double-quoted and backtick) pass through untouched.
func preprocessSource(source string) string {
	s := scanner{src: []byte(source)}
	s.out = make([]byte, 0, len(source)+len(source)/4)
	for !s.done() {
		c := s.peek(0)
		switch {
		case c == '"':
			s.quoted('"', true)
		case c == '`':
			s.quoted('`', false)
		case c == ';':
			s.comment()
		case c == ':' && s.peek(1) == '=':
			s.copy(2)
		case c == ':' && isLetter(s.peek(1)):
			s.keyword()
		case c == '-' && s.pos > 0 && isIdentChar(s.src[s.pos-1]) && isLetter(s.peek(1)):
			s.out = append(s.out, '_')
			s.pos++
		default:
			s.copy(1)
		}
	}
	return string(s.out)
}

type scanner struct {
	src []byte
	out []byte
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

// peek returns the byte at pos+off, or 0 past the end.
func (s *scanner) peek(off int) byte {
	if s.pos+off < len(s.src) {
		return s.src[s.pos+off]
	}
	return 0
}

func (s *scanner) copy(n int) {
	end := min(s.pos+n, len(s.src))
	s.out = append(s.out, s.src[s.pos:end]...)
	s.pos = end
}

func (s *scanner) quoted(q byte, escapes bool) {
	s.copy(1)
	for !s.done() && s.peek(0) != q {
		if escapes && s.peek(0) == '\\' {
			s.copy(2)
			continue
		}
		s.copy(1)
	}
	s.copy(1)
}

func (s *scanner) comment() {
	s.out = append(s.out, '/', '/')
	for !s.done() && s.peek(0) == ';' {
		s.pos++
	}
	for !s.done() && s.peek(0) != '\n' {
		s.copy(1)
	}
}

func (s *scanner) keyword() {
	start := s.pos + 1
	end := start
	for end < len(s.src) && isKWChar(s.src[end]) {
		end++
	}
	s.out = append(s.out, '"')
	s.out = append(s.out, kwPrefix...)
	s.out = append(s.out, s.src[start:end]...)
	s.out = append(s.out, '"')
	s.pos = end
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}
