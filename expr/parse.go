package expr

import (
	"fmt"
	"strings"

	"github.com/lestrrat-go/declari"
)

// Parse compiles variable expressions. Variables refer to the template
// data: $user.name becomes $this->data['user']['name']. The words and,
// or and not stand for the matching logical operators. An expression
// of the form $var = value is an assignment. Everything else is copied
// to the output unchanged.
type Parse struct{}

var _ declari.ExpressionEngine = Parse{}

func NewParse() Parse {
	return Parse{}
}

func (Parse) SetCompiler(*declari.Compiler) {}

func (Parse) Dispose() {}

func (Parse) Parse(expr string) (declari.CompiledExpression, error) {
	if strings.TrimSpace(expr) == "" {
		return declari.CompiledExpression{}, ErrEmptyExpression
	}

	s := scanner{src: []rune(expr)}
	code, assignment, err := s.translate()
	if err != nil {
		return declari.CompiledExpression{}, fmt.Errorf("'%s' at offset %d: %w", expr, s.pos, err)
	}
	if assignment {
		return declari.CompiledExpression{Bare: code, Escaped: code, Kind: declari.ExprAssignment}, nil
	}
	return declari.CompiledExpression{
		Bare:    code,
		Escaped: "htmlspecialchars(" + code + ")",
		Kind:    declari.ExprDefault,
	}, nil
}

var keywords = map[string]string{
	"and": "&&",
	"or":  "||",
	"not": "!",
}

type scanner struct {
	src []rune
	pos int
	out strings.Builder
	// tokens written so far, and whether the only one is a variable
	tokens    int
	lastIsVar bool
}

func (s *scanner) peek(n int) rune {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scanner) emit(tok string, variable bool) {
	s.out.WriteString(tok)
	s.tokens++
	s.lastIsVar = variable
}

func isIdentStart(r rune) bool {
	return r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

func isIdent(r rune) bool {
	return isIdentStart(r) || r >= '0' && r <= '9'
}

func (s *scanner) ident() string {
	start := s.pos
	for s.pos < len(s.src) && isIdent(s.src[s.pos]) {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

func (s *scanner) translate() (string, bool, error) {
	assignment := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.out.WriteRune(c)
			s.pos++
		case c == '\'' || c == '"':
			if err := s.quoted(c); err != nil {
				return "", false, err
			}
		case c == '$':
			if err := s.variable(); err != nil {
				return "", false, err
			}
		case isIdentStart(c):
			word := s.ident()
			if op, ok := keywords[strings.ToLower(word)]; ok {
				word = op
			}
			s.emit(word, false)
		case c >= '0' && c <= '9':
			start := s.pos
			for s.pos < len(s.src) && (isIdent(s.src[s.pos]) || s.src[s.pos] == '.') {
				s.pos++
			}
			s.emit(string(s.src[start:s.pos]), false)
		case c == '=' && s.peek(1) != '=':
			if assignment || s.tokens != 1 || !s.lastIsVar {
				return "", false, ErrInvalidAssignment
			}
			assignment = true
			s.pos++
			s.emit("=", false)
		case c == '=' || c == '!' || c == '<' || c == '>':
			n := 1
			for s.peek(n) == '=' && n < 3 {
				n++
			}
			s.emit(string(s.src[s.pos:s.pos+n]), false)
			s.pos += n
		case strings.ContainsRune("+-*/%.,()[]&|?:", c):
			s.emit(string(c), false)
			s.pos++
		default:
			return "", false, fmt.Errorf("'%c': %w", c, ErrUnexpectedCharacter)
		}
	}
	return s.out.String(), assignment, nil
}

func (s *scanner) quoted(q rune) error {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos += 2
			continue
		case q:
			s.pos++
			s.emit(string(s.src[start:s.pos]), false)
			return nil
		}
		s.pos++
	}
	s.pos = start
	return ErrUnterminatedString
}

func (s *scanner) variable() error {
	s.pos++
	if !isIdentStart(s.peek(0)) {
		return ErrInvalidVariable
	}
	var sb strings.Builder
	sb.WriteString("$this->data['" + s.ident() + "']")
	for s.peek(0) == '.' && isIdentStart(s.peek(1)) {
		s.pos++
		sb.WriteString("['" + s.ident() + "']")
	}
	s.emit(sb.String(), true)
	return nil
}
