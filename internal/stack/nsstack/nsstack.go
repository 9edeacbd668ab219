package nsstack

import "github.com/lestrrat-go/declari/internal/stack"

type Item struct {
	prefix string
	href   string
}

func (i Item) Prefix() string {
	return i.prefix
}

func (i Item) URI() string {
	return i.href
}

func (i Item) Key() string {
	return i.prefix
}

// Stack holds in-scope namespace declarations. Unlike stack.Unique it
// allows a prefix to be redeclared by a nested element; the innermost
// declaration wins.
type Stack struct {
	stack.Simple[Item]
}

func New() Stack {
	return Stack{}
}

func (s *Stack) Push(prefix, uri string) {
	s.Simple.Push(Item{prefix: prefix, href: uri})
}

func (s *Stack) Lookup(prefix string) (string, bool) {
	for i := s.Len() - 1; i >= 0; i-- {
		if item := s.Simple[i]; item.prefix == prefix {
			return item.href, true
		}
	}
	return "", false
}
