package stack

type LookupItem interface {
	Key() string
}

// Unique is a stack that refuses to hold two items with the same key.
// Keys are compared from the top of the stack downwards.
type Unique[T LookupItem] []T

func (s *Unique[T]) Push(i T) error {
	if _, ok := s.Lookup(i.Key()); ok {
		return ErrDuplicateItem
	}
	*s = append(*s, i)
	return nil
}

func (s *Unique[T]) Pop(n ...int) {
	nn := 1
	if len(n) > 0 {
		nn = n[0]
	}
	stackPop(s, nn)
}

func (s *Unique[T]) PopTop() (T, bool) {
	var zero T
	l := s.Len()
	if l == 0 {
		return zero, false
	}
	item := (*s)[l-1]
	s.PopLast()
	return item, true
}

func (s *Unique[T]) Realloc() {
	*s = append(Unique[T](nil), *s...)
}

func (s *Unique[T]) PopLast() {
	if s.Len() <= 0 {
		return
	}
	var zero T
	(*s)[s.Len()-1] = zero
	*s = (*s)[:s.Len()-1]
}

func (s Unique[T]) Len() int {
	return len(s)
}

func (s Unique[T]) Cap() int {
	return cap(s)
}

func (s Unique[T]) Lookup(key string) (T, bool) {
	for i := s.Len() - 1; i >= 0; i -= 1 {
		if s[i].Key() == key {
			return s[i], true
		}
	}
	var zero T
	return zero, false
}

// Keys lists the keys from the bottom of the stack to the top, which is
// the order in which the items were pushed.
func (s Unique[T]) Keys() []string {
	keys := make([]string, 0, s.Len())
	for _, item := range s {
		keys = append(keys, item.Key())
	}
	return keys
}

func (s Unique[T]) Peek(n int) []T {
	if l := s.Len(); l > n {
		return s[l-n : l]
	}
	return s
}
