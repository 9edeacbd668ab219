package stack

// Simple is a LIFO stack of arbitrary items.
type Simple[T any] []T

func (s *Simple[T]) Push(i T) {
	*s = append(*s, i)
}

// Pop removes the top n items (1 if n is omitted).
func (s *Simple[T]) Pop(n ...int) {
	nn := 1
	if len(n) > 0 {
		nn = n[0]
	}
	stackPop(s, nn)
}

// PopTop removes and returns the top item.
func (s *Simple[T]) PopTop() (T, bool) {
	var zero T
	l := s.Len()
	if l == 0 {
		return zero, false
	}
	item := (*s)[l-1]
	(*s)[l-1] = zero
	*s = (*s)[:l-1]
	return item, true
}

func (s *Simple[T]) Realloc() {
	*s = append(Simple[T](nil), *s...)
}

func (s *Simple[T]) PopLast() {
	if s.Len() <= 0 {
		return
	}
	var zero T
	(*s)[s.Len()-1] = zero
	*s = (*s)[:s.Len()-1]
}

// Top returns the most recently pushed item without removing it.
func (s Simple[T]) Top() (T, bool) {
	var zero T
	if l := s.Len(); l > 0 {
		return s[l-1], true
	}
	return zero, false
}

func (s Simple[T]) Peek(n int) []T {
	if l := s.Len(); l > n {
		return s[l-n : l]
	}
	return s
}

func (s Simple[T]) Len() int {
	return len(s)
}

func (s Simple[T]) Cap() int {
	return cap(s)
}
