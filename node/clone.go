package node

type clonePair struct {
	dst Container
	src Node
}

// Clone returns a copy of n that shares no links with the original.
// Containers are copied deeply: every descendant is cloned and attached
// to the clone of its parent. The copy is built breadth-first with an
// explicit work queue, so deep trees do not grow the call stack.
func Clone(n Node) Node {
	if n == nil {
		return nil
	}

	root := n.cloneShallow()
	src, ok := n.(Container)
	if !ok {
		return root
	}

	var queue []clonePair
	for e := src.FirstChild(); e != nil; e = e.NextSibling() {
		queue = append(queue, clonePair{dst: root.(Container), src: e})
	}

	for head := 0; head < len(queue); head++ {
		item := queue[head]
		queue[head] = clonePair{}

		cloned := item.src.cloneShallow()
		linkLast(item.dst, cloned)

		if sc, ok := item.src.(Container); ok {
			dst := cloned.(Container)
			for e := sc.FirstChild(); e != nil; e = e.NextSibling() {
				queue = append(queue, clonePair{dst: dst, src: e})
			}
		}
	}
	return root
}

// Dispose tears a subtree down: n is unmounted from its parent, then the
// links of every former descendant are cleared breadth-first, so no node
// keeps a reference into the tree even if someone still holds a handle
// to it.
func Dispose(n Node) {
	if n == nil {
		return
	}
	_ = Unmount(n)

	var everything []Node
	queue := []Node{n}
	for head := 0; head < len(queue); head++ {
		item := queue[head]
		if c, ok := item.(Container); ok {
			for e := c.FirstChild(); e != nil; e = e.NextSibling() {
				queue = append(queue, e)
			}
		}
		everything = append(everything, item)
	}

	for _, item := range everything {
		item.getTreeNode().unlink()
		switch v := item.(type) {
		case Container:
			v.getContainer().reset()
			if e, ok := v.(*Element); ok {
				e.disposeAttributes()
			}
			if d, ok := v.(*Document); ok {
				d.extras = nil
			}
		}
	}
}
