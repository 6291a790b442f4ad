package kernel

// node is the intrusive doubly-linked list link embedded by every table
// entry that needs to live on more than one queue at once (a process on its
// parent's children list, a PCB on a zombie list, a Request on a listener's
// backlog, a PTCB on its process's thread list). It mirrors the reference
// kernel's rlnode: no separate allocation, push/pop/append/length/empty all
// operate directly on the embedded links.
type node struct {
	prev, next *node
	owner      interface{}
}

// list is an intrusive, circular, sentinel-headed doubly-linked list.
// The zero value is not ready for use; call initList first.
type list struct {
	head node
}

func initList(l *list) {
	l.head.next = &l.head
	l.head.prev = &l.head
}

func initNode(n *node, owner interface{}) {
	n.owner = owner
	n.prev = nil
	n.next = nil
}

func (l *list) empty() bool {
	return l.head.next == &l.head
}

func (l *list) len() int {
	n := 0
	for cur := l.head.next; cur != &l.head; cur = cur.next {
		n++
	}
	return n
}

// pushFront links n as the new first element.
func (l *list) pushFront(n *node) {
	n.next = l.head.next
	n.prev = &l.head
	l.head.next.prev = n
	l.head.next = n
}

// pushBack links n as the new last element.
func (l *list) pushBack(n *node) {
	n.prev = l.head.prev
	n.next = &l.head
	l.head.prev.next = n
	l.head.prev = n
}

// popFront unlinks and returns the first element, or nil if empty.
func (l *list) popFront() *node {
	if l.empty() {
		return nil
	}
	n := l.head.next
	l.remove(n)
	return n
}

// front returns the first element without unlinking it, or nil if empty.
func (l *list) front() *node {
	if l.empty() {
		return nil
	}
	return l.head.next
}

// remove unlinks n from whatever list it is currently on. Safe to call on an
// already-detached node (next/prev nil): it becomes a no-op.
func (l *list) remove(n *node) {
	unlink(n)
}

// unlink is remove's list-independent core: a node knows how to detach
// itself, so callers that only have the node (not the list it happens to be
// on right now, e.g. a zombie PCB's children_node/exited_node during
// cleanup) can unlink it without needing a *list receiver at all.
func unlink(n *node) {
	if n.next == nil || n.prev == nil {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = nil
	n.prev = nil
}

// appendList moves every element of src onto the back of l, leaving src
// empty. Used when reparenting a dying process's zombie children onto init.
func (l *list) appendList(src *list) {
	if src.empty() {
		return
	}
	first := src.head.next
	last := src.head.prev

	last.next = &l.head
	first.prev = l.head.prev
	l.head.prev.next = first
	l.head.prev = last

	initList(src)
}
