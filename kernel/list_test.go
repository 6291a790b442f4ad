package kernel

import "testing"

type listItem struct {
	n   node
	tag int
}

func TestListPushPopOrder(t *testing.T) {
	var l list
	initList(&l)

	a := &listItem{tag: 1}
	b := &listItem{tag: 2}
	c := &listItem{tag: 3}
	initNode(&a.n, a)
	initNode(&b.n, b)
	initNode(&c.n, c)

	l.pushBack(&a.n)
	l.pushBack(&b.n)
	l.pushFront(&c.n)

	if l.len() != 3 {
		t.Fatalf("len = %d, want 3", l.len())
	}

	got := []int{}
	for n := l.popFront(); n != nil; n = l.popFront() {
		got = append(got, n.owner.(*listItem).tag)
	}
	want := []int{3, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if !l.empty() {
		t.Fatalf("list should be empty after draining")
	}
}

func TestListRemoveDetachedIsNoop(t *testing.T) {
	var l list
	initList(&l)

	a := &listItem{tag: 1}
	initNode(&a.n, a)
	l.remove(&a.n) // never linked; must not panic
	if !l.empty() {
		t.Fatalf("list should still be empty")
	}

	l.pushBack(&a.n)
	l.remove(&a.n)
	l.remove(&a.n) // double remove; must not panic
	if !l.empty() {
		t.Fatalf("list should be empty after remove")
	}
}

func TestAppendList(t *testing.T) {
	var dst, src list
	initList(&dst)
	initList(&src)

	a := &listItem{tag: 1}
	b := &listItem{tag: 2}
	initNode(&a.n, a)
	initNode(&b.n, b)
	dst.pushBack(&a.n)
	src.pushBack(&b.n)

	dst.appendList(&src)

	if !src.empty() {
		t.Fatalf("src should be empty after appendList")
	}
	if dst.len() != 2 {
		t.Fatalf("dst.len() = %d, want 2", dst.len())
	}

	tags := []int{}
	for n := dst.popFront(); n != nil; n = dst.popFront() {
		tags = append(tags, n.owner.(*listItem).tag)
	}
	if tags[0] != 1 || tags[1] != 2 {
		t.Fatalf("got %v, want [1 2]", tags)
	}
}
