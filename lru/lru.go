// Package lru maintains a cache-wide recency list threaded through the
// LRU_NEXT/LRU_PREV header words of entry blocks. Front is the most
// recently used entry, Back the eviction candidate.
//
// The list never touches REFCOUNT. A cache that treats list membership as a
// durable reference calls Reference before PushFront and Dereference after
// Remove. List is not safe for concurrent use; guard it with the eviction
// lock.
package lru

import "github.com/IvanBrykalov/offheap/entry"

// List is an intrusive doubly linked list of entries.
type List struct {
	es   *entry.Entries
	head entry.Address // MRU
	tail entry.Address // LRU
	len  int
}

// New returns an empty list over entries accessed through es.
func New(es *entry.Entries) *List {
	return &List{es: es}
}

// Len returns the number of entries on the list.
func (l *List) Len() int { return l.len }

// Front returns the most recently used entry, or entry.Nil.
func (l *List) Front() entry.Address { return l.head }

// Back returns the least recently used entry, or entry.Nil.
func (l *List) Back() entry.Address { return l.tail }

// PushFront links a at the MRU end. a must not already be on a list.
func (l *List) PushFront(a entry.Address) {
	l.es.SetLRUPrev(a, entry.Nil)
	l.es.SetLRUNext(a, l.head)
	if l.head != entry.Nil {
		l.es.SetLRUPrev(l.head, a)
	}
	l.head = a
	if l.tail == entry.Nil {
		l.tail = a
	}
	l.len++
}

// MoveToFront marks a as most recently used. a must be on l.
func (l *List) MoveToFront(a entry.Address) {
	if a == l.head {
		return
	}
	l.unlink(a)
	l.len--
	l.PushFront(a)
}

// Remove unlinks a from l and clears its LRU pointers. a must be on l.
func (l *List) Remove(a entry.Address) {
	l.unlink(a)
	l.es.SetLRUNext(a, entry.Nil)
	l.es.SetLRUPrev(a, entry.Nil)
	l.len--
}

// PopBack removes and returns the LRU entry, or entry.Nil when empty.
func (l *List) PopBack() entry.Address {
	a := l.tail
	if a != entry.Nil {
		l.Remove(a)
	}
	return a
}

// Walk calls fn for each entry from MRU to LRU until fn returns false.
// fn must not modify the list.
func (l *List) Walk(fn func(entry.Address) bool) {
	for a := l.head; a != entry.Nil; a = l.es.LRUNext(a) {
		if !fn(a) {
			return
		}
	}
}

func (l *List) unlink(a entry.Address) {
	prev, next := l.es.LRUPrev(a), l.es.LRUNext(a)
	if prev != entry.Nil {
		l.es.SetLRUNext(prev, next)
	} else {
		l.head = next
	}
	if next != entry.Nil {
		l.es.SetLRUPrev(next, prev)
	} else {
		l.tail = prev
	}
}
