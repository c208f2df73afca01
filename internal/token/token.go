// Package token hands out integer tokens that stand in for Go values when the
// native side needs to identify a receiver in a callback. Native code only
// ever sees the integer; the value stays on the Go side.
package token

import (
	"sync"
	"sync/atomic"
)

const numShards = 64

// Token identifies one registered value. Zero is never issued.
type Token uintptr

type shard[T any] struct {
	mu     sync.RWMutex
	values map[Token]T
}

// Table is a sharded token table. The zero value is not usable; use New.
type Table[T any] struct {
	shards [numShards]shard[T]
	next   atomic.Uintptr
	live   atomic.Int64
}

// New returns an empty table whose first token is 1.
func New[T any]() *Table[T] {
	t := &Table[T]{}
	for i := range t.shards {
		t.shards[i].values = make(map[Token]T)
	}
	t.next.Store(1)
	return t
}

func (t *Table[T]) shard(tok Token) *shard[T] {
	return &t.shards[uintptr(tok)%numShards]
}

// Register stores v and returns its token.
func (t *Table[T]) Register(v T) Token {
	tok := Token(t.next.Add(1) - 1)
	s := t.shard(tok)
	s.mu.Lock()
	s.values[tok] = v
	s.mu.Unlock()
	t.live.Add(1)
	return tok
}

// Lookup returns the value for tok, or false if tok is zero or unknown.
func (t *Table[T]) Lookup(tok Token) (T, bool) {
	if tok == 0 {
		var zero T
		return zero, false
	}
	s := t.shard(tok)
	s.mu.RLock()
	v, ok := s.values[tok]
	s.mu.RUnlock()
	return v, ok
}

// Release removes tok from the table and returns the value it held.
func (t *Table[T]) Release(tok Token) (T, bool) {
	if tok == 0 {
		var zero T
		return zero, false
	}
	s := t.shard(tok)
	s.mu.Lock()
	v, ok := s.values[tok]
	delete(s.values, tok)
	s.mu.Unlock()
	if ok {
		t.live.Add(-1)
	}
	return v, ok
}

// Len reports how many tokens are currently registered.
func (t *Table[T]) Len() int {
	return int(t.live.Load())
}
