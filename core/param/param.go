// Package param implements the shared parameter universe (C2) and the
// immutable parameterized-SQL value (C3) that every emitter in the
// compiler composes.
package param

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Param is one bound value, optionally tagged with a backend-specific
// column type (used by dialects that need an explicit cast hint).
type Param struct {
	Name   string
	Value  interface{}
	DBType string
}

// Collection is an append-only, concurrency-safe store of parameters with
// monotonically increasing names "p0", "p1", ... It backs one compile:
// every emitter (main statement, count, joins, aggregates) shares a
// Collection so the driver binds a single, non-overlapping parameter set.
type Collection struct {
	prefix string
	next   int32
	mu     sync.Mutex
	byIdx  map[int32]Param
}

// NewCollection creates an empty collection. prefix is the dialect's
// parameter prefix (e.g. "@").
func NewCollection(prefix string) *Collection {
	return &Collection{prefix: prefix, byIdx: make(map[int32]Param)}
}

// AddOne records value and returns its generated reference, e.g. "@p0".
func (c *Collection) AddOne(value interface{}, dbType ...string) string {
	idx := atomic.AddInt32(&c.next, 1) - 1
	dt := ""
	if len(dbType) > 0 {
		dt = dbType[0]
	}
	name := fmt.Sprintf("%sp%d", c.prefix, idx)
	c.mu.Lock()
	c.byIdx[idx] = Param{Name: name, Value: value, DBType: dt}
	c.mu.Unlock()
	return name
}

// AddMany records every value in values and returns a comma-joined,
// parenthesizable reference list suitable for IN/NOT IN clauses.
func (c *Collection) AddMany(values []interface{}, dbType ...string) string {
	names := make([]string, len(values))
	for i, v := range values {
		names[i] = c.AddOne(v, dbType...)
	}
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// Len reports how many parameters have been recorded so far.
func (c *Collection) Len() int {
	return int(atomic.LoadInt32(&c.next))
}

// Params returns every recorded parameter in insertion (index) order.
func (c *Collection) Params() []Param {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int(atomic.LoadInt32(&c.next))
	out := make([]Param, n)
	for i := 0; i < n; i++ {
		out[i] = c.byIdx[int32(i)]
	}
	return out
}
