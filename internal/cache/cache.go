// Package cache implements a plan cache in front of the compiler: an LRU
// of compiled statement maps keyed by a structural hash of the request
// shape. Caching is scoped to filter-free requests (pure projection,
// joins, sort, and pagination): those compiles are 100% parameter-free
// SQL text, so the cached map can be replayed verbatim across requests
// with no risk of leaking one caller's bound values into another's
// result. Any request carrying a filter or a _primaryKey is never cached,
// since its compiled statements embed literal parameter values that must
// never survive past the request that produced them; a request carrying an
// aggregate argument is never cached either, since that argument is not
// part of the hashed shape. See DESIGN.md for the full rationale.
package cache

import (
	"github.com/mitchellh/hashstructure/v2"

	lru "github.com/hashicorp/golang-lru"

	"github.com/standardbeagle/bifrostql/core/adapter"
	"github.com/standardbeagle/bifrostql/core/param"
)

// Key identifies one cached plan.
type Key uint64

// PlanCache is an LRU of compiled statement maps.
type PlanCache struct {
	lru *lru.Cache
}

// NewPlanCache creates a cache holding at most size plans.
func NewPlanCache(size int) (*PlanCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &PlanCache{lru: l}, nil
}

// KeyFor derives key from intent's shape. ok is false when intent carries
// a filter, _primaryKey, or aggregate argument at any level of the tree —
// such requests are never cacheable.
func KeyFor(intent adapter.QueryIntent) (key Key, ok bool) {
	shape, cacheable := shapeOf(intent)
	if !cacheable {
		return 0, false
	}
	h, err := hashstructure.Hash(shape, hashstructure.FormatV2, nil)
	if err != nil {
		return 0, false
	}
	return Key(h), true
}

// queryShape is the subset of a QueryIntent that fully determines its
// compiled SQL text when no filter is present: table identity, the
// requested fields, pagination, and the join subtree.
type queryShape struct {
	Table  string
	Alias  string
	Sort   interface{}
	Limit  interface{}
	Offset interface{}
	Fields []string
	Joins  []queryShape
}

func shapeOf(intent adapter.QueryIntent) (queryShape, bool) {
	if _, bound := intent.Arguments["filter"]; bound {
		return queryShape{}, false
	}
	if _, bound := intent.Arguments["_primaryKey"]; bound {
		return queryShape{}, false
	}
	if _, bound := intent.Arguments["aggregate"]; bound {
		return queryShape{}, false
	}

	shape := queryShape{
		Table:  intent.Table,
		Alias:  intent.Alias,
		Sort:   intent.Arguments["sort"],
		Limit:  intent.Arguments["limit"],
		Offset: intent.Arguments["offset"],
		Fields: intent.Fields,
	}
	for _, j := range intent.Joins {
		childShape, ok := shapeOf(j)
		if !ok {
			return queryShape{}, false
		}
		shape.Joins = append(shape.Joins, childShape)
	}
	return shape, true
}

// Get returns a copy of the statement map cached under key, if present.
func (c *PlanCache) Get(key Key) (map[string]param.Sql, bool) {
	v, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	cached := v.(map[string]param.Sql)
	out := make(map[string]param.Sql, len(cached))
	for k, v := range cached {
		out[k] = v
	}
	return out, true
}

// Add stores sqls under key, evicting the least recently used entry if
// the cache is at capacity.
func (c *PlanCache) Add(key Key, sqls map[string]param.Sql) {
	stored := make(map[string]param.Sql, len(sqls))
	for k, v := range sqls {
		stored[k] = v
	}
	c.lru.Add(key, stored)
}

// Len reports how many plans are currently cached.
func (c *PlanCache) Len() int {
	return c.lru.Len()
}
