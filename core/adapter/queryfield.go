// Package adapter implements RequestAdapter (C7): lowering the generic
// QueryField tree an AST visit produces into the qcode.ObjectQuery plan
// the rest of the compiler runs on, and the reversible QueryIntent
// transport DTO used to carry a parsed request across a process
// boundary.
package adapter

import (
	"fmt"

	"github.com/standardbeagle/bifrostql/core/compileerr"
)

// RequestType distinguishes the three GraphQL operation kinds a QueryField
// tree can represent. Subscription is compiled identically to Query: this
// compiler produces one-shot SQL and leaves push delivery to the caller.
type RequestType int

const (
	Query RequestType = iota
	Mutation
	Subscription
)

func (t RequestType) String() string {
	switch t {
	case Mutation:
		return "mutation"
	case Subscription:
		return "subscription"
	default:
		return "query"
	}
}

// QueryField is the generic shape an AST visit hands the adapter: a name,
// an optional alias, a flat argument bag, nested sub-selections, and any
// fragment spreads named at this level (before expansion).
type QueryField struct {
	Name            string
	Alias           string
	Arguments       map[string]interface{}
	Fields          []*QueryField
	FragmentSpreads []string
}

// FragmentDef is a named, reusable selection set ("fragment OrderFields on
// Order { id total }").
type FragmentDef struct {
	Name   string
	Fields []*QueryField
}

// ExpandFragments inlines every fragment spread reachable from root,
// in place, replacing each spread with the named fragment's fields at
// that position. A fragment spread cycle is rejected rather than looping
// forever, since GraphQL forbids recursive fragments.
func ExpandFragments(root *QueryField, defs map[string]*FragmentDef) error {
	return expandField(root, defs, map[string]bool{})
}

func expandField(f *QueryField, defs map[string]*FragmentDef, active map[string]bool) error {
	for _, spread := range f.FragmentSpreads {
		if active[spread] {
			return compileerr.New(compileerr.InvalidArgument, "cyclic fragment spread: %s", spread)
		}
		def, ok := defs[spread]
		if !ok {
			return compileerr.New(compileerr.InvalidArgument, "unknown fragment: %s", spread)
		}
		active[spread] = true
		for _, ff := range def.Fields {
			cp := cloneField(ff)
			if err := expandField(cp, defs, active); err != nil {
				return err
			}
			f.Fields = append(f.Fields, cp)
		}
		active[spread] = false
	}
	f.FragmentSpreads = nil

	for _, sub := range f.Fields {
		if err := expandField(sub, defs, active); err != nil {
			return fmt.Errorf("%s.%s: %w", f.Name, sub.Name, err)
		}
	}
	return nil
}

func cloneField(f *QueryField) *QueryField {
	cp := &QueryField{Name: f.Name, Alias: f.Alias}
	if f.Arguments != nil {
		cp.Arguments = make(map[string]interface{}, len(f.Arguments))
		for k, v := range f.Arguments {
			cp.Arguments[k] = v
		}
	}
	if len(f.FragmentSpreads) > 0 {
		cp.FragmentSpreads = append([]string(nil), f.FragmentSpreads...)
	}
	for _, sub := range f.Fields {
		cp.Fields = append(cp.Fields, cloneField(sub))
	}
	return cp
}
