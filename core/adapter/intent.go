package adapter

// QueryIntent is the canonical cross-process shape a parsed request is
// reduced to: table/alias identity, the flat argument bag a resolver
// needs (filter, sort, limit, offset, _primaryKey, ...), the ordered list
// of scalar field names, and the nested join subtree. FromQueryField and
// ToQueryField are exact inverses on the subset of QueryField shapes the
// adapter recognizes: a leaf sub-field (no nested selection) becomes a
// Fields entry, anything else becomes a Joins entry, and within a level
// every Fields entry precedes every Joins entry.
type QueryIntent struct {
	RequestType RequestType
	Table       string
	Alias       string
	Arguments   map[string]interface{}
	Fields      []string
	Joins       []QueryIntent
}

// FromQueryField reduces f to its QueryIntent. callers run ExpandFragments
// over f first; FromQueryField itself does not resolve fragment spreads.
func FromQueryField(f *QueryField, reqType RequestType) QueryIntent {
	qi := QueryIntent{
		RequestType: reqType,
		Table:       f.Name,
		Alias:       f.Alias,
		Arguments:   f.Arguments,
	}
	for _, sub := range f.Fields {
		if len(sub.Fields) == 0 {
			qi.Fields = append(qi.Fields, sub.Name)
			continue
		}
		qi.Joins = append(qi.Joins, FromQueryField(sub, reqType))
	}
	return qi
}

// ToQueryField reconstructs the QueryField tree FromQueryField derived qi
// from. Scalars are emitted before joins, matching FromQueryField's
// traversal order.
func ToQueryField(qi QueryIntent) *QueryField {
	f := &QueryField{Name: qi.Table, Alias: qi.Alias, Arguments: qi.Arguments}
	for _, name := range qi.Fields {
		f.Fields = append(f.Fields, &QueryField{Name: name})
	}
	for _, join := range qi.Joins {
		f.Fields = append(f.Fields, ToQueryField(join))
	}
	return f
}
