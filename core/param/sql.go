package param

// Sql is an immutable (text, parameters) pair. Every composing operation
// returns a new value so that the same Filter or Select can be lowered
// into more than one statement without risking shared-state mutation.
type Sql struct {
	Text   string
	Params []Param
}

// Empty is the module-level sentinel: empty text, no parameters.
var Empty = Sql{}

// New builds a Sql value. A nil text pointer is never valid; callers pass
// a Go string, so the only invalid construction is an unintended zero
// value, which New makes explicit at the call site.
func New(text string, params []Param) Sql {
	return Sql{Text: text, Params: params}
}

// Append concatenates s with literal text, returning a new value.
func (s Sql) Append(text string) Sql {
	return Sql{Text: s.Text + text, Params: s.Params}
}

// AppendSql concatenates s with other, merging both their text and their
// parameter lists in order.
func (s Sql) AppendSql(other Sql) Sql {
	params := make([]Param, 0, len(s.Params)+len(other.Params))
	params = append(params, s.Params...)
	params = append(params, other.Params...)
	return Sql{Text: s.Text + other.Text, Params: params}
}

// Prepend returns a new value with text placed before s's text.
func (s Sql) Prepend(text string) Sql {
	return Sql{Text: text + s.Text, Params: s.Params}
}
