package sdata

import (
	"strings"

	"github.com/gobuffalo/flect"
)

// Column describes one physical column and its GraphQL-facing identity.
type Column struct {
	DBName         string
	GraphQLName    string
	NormalizedName string
	DataType       string
	IsPrimaryKey   bool
	IsNullable     bool
	Meta           map[string]string
}

// NewColumn builds a Column, deriving NormalizedName from DBName per the
// rule relation auto-discovery relies on: "id" stays "id"; a name ending
// in "id" normalizes to the singular form of its prefix; anything else is
// left unchanged.
func NewColumn(dbName, graphqlName, dataType string, isPrimaryKey, isNullable bool) Column {
	if graphqlName == "" {
		graphqlName = dbName
	}
	return Column{
		DBName:         dbName,
		GraphQLName:    graphqlName,
		NormalizedName: normalizedName(dbName),
		DataType:       dataType,
		IsPrimaryKey:   isPrimaryKey,
		IsNullable:     isNullable,
	}
}

func normalizedName(name string) string {
	lower := strings.ToLower(name)
	if lower == "id" {
		return "id"
	}
	if strings.HasSuffix(lower, "id") && len(name) > 2 {
		prefix := strings.TrimRight(name[:len(name)-2], "_-")
		if prefix == "" {
			return name
		}
		return flect.Singularize(prefix)
	}
	return name
}
