package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/standardbeagle/bifrostql/core/adapter"
)

type queryFieldDoc struct {
	Name            string                 `json:"name"`
	Alias           string                 `json:"alias"`
	Arguments       map[string]interface{} `json:"arguments"`
	Fields          []queryFieldDoc        `json:"fields"`
	FragmentSpreads []string               `json:"fragmentSpreads"`
}

func (d queryFieldDoc) toQueryField() *adapter.QueryField {
	f := &adapter.QueryField{
		Name:            d.Name,
		Alias:           d.Alias,
		Arguments:       d.Arguments,
		FragmentSpreads: d.FragmentSpreads,
	}
	for _, sub := range d.Fields {
		f.Fields = append(f.Fields, sub.toQueryField())
	}
	return f
}

type fragmentDoc struct {
	Fields []queryFieldDoc `json:"fields"`
}

type requestDoc struct {
	RequestType string                 `json:"requestType"`
	Table       string                 `json:"table"`
	Operation   queryFieldDoc          `json:"operation"`
	Fragments   map[string]fragmentDoc `json:"fragments"`
}

// loadRequest reads a JSON-encoded request document from path: a
// QueryField tree, its fragment definitions, the target table's name, and
// the RequestType it represents.
func loadRequest(path string) (*adapter.QueryField, map[string]*adapter.FragmentDef, string, adapter.RequestType, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, "", 0, fmt.Errorf("reading query file: %w", err)
	}
	var doc requestDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, "", 0, fmt.Errorf("parsing query file: %w", err)
	}

	field := doc.Operation.toQueryField()

	fragments := make(map[string]*adapter.FragmentDef, len(doc.Fragments))
	for name, fd := range doc.Fragments {
		def := &adapter.FragmentDef{Name: name}
		for _, sub := range fd.Fields {
			def.Fields = append(def.Fields, sub.toQueryField())
		}
		fragments[name] = def
	}

	reqType := adapter.Query
	switch doc.RequestType {
	case "mutation":
		reqType = adapter.Mutation
	case "subscription":
		reqType = adapter.Subscription
	}

	return field, fragments, doc.Table, reqType, nil
}
