package qcode

import "strings"

// ParseAggregateFunc validates s against the five supported aggregate
// functions, case-insensitively, and returns the canonical token.
func ParseAggregateFunc(s string) (AggregateFunc, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(AggCount):
		return AggCount, nil
	case string(AggSum):
		return AggSum, nil
	case string(AggAvg):
		return AggAvg, nil
	case string(AggMin):
		return AggMin, nil
	case string(AggMax):
		return AggMax, nil
	default:
		return "", notSupportedErr("unsupported aggregate function: %s", s)
	}
}
