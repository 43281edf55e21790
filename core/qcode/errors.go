package qcode

import "github.com/standardbeagle/bifrostql/core/compileerr"

func schemaLookupErr(kind, name, table string) error {
	return compileerr.New(compileerr.SchemaLookup, "unknown %s %q on table %q", kind, name, table)
}

func executionErr(format string, args ...interface{}) error {
	return compileerr.New(compileerr.ExecutionError, format, args...)
}

func notSupportedErr(format string, args ...interface{}) error {
	return compileerr.New(compileerr.NotSupported, format, args...)
}
