package domain

import "fmt"

// SchemaError means a source file has no registered column mapping. The file
// is skipped with a logged reason; the pipeline continues for other files.
type SchemaError struct {
	SourceFile string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("no column mapping registered for file %q", e.SourceFile)
}

// ExpansionError means a jurisdiction reference yielded no parseable tokens.
// Fatal for the row.
type ExpansionError struct {
	SourceFile string
	Ref        string
}

func (e *ExpansionError) Error() string {
	return fmt.Sprintf("jurisdiction reference %q in %s names no jurisdictions", e.Ref, e.SourceFile)
}

// UnknownJurisdictionError means a jurisdiction token matched nothing in the
// authoritative set. Fatal for the row; recorded for manual review.
type UnknownJurisdictionError struct {
	SourceFile string
	Token      string
}

func (e *UnknownJurisdictionError) Error() string {
	return fmt.Sprintf("unknown jurisdiction %q in %s", e.Token, e.SourceFile)
}
