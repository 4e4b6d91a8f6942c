package domain

import "github.com/skizo-lang/skizo/internal/metadata"

// Source is one parsed compilation unit. Scanning/parsing rules are an
// external collaborator (spec: "tokens and AST shapes are defined, but
// scanning rules are not"), so a Domain never parses text itself — it
// consumes whatever a Parser hands back: a flat list of already-built
// classes plus the names the unit wants imported, which get enqueued in
// turn (§4.8 "import`s append to queue").
type Source struct {
	Name    string
	Classes []*metadata.Class
	Imports []string
}
