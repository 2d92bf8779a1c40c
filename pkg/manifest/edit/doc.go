// Package edit rewrites dependency declarations in a Cargo.toml without
// disturbing anything else in the file.
//
// Only the [dependencies] table and its [dependencies.<name>] sub-tables are
// ever changed. Comments, ordering, quoting and whitespace elsewhere survive
// byte for byte, and [Document.Restore] returns the dependency tables to
// their parsed text. Every edit is checked by re-parsing the result with
// go-toml, so a bad rewrite is rejected before it can reach disk.
package edit
