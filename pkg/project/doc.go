// Package project discovers the packages an analysis covers.
//
// A root manifest with a [package] table is analyzed itself. Its
// [workspace] members, glob patterns included, are added after it unless
// they match an exclude entry:
//
//	p, err := project.Load(".")
//	for _, path := range p.Members() {
//	    // path is an absolute Cargo.toml path
//	}
package project
