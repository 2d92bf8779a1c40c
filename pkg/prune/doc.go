// Package prune applies a minimization report to the manifests it names.
//
// Each recorded dependency is rewritten with default-features = false and
// the features the analysis found required. Nothing is rebuilt, so the
// report is trusted as is.
package prune
