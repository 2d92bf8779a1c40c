// Package report holds the result of a minimization run.
//
// A [Report] maps each analyzed package to the dependencies that had at
// least one removable feature. It is written as report.json and read back by
// the prune pass and by analyze --resume:
//
//	r, err := report.Load(report.Path(dir))
//	if errors.Is(err, errors.ErrCodeReportVersionMismatch) {
//	    // written by an incompatible version; rerun analyze
//	}
//
// The JSON field names (root_name, workspace_crates, full_path,
// successfully_removed_features, ...) are part of the file format.
package report
