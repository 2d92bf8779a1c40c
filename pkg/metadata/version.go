package metadata

import (
	"strings"

	"golang.org/x/mod/semver"
)

// pickVersion chooses which of the locked versions a requirement resolved
// to: the highest locked version compatible with req, else the highest
// locked version. It returns "" when locked is empty.
func pickVersion(req string, locked []string) string {
	want := canonical(firstComparator(req))
	best, bestCompatible := "", false
	for _, v := range locked {
		cv := canonical(v)
		if cv == "" {
			continue
		}
		ok := want != "" && compatible(want, cv)
		switch {
		case best == "":
		case ok && !bestCompatible:
		case ok == bestCompatible && semver.Compare(cv, canonical(best)) > 0:
		default:
			continue
		}
		best, bestCompatible = v, ok
	}
	return best
}

// compatible applies cargo's caret rule: the left-most non-zero component
// must match.
func compatible(req, v string) bool {
	switch {
	case semver.Major(req) != "v0":
		return semver.Major(req) == semver.Major(v)
	case semver.MajorMinor(req) != "v0.0":
		return semver.MajorMinor(req) == semver.MajorMinor(v)
	default:
		return semver.Compare(req, v) == 0
	}
}

func firstComparator(req string) string {
	req, _, _ = strings.Cut(req, ",")
	return strings.TrimLeft(strings.TrimSpace(req), "^~=>< ")
}

// canonical converts a cargo version ("1.2", "1.0.0-rc.1") to canonical
// semver ("v1.2.0"), or "" when it is not a version.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.ContainsAny(v, "*xX") {
		return ""
	}
	return semver.Canonical("v" + v)
}
