package releases

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is returned for versions that cannot be compared.
var ErrInvalidVersion = errors.New("releases: invalid version")

// NormalizeMajor strips a leading "v" and returns the major component, so
// "v4.1.0" becomes "4".
func NormalizeMajor(version string) string {
	version = strings.TrimPrefix(version, "v")
	major, _, _ := strings.Cut(version, ".")
	return major
}

// IsOutdated reports whether an action pinned at current lags latest. Numeric
// majors are compared as integers; anything else is outdated when the tags
// differ. An unknown latest is never outdated.
func IsOutdated(current, latest string) bool {
	if latest == "" {
		return false
	}
	c, cerr := strconv.Atoi(NormalizeMajor(current))
	l, lerr := strconv.Atoi(NormalizeMajor(latest))
	if cerr != nil || lerr != nil {
		return current != latest
	}
	return c < l
}

// NormalizeRelease reduces a release string to at most major.minor.patch,
// padding to major.minor and dropping prefixes and pre-release or build
// suffixes: "v1.2.3-rc1" becomes "1.2.3", "5" becomes "5.0".
func NormalizeRelease(version string) string {
	version = strings.TrimLeft(version, "v")
	version, _, _ = strings.Cut(version, "-")
	version, _, _ = strings.Cut(version, "+")
	parts := strings.Split(version, ".")
	for len(parts) < 2 {
		parts = append(parts, "0")
	}
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return strings.Join(parts, ".")
}

func canonical(version string) (string, error) {
	v := "v" + NormalizeRelease(strings.TrimSpace(version))
	if !semver.IsValid(v) {
		return "", fmt.Errorf("%w: %q", ErrInvalidVersion, version)
	}
	return semver.Canonical(v), nil
}

// CompareReleases compares two release strings after NormalizeRelease,
// returning -1, 0 or 1.
func CompareReleases(a, b string) (int, error) {
	ca, err := canonical(a)
	if err != nil {
		return 0, err
	}
	cb, err := canonical(b)
	if err != nil {
		return 0, err
	}
	return semver.Compare(ca, cb), nil
}

// DocumentedVersion returns the highest version matched by pattern in a
// guide, case-insensitively. The first capture group is the version when the
// pattern has one. Unparseable matches are ignored; "0.0.0" is returned when
// nothing matches.
func DocumentedVersion(source []byte, pattern string) (string, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return "", fmt.Errorf("releases: version pattern %q: %w", pattern, err)
	}

	best, bestCanon := "0.0.0", ""
	for _, m := range re.FindAllSubmatch(source, -1) {
		value := string(m[0])
		if len(m) > 1 {
			value = string(m[1])
		}
		if value == "" {
			continue
		}
		canon, err := canonical(value)
		if err != nil {
			continue
		}
		if bestCanon == "" || semver.Compare(canon, bestCanon) > 0 {
			best, bestCanon = value, canon
		}
	}
	return best, nil
}
