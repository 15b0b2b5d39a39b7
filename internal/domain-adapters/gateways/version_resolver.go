package gateways

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// VersionBound is one restriction of a Maven version range, e.g. "[1.0,2.0)"
type VersionBound struct {
	Lower          string // empty means unbounded
	Upper          string // empty means unbounded
	LowerInclusive bool
	UpperInclusive bool
}

// Contains reports whether version lies inside the bound
func (b VersionBound) Contains(version string) bool {
	if b.Lower != "" {
		c := CompareVersions(version, b.Lower)
		if c < 0 || (c == 0 && !b.LowerInclusive) {
			return false
		}
	}
	if b.Upper != "" {
		c := CompareVersions(version, b.Upper)
		if c > 0 || (c == 0 && !b.UpperInclusive) {
			return false
		}
	}
	return true
}

// VersionRange is a union of bounds, e.g. "[1.0,2.0),[3.0,)"
type VersionRange []VersionBound

// Contains reports whether any bound accepts version
func (r VersionRange) Contains(version string) bool {
	for _, b := range r {
		if b.Contains(version) {
			return true
		}
	}
	return false
}

// ParseVersionRange parses Maven range notation: [a,b] [a,b) (a,b] [a,) (,b] [a]
func ParseVersionRange(spec string) (VersionRange, error) {
	s := strings.ReplaceAll(spec, " ", "")
	if s == "" {
		return nil, fmt.Errorf("empty version range")
	}

	var r VersionRange
	for s != "" {
		if s[0] != '[' && s[0] != '(' {
			return nil, fmt.Errorf("invalid version range %q: expected '[' or '('", spec)
		}
		end := strings.IndexAny(s, "])")
		if end < 0 {
			return nil, fmt.Errorf("invalid version range %q: unterminated restriction", spec)
		}

		inner := s[1:end]
		b := VersionBound{LowerInclusive: s[0] == '[', UpperInclusive: s[end] == ']'}
		if lower, upper, ok := strings.Cut(inner, ","); ok {
			b.Lower, b.Upper = lower, upper
		} else {
			if !b.LowerInclusive || !b.UpperInclusive || inner == "" {
				return nil, fmt.Errorf("invalid version range %q: exact version must use [v]", spec)
			}
			b.Lower, b.Upper = inner, inner
		}
		if b.Lower != "" && b.Upper != "" && CompareVersions(b.Lower, b.Upper) > 0 {
			return nil, fmt.Errorf("invalid version range %q: lower bound exceeds upper bound", spec)
		}
		r = append(r, b)

		s = s[end+1:]
		if strings.HasPrefix(s, ",") {
			s = s[1:]
		}
	}
	return r, nil
}

// CompareVersions compares two version strings.
// Returns: 1 if v1 > v2, -1 if v1 < v2, 0 if equal.
// Numeric segments compare numerically; a release sorts after any qualified build of the same number.
func CompareVersions(v1, v2 string) int {
	num1, qual1 := splitVersion(v1)
	num2, qual2 := splitVersion(v2)

	maxLen := len(num1)
	if len(num2) > maxLen {
		maxLen = len(num2)
	}
	for i := 0; i < maxLen; i++ {
		var n1, n2 int
		if i < len(num1) {
			n1 = num1[i]
		}
		if i < len(num2) {
			n2 = num2[i]
		}
		if n1 > n2 {
			return 1
		} else if n1 < n2 {
			return -1
		}
	}

	switch {
	case qual1 == qual2:
		return 0
	case qual1 == "":
		return 1
	case qual2 == "":
		return -1
	case strings.ToLower(qual1) > strings.ToLower(qual2):
		return 1
	default:
		return -1
	}
}

// splitVersion separates the leading numeric segments from the qualifier ("1.2.3-rc1" -> [1 2 3], "rc1")
func splitVersion(v string) ([]int, string) {
	main, qualifier, _ := strings.Cut(v, "-")
	var nums []int
	for _, part := range strings.Split(main, ".") {
		numStr := ""
		for _, ch := range part {
			if ch >= '0' && ch <= '9' {
				numStr += string(ch)
			} else {
				break
			}
		}
		if numStr == "" {
			if qualifier == "" {
				qualifier = part
			}
			break
		}
		n, _ := strconv.Atoi(numStr)
		nums = append(nums, n)
		if len(numStr) < len(part) && qualifier == "" {
			qualifier = part[len(numStr):]
		}
	}
	return nums, qualifier
}

// SelectHighest returns the highest non-snapshot version accepted by r
func SelectHighest(versions []string, r VersionRange) (string, error) {
	best := ""
	for _, v := range versions {
		if strings.HasSuffix(v, "-SNAPSHOT") || !r.Contains(v) {
			continue
		}
		if best == "" || CompareVersions(v, best) > 0 {
			best = v
		}
	}
	if best == "" {
		return "", fmt.Errorf("no published version matches %s", formatRange(r))
	}
	return best, nil
}

func formatRange(r VersionRange) string {
	parts := make([]string, 0, len(r))
	for _, b := range r {
		open, closing := "(", ")"
		if b.LowerInclusive {
			open = "["
		}
		if b.UpperInclusive {
			closing = "]"
		}
		if b.Lower == b.Upper && b.Lower != "" {
			parts = append(parts, "["+b.Lower+"]")
			continue
		}
		parts = append(parts, open+b.Lower+","+b.Upper+closing)
	}
	return strings.Join(parts, ",")
}

// VersionResolver turns version ranges into concrete versions using repository metadata
type VersionResolver struct {
	downloader *MavenDownloader
}

// NewVersionResolver creates a new version resolver
func NewVersionResolver(downloader *MavenDownloader) *VersionResolver {
	return &VersionResolver{downloader: downloader}
}

// Resolve returns version unchanged unless it is a range, in which case the highest matching
// published release is selected
func (vr *VersionResolver) Resolve(ctx context.Context, group, artifact, version string) (string, error) {
	if !strings.HasPrefix(version, "[") && !strings.HasPrefix(version, "(") {
		return version, nil
	}

	r, err := ParseVersionRange(version)
	if err != nil {
		return "", err
	}
	meta, err := vr.downloader.FetchMetadata(ctx, group, artifact)
	if err != nil {
		return "", fmt.Errorf("failed to list versions of %s:%s: %w", group, artifact, err)
	}
	resolved, err := SelectHighest(meta.Versioning.Versions, r)
	if err != nil {
		return "", fmt.Errorf("%s:%s: %w", group, artifact, err)
	}
	return resolved, nil
}
