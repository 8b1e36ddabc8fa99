// Package version parses and compares robot SDK version strings.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Library is the version of this client library.
const Library = "0.1.0"

// SDKVersion is a parsed robot firmware SDK version. The robot reports
// it as zero-padded "major.minor.patch", for example "01.02.0304".
type SDKVersion struct {
	Major uint16
	Minor uint16
	Patch uint16
}

// Parse parses a "major.minor.patch" version string. Leading zeros are
// accepted.
func Parse(s string) (SDKVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return SDKVersion{}, fmt.Errorf("invalid version %q: expected major.minor.patch", s)
	}

	var nums [3]uint16
	for i, p := range parts {
		if p == "" {
			return SDKVersion{}, fmt.Errorf("invalid version %q: empty component", s)
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return SDKVersion{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = uint16(n)
	}

	return SDKVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// ParseReply parses the robot's reply to a version query, which may
// carry a leading "version" token before the version itself.
func ParseReply(reply string) (SDKVersion, error) {
	fields := strings.Fields(reply)
	switch len(fields) {
	case 1:
		return Parse(fields[0])
	case 2:
		if fields[0] != "version" {
			return SDKVersion{}, fmt.Errorf("invalid version reply %q", reply)
		}
		return Parse(fields[1])
	default:
		return SDKVersion{}, fmt.Errorf("invalid version reply %q", reply)
	}
}

// String returns the version in the robot's zero-padded form.
func (v SDKVersion) String() string {
	return fmt.Sprintf("%02d.%02d.%04d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 ordering v against other.
func (v SDKVersion) Compare(other SDKVersion) int {
	for _, d := range [3]int{
		int(v.Major) - int(other.Major),
		int(v.Minor) - int(other.Minor),
		int(v.Patch) - int(other.Patch),
	} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// AtLeast reports whether v is other or newer. Use it to gate
// commands that only newer firmware understands.
func (v SDKVersion) AtLeast(other SDKVersion) bool {
	return v.Compare(other) >= 0
}
