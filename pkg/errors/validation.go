package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maxNameLength = 128
	maxPathLength = 500
)

// ValidateAreaName validates a single Area name as typed by a user.
//
// The rules:
//   - No empty names
//   - No path separators (the name is a path segment)
//   - No control characters
//   - Maximum length of 128 characters
func ValidateAreaName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "area name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "area name too long (max %d characters)", maxNameLength)
	}

	if strings.Contains(name, "/") {
		return New(ErrCodeInvalidName, "area name cannot contain '/'")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "area name contains invalid control characters")
		}
	}

	return nil
}

// ValidateAreaPath validates a slash-delimited Area path.
// Empty segments are tolerated by the hierarchy, so only the overall length
// and the characters of each non-empty segment are checked. An empty path
// is valid and names the root.
func ValidateAreaPath(path string) error {
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		if err := ValidateAreaName(seg); err != nil {
			return Wrap(ErrCodeInvalidPath, err, "invalid segment %q in path %q", seg, path)
		}
	}

	return nil
}

// layoutNameRegex matches names usable as a storage key and a file name.
var layoutNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateLayoutName validates the name a layout is stored under. Names end
// up as file names and database keys, so they are restricted to letters,
// digits, dot, dash and underscore, must not start with a dot, and must not
// contain "..".
func ValidateLayoutName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "layout name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "layout name too long (max %d characters)", maxNameLength)
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "layout name cannot contain path traversal sequences (..)")
	}

	if !layoutNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid layout name: %q", name)
	}

	return nil
}
