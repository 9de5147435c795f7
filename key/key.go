// Package key maps filesystem paths to object store keys.
//
// Paths are forward-slash delimited and bucket-relative. All operations are
// lexical: they never contact the store.
//
// Trailing slashes indicate directories:
//
//	key.IsDir("logs/2025/")   // true
//	key.IsDir("logs/2025")    // false
//
// A key that ends in the [Delimiter] is a directory marker: a zero-byte
// object representing a directory that may have no other contents.
package key

import (
	"fmt"
	"io/fs"
	stdpath "path"
	"strings"
	"unicode/utf8"
)

// Delimiter separates path elements in keys and groups keys into virtual
// directories when listing.
const Delimiter = "/"

// Scheme prefixes fully qualified object URLs, as in
// cos://bucket/path/to/object.
const Scheme = "cos://"

// MaxKeyLen is the longest object key the store accepts, in bytes.
const MaxKeyLen = 850

// ErrInvalidPath reports a malformed path or a path that escapes the root.
// It matches [fs.ErrInvalid] under [errors.Is].
var ErrInvalidPath error = invalidPathError{}

type invalidPathError struct{}

func (invalidPathError) Error() string { return "invalid path" }

func (invalidPathError) Is(target error) bool {
	return target == fs.ErrInvalid
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPath, reason)
}

// Clean returns the normal form of a bucket-relative path.
//
// It removes leading slashes, empty and "." elements, and resolves ".."
// elements. A trailing slash is preserved since it marks a directory
// reference. The root is returned as ".".
//
// Clean fails with [ErrInvalidPath] if a ".." element would climb above
// the root, if the path is not valid UTF-8, if it contains control
// characters, or if it carries a URL scheme.
func Clean(name string) (string, error) {
	if !utf8.ValidString(name) {
		return "", invalid("not valid UTF-8")
	}
	for i := 0; i < len(name); i++ {
		if c := name[i]; c < 0x20 || c == 0x7f {
			return "", invalid("control character")
		}
	}
	if strings.Contains(name, "://") {
		return "", invalid("unexpected URL scheme")
	}

	dir := strings.HasSuffix(name, Delimiter)
	var out []string
	for part := range strings.SplitSeq(name, Delimiter) {
		switch part {
		case "", ".":
		case "..":
			if len(out) == 0 {
				return "", invalid("escapes root")
			}
			out = out[:len(out)-1]
		default:
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return ".", nil
	}
	p := strings.Join(out, Delimiter)
	if dir {
		p += Delimiter
	}
	return p, nil
}

// Join joins path elements with the delimiter. Empty elements are ignored,
// except if the last element is empty, which adds a trailing slash to mark
// a directory. The result is not cleaned.
func Join(elem ...string) string {
	var trailingDir bool
	if len(elem) > 0 && elem[len(elem)-1] == "" {
		trailingDir = true
	}
	var parts []string
	for _, e := range elem {
		e = strings.Trim(e, Delimiter)
		if e != "" && e != "." {
			parts = append(parts, e)
		}
	}
	if len(parts) == 0 {
		return "."
	}
	p := strings.Join(parts, Delimiter)
	if trailingDir {
		p += Delimiter
	}
	return p
}

// Dir returns the parent directory of a clean path, without a trailing
// slash. The parent of a top-level name and of the root is ".".
func Dir(p string) string {
	p = strings.TrimSuffix(p, Delimiter)
	i := strings.LastIndex(p, Delimiter)
	if i < 0 {
		return "."
	}
	return p[:i]
}

// Base returns the last element of a clean path, ignoring any trailing
// slash. The base of the root is ".".
func Base(p string) string {
	p = strings.TrimSuffix(p, Delimiter)
	if p == "" {
		return "."
	}
	return p[strings.LastIndex(p, Delimiter)+1:]
}

// Split splits a clean path into its parent directory and base name, so
// that Join(dir, base) rebuilds the path without its trailing slash.
func Split(p string) (dir, base string) {
	return Dir(p), Base(p)
}

// IsDir reports whether the path is lexically a directory: the root, or
// a path with a trailing slash.
func IsDir(p string) bool {
	return p == "." || strings.HasSuffix(p, Delimiter)
}

// IsDirMarker reports whether the key names a directory marker object.
func IsDirMarker(k string) bool {
	return strings.HasSuffix(k, Delimiter)
}

// Match reports whether name matches the shell pattern.
// The pattern syntax is the same as in path.Match from the standard
// library. Like path.Match, a * never matches a slash.
func Match(pattern, name string) (matched bool, err error) {
	return stdpath.Match(pattern, name)
}

// ErrBadPattern indicates a pattern was malformed.
var ErrBadPattern = stdpath.ErrBadPattern

// HasMeta reports whether p contains any of the magic characters
// recognized by Match.
func HasMeta(p string) bool {
	return strings.ContainsAny(p, `*?[\`)
}
