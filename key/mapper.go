package key

import (
	"strings"
)

// A Mapper converts paths to storage keys and back.
//
// Keys are the bucket-relative root prefix followed by the clean path.
// For every path p accepted by Key, Path(Key(p)) equals Clean(p).
type Mapper struct {
	bucket string
	root   string // "" or a clean prefix ending in Delimiter
}

// NewMapper returns a Mapper for bucket that places every path under
// root. An empty root maps paths directly to keys.
func NewMapper(bucket, root string) (*Mapper, error) {
	r, err := Clean(root)
	if err != nil {
		return nil, err
	}
	if r == "." {
		r = ""
	} else if !strings.HasSuffix(r, Delimiter) {
		r += Delimiter
	}
	return &Mapper{bucket: bucket, root: r}, nil
}

// Bucket returns the bucket name.
func (m *Mapper) Bucket() string { return m.bucket }

// Root returns the key prefix every path is mapped under.
func (m *Mapper) Root() string { return m.root }

// Clean normalizes name like [Clean], additionally accepting fully
// qualified cos://bucket/key URLs, as returned by [Mapper.URL], for keys
// under the mapper's bucket and root.
func (m *Mapper) Clean(name string) (string, error) {
	rest, ok := strings.CutPrefix(name, Scheme)
	if !ok {
		return Clean(name)
	}
	bucket, k, _ := strings.Cut(rest, Delimiter)
	if bucket != m.bucket {
		return "", invalid("bucket " + bucket + " is not " + m.bucket)
	}
	p, err := Clean(k)
	if err != nil || m.root == "" {
		return p, err
	}
	if p+Delimiter == m.root || p == m.root {
		return ".", nil
	}
	if p, ok = strings.CutPrefix(p, m.root); !ok {
		return "", invalid("key " + k + " is outside root " + m.root)
	}
	return p, nil
}

// Key returns the storage key for name. The root maps to the root prefix
// itself, which is empty when no root is configured.
func (m *Mapper) Key(name string) (string, error) {
	p, err := m.Clean(name)
	if err != nil {
		return "", err
	}
	if p == "." {
		return m.root, nil
	}
	k := m.root + p
	if len(k) > MaxKeyLen {
		return "", invalid("key too long")
	}
	return k, nil
}

// Prefix returns the listing prefix for the directory name: its key with
// a trailing delimiter, or the root prefix for the root.
func (m *Mapper) Prefix(name string) (string, error) {
	k, err := m.Key(name)
	if err != nil {
		return "", err
	}
	if k == "" || IsDirMarker(k) {
		return k, nil
	}
	return k + Delimiter, nil
}

// Path returns the path for the storage key k. The root prefix maps to
// ".". Keys outside the root fail with [ErrInvalidPath].
//
// Keys written by other tools are returned verbatim below the root, even
// if they are not in clean form.
func (m *Mapper) Path(k string) (string, error) {
	rest, ok := strings.CutPrefix(k, m.root)
	if !ok {
		return "", invalid("key " + k + " is outside root " + m.root)
	}
	if rest == "" {
		return ".", nil
	}
	return rest, nil
}

// URL returns the fully qualified cos:// URL for name.
func (m *Mapper) URL(name string) (string, error) {
	k, err := m.Key(name)
	if err != nil {
		return "", err
	}
	return Scheme + m.bucket + Delimiter + k, nil
}
