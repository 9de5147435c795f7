package cosfs

import "context"

// Abs returns the fully qualified cos://bucket/key URL of name.
// Analogous to: [path/filepath.Abs], realpath.
//
// Abs makes no requests; the named file need not exist.
func (f *FS) Abs(ctx context.Context, name string) (string, error) {
	p, err := f.clean(ctx, name)
	if err != nil {
		return "", &PathError{Op: "abs", Path: name, Err: err}
	}
	u, err := f.keys.URL(p)
	if err != nil {
		return "", &PathError{Op: "abs", Path: p, Err: err}
	}
	return u, nil
}
