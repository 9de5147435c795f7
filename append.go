package cosfs

import (
	"context"
	"errors"
	"io"

	"lesiw.io/cosfs/key"
)

// Append opens the named file for appending.
// Analogous to: [os.OpenFile] with O_APPEND, echo >>.
//
// Objects cannot be modified in place, so Append streams the existing
// object, if any, through a new [Writer] before returning it. The object
// is replaced with the combined content when the Writer is closed. If
// the file does not exist, Append behaves like [FS.Create].
func (f *FS) Append(ctx context.Context, name string) (*Writer, error) {
	p, k, err := f.lookup(ctx, name)
	if err != nil {
		return nil, &PathError{Op: "append", Path: name, Err: err}
	}
	if key.IsDir(p) {
		return nil, &PathError{Op: "append", Path: p, Err: ErrIsDir}
	}

	w := f.newWriter(ctx, p, k)
	r, err := f.Open(ctx, p)
	if errors.Is(err, ErrNotExist) {
		return w, nil
	} else if err != nil {
		return nil, &PathError{Op: "append", Path: p, Err: unwrapPath(err)}
	}
	defer r.Close()

	if _, err := io.Copy(w, r); err != nil {
		if aerr := w.Abort(); aerr != nil {
			err = errors.Join(err, aerr)
		}
		return nil, &PathError{Op: "append", Path: p, Err: unwrapPath(err)}
	}
	return w, nil
}

// unwrapPath returns the error inside a *PathError, or err itself.
func unwrapPath(err error) error {
	var pe *PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
