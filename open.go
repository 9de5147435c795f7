package cosfs

import (
	"context"
	"fmt"
)

// A File is an open [Reader] or [Writer].
type File interface {
	Name() string
	Close() error
}

var (
	_ File = (*Reader)(nil)
	_ File = (*Writer)(nil)
)

// OpenFile opens the named file in the given mode.
// Analogous to: [os.OpenFile], fopen.
//
// Mode "r" or "rb" opens the file for reading as [FS.Open] does, and
// returns a *Reader. Mode "w" or "wb" opens it for writing as [FS.Create]
// does, and mode "a" or "ab" for appending as [FS.Append] does; both
// return a *Writer. Any other mode fails with [ErrInvalid].
func (f *FS) OpenFile(
	ctx context.Context, name, mode string,
) (File, error) {
	var (
		file File
		err  error
	)
	switch mode {
	case "r", "rb":
		file, err = nilFile(f.Open(ctx, name))
	case "w", "wb":
		file, err = nilFile(f.Create(ctx, name))
	case "a", "ab":
		file, err = nilFile(f.Append(ctx, name))
	default:
		err = &PathError{
			Op:   "open",
			Path: name,
			Err:  fmt.Errorf("%w: mode %q", ErrInvalid, mode),
		}
	}
	return file, err
}

// nilFile converts a typed result into a File, keeping a failed open nil.
func nilFile[F File](file F, err error) (File, error) {
	if err != nil {
		return nil, err
	}
	return file, nil
}
