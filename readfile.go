package cosfs

import (
	"context"
	"io"
)

// ReadFile reads the named file and returns its contents.
// Analogous to: [io/fs.ReadFile], [os.ReadFile], cat.
//
// The whole object is fetched with a single ranged GET.
func (f *FS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	r, err := f.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data := make([]byte, r.Size())
	n, err := r.ReadAt(data, 0)
	if err == io.EOF && int64(n) == r.Size() {
		err = nil
	}
	return data[:n], err
}
