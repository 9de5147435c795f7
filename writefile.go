package cosfs

import "context"

// WriteFile writes data to the named file, replacing it if it exists.
// Analogous to: [os.WriteFile].
//
// Data larger than the part size is uploaded with a multipart upload,
// which is aborted if any part fails.
func (f *FS) WriteFile(ctx context.Context, name string, data []byte) error {
	w, err := f.Create(ctx, name)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	return w.Close()
}
