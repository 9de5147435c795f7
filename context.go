package cosfs

import "context"

type contextKey int

const (
	workDirKey contextKey = iota
	readBlockSizeKey
)

// WithWorkDir returns a context that carries a working directory for
// relative path resolution. Names without a leading slash are resolved
// relative to dir, which is itself relative to the bucket root.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey, dir)
}

// WorkDir retrieves the working directory from context.
// Returns an empty string if no working directory is set.
func WorkDir(ctx context.Context) string {
	if dir, ok := ctx.Value(workDirKey).(string); ok {
		return dir
	}
	return ""
}

// WithReadBlockSize returns a context that carries the block size for
// Readers opened with it, overriding the FS's block size.
func WithReadBlockSize(ctx context.Context, n int64) context.Context {
	return context.WithValue(ctx, readBlockSizeKey, n)
}

// ReadBlockSize retrieves the read block size from context.
// Returns 0 if no positive block size is set.
func ReadBlockSize(ctx context.Context) int64 {
	if n, ok := ctx.Value(readBlockSizeKey).(int64); ok && n > 0 {
		return n
	}
	return 0
}
