// Package cosfs exposes a Cloud Object Storage bucket as a filesystem.
//
// Package cosfs translates path and stream semantics onto object storage.
// Paths are mapped onto a flat bucket namespace, directories are emulated
// from key prefixes and marker objects, reads are served through buffered
// ranged GETs, and writes are uploaded as a single PUT or as a multipart
// upload. Store errors are reported through a filesystem error taxonomy.
//
// Every operation accepts a [context.Context] as the first parameter,
// enabling cancellation of long-running transfers, timeouts for remote
// operations, and request-scoped values like the working directory.
//
//	client, err := miniostore.New(miniostore.Options{...})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fsys, err := cosfs.New(client, cosfs.WithRoot("data"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	data, err := fsys.ReadFile(ctx, "reports/2025.csv")
//
// # Paths
//
// Paths use forward slashes and are relative to the bucket root. Leading
// slashes, empty elements and "." elements are ignored, and ".." elements
// are resolved lexically. A path may not climb above the root. Fully
// qualified cos://bucket/path URLs are accepted for the configured
// bucket. See the [lesiw.io/cosfs/key] package for the exact rules.
//
// A trailing slash indicates a directory. [FS.Stat]("logs") reports the
// file "logs" if it exists and the directory "logs/" otherwise, while
// [FS.Stat]("logs/") only considers the directory.
//
// # Directories
//
// Object stores have no directories. A directory exists if a zero-byte
// marker object with a trailing slash exists, or if any object key has
// the directory's path as a prefix. [FS.Mkdir] and [FS.MkdirAll] create
// marker objects; writing a file never does.
//
// # Streams
//
// [FS.Open] returns a [Reader] which fetches the object in blocks, and
// [FS.Create] returns a [Writer] which switches from a single PUT to a
// multipart upload once more than one part has been written. A Writer
// that fails aborts its multipart upload, so no incomplete upload is left
// behind.
//
// # Errors
//
// Errors are returned as [*PathError] values wrapping one of the error
// values of this package, so callers can test them with [errors.Is]:
//
//	if errors.Is(err, cosfs.ErrNotExist) {
//	    // Object or directory does not exist
//	}
//
// The underlying store error remains available in the chain.
//
// # Testing
//
// The [lesiw.io/cosfs/fstest] package provides a conformance suite, and
// the [lesiw.io/cosfs/memstore] package an in-memory bucket to run it
// against.
//
//	func TestFS(t *testing.T) {
//	    fsys, err := cosfs.New(memstore.New("bucket"))
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    fstest.TestFS(t.Context(), t, fsys)
//	}
package cosfs

import (
	"io/fs"
	"time"

	"lesiw.io/cosfs/key"
)

// A FileInfo describes a file and is returned by [FS.Stat].
type FileInfo = fs.FileInfo

// A Mode represents a file's mode and permission bits.
type Mode = fs.FileMode

// An Entry describes a file or directory in the bucket.
//
// An Entry is an immutable snapshot taken at the time of the listing or
// metadata request that produced it. It implements both [fs.FileInfo] and
// [fs.DirEntry].
type Entry struct {
	path    string
	size    int64
	modTime time.Time
	dir     bool
	etag    string
}

var (
	_ fs.FileInfo = Entry{}
	_ fs.DirEntry = Entry{}
)

// Name returns the base name of the entry.
func (e Entry) Name() string { return key.Base(e.path) }

// Path returns the path of the entry relative to the bucket root, without
// a trailing slash.
func (e Entry) Path() string { return e.path }

// Size returns the length of the object in bytes. It is zero for
// directories.
func (e Entry) Size() int64 { return e.size }

// Mode returns fixed permissions, since object stores have none.
func (e Entry) Mode() Mode {
	if e.dir {
		return fs.ModeDir | 0755
	}
	return 0644
}

// ModTime returns the object's last modification time. Directories
// without a marker object report the time of the first object found
// under them, or the zero time.
func (e Entry) ModTime() time.Time { return e.modTime }

// IsDir reports whether the entry describes a directory.
func (e Entry) IsDir() bool { return e.dir }

// Sys returns nil.
func (e Entry) Sys() any { return nil }

// ETag returns the entity tag the store reported for the object, or ""
// for directories.
func (e Entry) ETag() string { return e.etag }

// Type returns the type bits of the entry's mode.
func (e Entry) Type() Mode { return e.Mode().Type() }

// Info returns the entry itself.
func (e Entry) Info() (FileInfo, error) { return e, nil }

func (e Entry) String() string { return fs.FormatFileInfo(e) }

func fileEntry(p string, size int64, mtime time.Time, etag string) Entry {
	return Entry{path: p, size: size, modTime: mtime, etag: etag}
}

func dirEntry(p string, mtime time.Time) Entry {
	return Entry{path: trimDir(p), modTime: mtime, dir: true}
}

// trimDir strips the trailing slash from a directory path.
func trimDir(p string) string {
	if p != key.Delimiter && len(p) > 0 && p[len(p)-1] == '/' {
		return p[:len(p)-1]
	}
	return p
}
