package cosfs

import (
	"context"
	"errors"
	"slices"
	"strings"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// Walk returns every file and directory below root, ordered by path so
// that each directory precedes its contents.
// Analogous to: [io/fs.WalkDir], find, tree.
//
// Walk issues a single recursive listing and synthesizes intermediate
// directories from the components of each key.
//
// The depth parameter controls how deep to traverse (like find -maxdepth):
//   - depth <= 0: unlimited depth (like find without -maxdepth)
//   - depth >= 1: root directory plus n-1 levels of subdirectories
//     (like find -maxdepth n)
//
// The root itself is not included. Walk fails with [ErrNotDir] if root
// is a file and with [ErrNotExist] if it does not exist.
func (f *FS) Walk(
	ctx context.Context, root string, depth int,
) ([]Entry, error) {
	p, k, err := f.lookup(ctx, root)
	if err != nil {
		return nil, &PathError{Op: "walk", Path: root, Err: err}
	}
	entries, err := f.walk(ctx, p, depth)
	if err == nil || !errors.Is(err, ErrNotExist) || key.IsDir(p) {
		return entries, newPathError("walk", p, err)
	}
	if _, herr := f.client.HeadObject(ctx, k); herr == nil {
		err = ErrNotDir
	} else if !objstore.IsNotFound(herr) {
		err = herr
	}
	return nil, newPathError("walk", p, err)
}

func (f *FS) walk(ctx context.Context, p string, depth int) ([]Entry, error) {
	prefix, err := f.prefix(p)
	if err != nil {
		return nil, err
	}
	l, err := f.listPrefix(ctx, prefix, true)
	if err != nil {
		return nil, err
	}
	if l.empty() && p != "." {
		return nil, ErrNotExist
	}

	within := func(rel string) bool {
		return depth <= 0 || strings.Count(rel, key.Delimiter)+1 <= depth
	}
	seen := make(map[string]bool)
	var entries []Entry
	for _, o := range l.objects {
		if o.Key == prefix {
			continue
		}
		rel := o.Key[len(prefix):]
		for i := range len(rel) {
			if rel[i] != '/' || seen[rel[:i]] {
				continue
			}
			seen[rel[:i]] = true
			if !within(rel[:i]) {
				continue
			}
			dp, err := f.pathOf(prefix + rel[:i+1])
			if err != nil {
				return nil, err
			}
			entries = append(entries, dirEntry(dp, o.LastModified))
		}
		if key.IsDirMarker(rel) || !within(rel) {
			continue
		}
		fp, err := f.pathOf(o.Key)
		if err != nil {
			return nil, err
		}
		entries = append(entries,
			fileEntry(fp, o.Size, o.LastModified, o.ETag))
	}
	slices.SortStableFunc(entries, compareEntries)
	return entries, nil
}
