package cosfs

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// listPrefix lists every key under prefix, following continuation tokens
// until the listing is complete. A non-recursive listing rolls keys up to
// the next delimiter into common prefixes.
func (f *FS) listPrefix(
	ctx context.Context, prefix string, recursive bool,
) (listing, error) {
	if l, ok := f.cache.get(prefix, recursive); ok {
		return l, nil
	}

	in := objstore.ListInput{Prefix: prefix, MaxKeys: f.pageSize}
	if !recursive {
		in.Delimiter = key.Delimiter
	}
	var l listing
	var pages int
	for {
		out, err := f.client.ListObjects(ctx, in)
		if err != nil {
			return listing{}, err
		}
		pages++
		l.objects = append(l.objects, out.Objects...)
		l.prefixes = append(l.prefixes, out.CommonPrefixes...)

		token := out.NextContinuationToken
		if token == "" {
			break
		}
		if token == in.ContinuationToken {
			return listing{}, fmt.Errorf(
				"listing %q: continuation token %q repeated",
				prefix, token,
			)
		}
		in.ContinuationToken = token
	}

	slices.SortStableFunc(l.objects, func(a, b objstore.ObjectInfo) int {
		return cmp.Compare(a.Key, b.Key)
	})
	slices.Sort(l.prefixes)
	l.prefixes = slices.Compact(l.prefixes)

	f.logger.DebugContext(ctx, "listed prefix",
		"prefix", prefix,
		"recursive", recursive,
		"pages", pages,
		"objects", len(l.objects),
		"prefixes", len(l.prefixes),
	)
	f.cache.add(prefix, recursive, l)
	return l, nil
}

// probeDir reports whether any key exists under prefix. It returns the
// first key found, if any.
func (f *FS) probeDir(
	ctx context.Context, prefix string,
) (found bool, first objstore.ObjectInfo, err error) {
	if l, ok := f.cache.get(prefix, false); ok {
		return probeListing(l)
	}
	if l, ok := f.cache.get(prefix, true); ok {
		return probeListing(l)
	}
	out, err := f.client.ListObjects(ctx, objstore.ListInput{
		Prefix:  prefix,
		MaxKeys: 1,
	})
	if err != nil {
		return false, objstore.ObjectInfo{}, err
	}
	if len(out.Objects) == 0 {
		return false, objstore.ObjectInfo{}, nil
	}
	return true, out.Objects[0], nil
}

func probeListing(l listing) (bool, objstore.ObjectInfo, error) {
	if len(l.objects) > 0 {
		return true, l.objects[0], nil
	}
	return len(l.prefixes) > 0, objstore.ObjectInfo{}, nil
}

// entries converts a listing under prefix into entries, skipping the
// directory's own marker. Markers and common prefixes become directory
// entries. Entries are returned in key order, with common prefixes merged
// in by their key.
func (f *FS) entries(prefix string, l listing) ([]Entry, error) {
	type keyed struct {
		key   string
		entry Entry
	}
	list := make([]keyed, 0, len(l.objects)+len(l.prefixes))
	for _, o := range l.objects {
		if o.Key == prefix {
			continue
		}
		p, err := f.pathOf(o.Key)
		if err != nil {
			return nil, err
		}
		e := fileEntry(p, o.Size, o.LastModified, o.ETag)
		if key.IsDirMarker(o.Key) {
			e = dirEntry(p, o.LastModified)
		}
		list = append(list, keyed{o.Key, e})
	}
	for _, cp := range l.prefixes {
		p, err := f.pathOf(cp)
		if err != nil {
			return nil, err
		}
		list = append(list, keyed{cp, dirEntry(p, time.Time{})})
	}
	slices.SortStableFunc(list, func(a, b keyed) int {
		return strings.Compare(a.key, b.key)
	})
	entries := make([]Entry, len(list))
	for i, k := range list {
		entries[i] = k.entry
	}
	return entries, nil
}

// compareEntries orders entries by path element, so that a directory
// sorts immediately before its contents. Only Walk uses this order;
// listings follow key order.
func compareEntries(a, b Entry) int {
	return cmp.Or(
		comparePaths(a.path, b.path),
		boolCompare(a.dir, b.dir),
	)
}

func comparePaths(a, b string) int {
	for {
		ah, at, amore := cut(a)
		bh, bt, bmore := cut(b)
		if c := cmp.Compare(ah, bh); c != 0 {
			return c
		}
		switch {
		case !amore && !bmore:
			return 0
		case !amore:
			return -1
		case !bmore:
			return 1
		}
		a, b = at, bt
	}
}

func cut(p string) (head, tail string, more bool) {
	for i := range len(p) {
		if p[i] == '/' {
			return p[:i], p[i+1:], true
		}
	}
	return p, "", false
}

func boolCompare(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
