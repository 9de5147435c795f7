package cosfs

import (
	"context"
	"errors"
	"slices"
	"strings"

	"lesiw.io/cosfs/key"
)

// Glob returns the paths of all files and directories matching pattern,
// in lexicographic order.
// Analogous to: [io/fs.Glob], [path.Match], glob, find.
//
// The pattern syntax is the same as in [path.Match], applied to each path
// element, with one addition: an element of exactly "**" matches any
// number of path elements, including none. A trailing slash restricts
// matches to directories.
//
// Glob lists the deepest directory named by the pattern's leading
// elements that contain no wildcards, recursively and in one listing, and
// matches every object under it as well as every directory implied by
// the objects' keys. The only error Glob returns for the pattern itself
// is [key.ErrBadPattern].
func (f *FS) Glob(ctx context.Context, pattern string) ([]string, error) {
	p, err := f.clean(ctx, pattern)
	if err != nil {
		return nil, &PathError{Op: "glob", Path: pattern, Err: err}
	}
	matches, err := f.glob(ctx, p)
	return matches, newPathError("glob", pattern, err)
}

func (f *FS) glob(ctx context.Context, p string) ([]string, error) {
	dirOnly := key.IsDir(p) && p != "."
	p = trimDir(p)
	segs := strings.Split(p, key.Delimiter)
	for _, s := range segs {
		if s == "**" {
			continue
		}
		if _, err := key.Match(s, ""); err != nil {
			return nil, err
		}
	}

	if !key.HasMeta(p) {
		k, err := f.keys.Key(p)
		if err != nil {
			return nil, err
		}
		sp := p
		if dirOnly {
			sp += key.Delimiter
		}
		_, err = f.stat(ctx, sp, k)
		switch {
		case errors.Is(err, ErrNotExist):
			return nil, nil
		case err != nil:
			return nil, err
		}
		return []string{p}, nil
	}

	i := slices.IndexFunc(segs, func(s string) bool {
		return s == "**" || key.HasMeta(s)
	})
	base := "."
	if i > 0 {
		base = strings.Join(segs[:i], key.Delimiter)
	}
	prefix, err := f.prefix(base)
	if err != nil {
		return nil, err
	}
	l, err := f.listPrefix(ctx, prefix, true)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var matches []string
	consider := func(k string, dir bool) error {
		cp, err := f.pathOf(k)
		if err != nil {
			return err
		}
		cp = trimDir(cp)
		if dirOnly && !dir || seen[cp] {
			return nil
		}
		seen[cp] = true
		if matchElems(segs, strings.Split(cp, key.Delimiter)) {
			matches = append(matches, cp)
		}
		return nil
	}
	for _, o := range l.objects {
		if o.Key == prefix {
			continue
		}
		rel := o.Key[len(prefix):]
		for j := range len(rel) {
			if rel[j] != '/' {
				continue
			}
			if err := consider(prefix+rel[:j+1], true); err != nil {
				return nil, err
			}
		}
		if key.IsDirMarker(rel) {
			continue
		}
		if err := consider(o.Key, false); err != nil {
			return nil, err
		}
	}
	slices.Sort(matches)
	return matches, nil
}

// matchElems reports whether the path elements name match the pattern
// elements pat.
func matchElems(pat, name []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			pat = pat[1:]
			for i := range len(name) + 1 {
				if matchElems(pat, name[i:]) {
					return true
				}
			}
			return false
		}
		if len(name) == 0 {
			return false
		}
		if ok, _ := key.Match(pat[0], name[0]); !ok {
			return false
		}
		pat, name = pat[1:], name[1:]
	}
	return len(name) == 0
}
