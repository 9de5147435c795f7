package memstore

import (
	"context"
	"slices"
	"strings"

	"lesiw.io/cosfs/objstore"
)

// listItem is an object or a rolled-up common prefix.
type listItem struct {
	key    string
	prefix bool
}

// ListObjects returns one page of the keys under in.Prefix.
//
// The continuation token is the last key or common prefix of the previous
// page, so a listing resumes correctly even if keys are added or removed
// between pages.
func (s *Store) ListObjects(
	ctx context.Context, in objstore.ListInput,
) (objstore.ListOutput, error) {
	err := s.request(ctx, objstore.OpListObjects, in.Prefix)
	if err != nil {
		return objstore.ListOutput{}, err
	}

	s.RLock()
	defer s.RUnlock()

	items := s.items(in.Prefix, in.Delimiter)
	start, _ := slices.BinarySearchFunc(
		items, in.ContinuationToken,
		func(it listItem, token string) int {
			if it.key <= token {
				return -1
			}
			return 1
		},
	)
	if in.ContinuationToken == "" {
		start = 0
	}
	limit := s.pageSize
	if in.MaxKeys > 0 && in.MaxKeys < limit {
		limit = in.MaxKeys
	}
	end := min(start+limit, len(items))

	var out objstore.ListOutput
	for _, it := range items[start:end] {
		if it.prefix {
			out.CommonPrefixes = append(out.CommonPrefixes, it.key)
		} else {
			out.Objects = append(out.Objects, s.objects[it.key].info(it.key))
		}
	}
	if end < len(items) {
		out.NextContinuationToken = items[end-1].key
	}
	return out, nil
}

// items returns the sorted objects and common prefixes under prefix.
func (s *Store) items(prefix, delim string) []listItem {
	var keys []string
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var items []listItem
	for _, k := range keys {
		rest := k[len(prefix):]
		if delim != "" {
			if i := strings.Index(rest, delim); i >= 0 {
				cp := prefix + rest[:i+len(delim)]
				n := len(items)
				if n == 0 || items[n-1].key != cp {
					items = append(items, listItem{key: cp, prefix: true})
				}
				continue
			}
		}
		items = append(items, listItem{key: k})
	}
	return items
}
