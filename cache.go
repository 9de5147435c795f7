package cosfs

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"lesiw.io/cosfs/key"
	"lesiw.io/cosfs/objstore"
)

// A listing is the complete result of listing one prefix.
type listing struct {
	objects  []objstore.ObjectInfo
	prefixes []string
}

func (l listing) empty() bool {
	return len(l.objects) == 0 && len(l.prefixes) == 0
}

// listingCache holds complete listings keyed by prefix. A nil
// *listingCache caches nothing.
type listingCache struct {
	lru *expirable.LRU[string, listing]
}

func newListingCache(size int, ttl time.Duration) *listingCache {
	return &listingCache{lru: expirable.NewLRU[string, listing](
		size, nil, ttl,
	)}
}

func cacheKey(prefix string, recursive bool) string {
	if recursive {
		return prefix + "\x00r"
	}
	return prefix + "\x00d"
}

func (c *listingCache) get(prefix string, recursive bool) (listing, bool) {
	if c == nil {
		return listing{}, false
	}
	return c.lru.Get(cacheKey(prefix, recursive))
}

func (c *listingCache) add(prefix string, recursive bool, l listing) {
	if c == nil {
		return
	}
	c.lru.Add(cacheKey(prefix, recursive), l)
}

// invalidate drops every listing that may contain k: the listings of each
// prefix of k that ends in a delimiter, including the empty prefix.
func (c *listingCache) invalidate(k string) {
	if c == nil {
		return
	}
	c.remove("")
	for i := strings.Index(k, key.Delimiter); i >= 0; {
		c.remove(k[:i+1])
		next := strings.Index(k[i+1:], key.Delimiter)
		if next < 0 {
			break
		}
		i += next + 1
	}
}

func (c *listingCache) remove(prefix string) {
	c.lru.Remove(cacheKey(prefix, false))
	c.lru.Remove(cacheKey(prefix, true))
}

// purge drops every listing.
func (c *listingCache) purge() {
	if c == nil {
		return
	}
	c.lru.Purge()
}
