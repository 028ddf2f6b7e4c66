// Package render owns the markup-injection pipeline: content-keyed caches,
// sanitization of untrusted markup, and the per-view state machine that
// commits markup either in one pass or progressively in idle-time chunks.
package render

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Default capacities for the two shared caches.
const (
	DefaultRawCacheSize       = 64
	DefaultSanitizedCacheSize = 64
)

// ParseMode says how raw content must be interpreted before injection.
type ParseMode int

const (
	// ModeLegacyText is free legal text that needs the structuring
	// conversion before it becomes markup.
	ModeLegacyText ParseMode = iota
	// ModeFinalMarkup is externally produced markup that must be sanitized.
	ModeFinalMarkup
	// ModeStructured is trusted output of the structuring pipeline;
	// sanitization is skipped entirely.
	ModeStructured
)

// String returns a short label for the mode.
func (mode ParseMode) String() string {
	switch mode {
	case ModeLegacyText:
		return "legacy-text"
	case ModeFinalMarkup:
		return "final-markup"
	case ModeStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// ContentKey fingerprints one rendering input: the parse mode plus a hash
// of the raw content. It keys both caches and the per-view commit marker.
type ContentKey struct {
	Mode        ParseMode
	Fingerprint string
}

// KeyFor computes the content key for a mode/content pair.
func KeyFor(mode ParseMode, raw string) ContentKey {
	digest := sha256.Sum256([]byte(raw))
	return ContentKey{Mode: mode, Fingerprint: hex.EncodeToString(digest[:])}
}

// MarkupCache holds the two process-shared bounded caches: raw content to
// intermediate markup, and intermediate markup to sanitized-final markup.
// They are separate because sanitization is the expensive step and must
// not be repeated when only the intermediate form is reused across tabs
// showing identical content. Eviction is strict LRU so behavior under
// pressure stays deterministic.
type MarkupCache struct {
	raw       *lru.Cache[ContentKey, string]
	sanitized *lru.Cache[ContentKey, string]
}

// NewMarkupCache creates the cache pair. Non-positive sizes fall back to
// the defaults.
func NewMarkupCache(rawSize, sanitizedSize int) *MarkupCache {
	if rawSize <= 0 {
		rawSize = DefaultRawCacheSize
	}
	if sanitizedSize <= 0 {
		sanitizedSize = DefaultSanitizedCacheSize
	}
	// lru.New only fails for non-positive sizes, which are guarded above.
	rawCache, _ := lru.New[ContentKey, string](rawSize)
	sanitizedCache, _ := lru.New[ContentKey, string](sanitizedSize)
	return &MarkupCache{raw: rawCache, sanitized: sanitizedCache}
}

// Raw returns the cached intermediate markup for the key.
func (cache *MarkupCache) Raw(key ContentKey) (string, bool) {
	return cache.raw.Get(key)
}

// StoreRaw caches intermediate markup, evicting the least recently used
// entry when over capacity.
func (cache *MarkupCache) StoreRaw(key ContentKey, markup string) {
	cache.raw.Add(key, markup)
}

// Sanitized returns the cached sanitized-final markup for the key.
func (cache *MarkupCache) Sanitized(key ContentKey) (string, bool) {
	return cache.sanitized.Get(key)
}

// StoreSanitized caches sanitized-final markup.
func (cache *MarkupCache) StoreSanitized(key ContentKey, markup string) {
	cache.sanitized.Add(key, markup)
}

// RawLen returns the number of raw-cache entries, for tests and stats.
func (cache *MarkupCache) RawLen() int { return cache.raw.Len() }

// SanitizedLen returns the number of sanitized-cache entries.
func (cache *MarkupCache) SanitizedLen() int { return cache.sanitized.Len() }
