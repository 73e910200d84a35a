package database

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Profiles are read on every chat turn but written rarely, so a small
// in-process LRU in front of chat_profiles saves a round trip per turn.
const profileCacheSize = 512

var profileCache, _ = lru.New[string, ChatProfile](profileCacheSize)

// CachedProfile returns the profile for a handle, hitting the database
// only on a cache miss. Not-found errors pass through uncached.
func CachedProfile(ctx context.Context, q *Queries, userHandle string) (ChatProfile, error) {
	if p, ok := profileCache.Get(userHandle); ok {
		return p, nil
	}

	p, err := q.GetProfile(ctx, userHandle)
	if err != nil {
		return ChatProfile{}, err
	}

	profileCache.Add(userHandle, p)
	return p, nil
}

// InvalidateProfile drops a handle from the cache. Call after any write
// to chat_profiles so the next read sees the new row.
func InvalidateProfile(userHandle string) {
	profileCache.Remove(userHandle)
}

// PurgeProfileCache empties the cache. Used by tests.
func PurgeProfileCache() {
	profileCache.Purge()
}
