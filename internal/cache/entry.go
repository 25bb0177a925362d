package cache

// Entry represents a single value held by the cache.
//
// Timestamp is the wall-clock time, in Unix milliseconds, at which the entry
// was created or last refreshed by Put. Get never touches it.
type Entry struct {
	Value     string
	Timestamp int64
}

// age returns how long ago, in milliseconds, the entry was written.
// A negative age means the clock moved backward since then.
func (e Entry) age(nowMillis int64) int64 {
	return nowMillis - e.Timestamp
}

// IsExpired reports whether the entry is stale at nowMillis for the given TTL.
// An entry written "in the future" (clock regression) is stale too.
func (e Entry) IsExpired(nowMillis, ttlMillis int64) bool {
	delta := e.age(nowMillis)
	return delta < 0 || delta >= ttlMillis
}
