package memory

import "time"

// Entry is a cached payload together with its expiry and access bookkeeping.
// Entries are owned exclusively by the store that holds them; callers only
// ever see the payload.
type Entry struct {
	Data        interface{}
	CreatedAt   time.Time
	TTL         time.Duration
	AccessCount int64
	LastAccess  time.Time
}

func newEntry(data interface{}, ttl time.Duration, now time.Time) *Entry {
	return &Entry{
		Data:       data,
		CreatedAt:  now,
		TTL:        ttl,
		LastAccess: now,
	}
}

// Expired reports whether the entry is no longer observable at the given
// instant. An entry written with TTL T expires exactly at CreatedAt+T.
func (e *Entry) Expired(now time.Time) bool {
	return !now.Before(e.CreatedAt.Add(e.TTL))
}

// access records a successful read.
func (e *Entry) access(now time.Time) interface{} {
	e.AccessCount++
	e.LastAccess = now
	return e.Data
}
