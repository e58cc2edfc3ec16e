package apkg

import (
	"sync/atomic"
	"time"
	"unicode/utf16"
)

// IDSequence hands out strictly increasing int64 ids seeded from the
// millisecond clock. It is safe for concurrent use, so ids stay unique
// across exports running in the same process even within one millisecond.
type IDSequence struct {
	last atomic.Int64
	now  func() time.Time
}

// NewIDSequence creates a sequence. A nil clock defaults to time.Now.
func NewIDSequence(now func() time.Time) *IDSequence {
	if now == nil {
		now = time.Now
	}
	return &IDSequence{now: now}
}

// Next returns max(now in ms, previous id + 1).
func (s *IDSequence) Next() int64 {
	for {
		prev := s.last.Load()
		next := s.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if s.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// fieldChecksum is a 31-multiplier rolling hash over the UTF-16 code units
// of text, truncated to 32 bits. It is not Anki's SHA1-based checksum and
// only has to be consistent within one generated collection.
func fieldChecksum(text string) uint32 {
	var sum uint32
	for _, u := range utf16.Encode([]rune(text)) {
		sum = sum*31 + uint32(u)
	}
	return sum
}
