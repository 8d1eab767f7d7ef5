// Package history groups stored sessions into recency buckets for the
// previous-chats list. Buckets are recomputed from record timestamps on
// every read and never persisted.
package history

import (
	"time"

	"github.com/RaoAkif/BotFusion/internal/chat"
)

// Summary is a bucketed session reference: just enough to list and
// recall a stored session.
type Summary struct {
	Timestamp string `json:"timestamp"`
}

// Buckets partitions session summaries by age. Every record falls into
// exactly one bucket for a given evaluation instant.
type Buckets struct {
	Today     []Summary `json:"todayChats"`
	Yesterday []Summary `json:"yesterdayChats"`
	Past7Days []Summary `json:"past7DaysChats"`
	PastMonth []Summary `json:"pastMonthChats"`
	PastYear  []Summary `json:"pastYearChats"`
	Older     []Summary `json:"olderChats"`
}

// NamedBucket pairs a display label with its summaries.
type NamedBucket struct {
	Label     string
	Summaries []Summary
}

// Named returns the buckets in display order with their labels.
func (b Buckets) Named() []NamedBucket {
	return []NamedBucket{
		{"Today", b.Today},
		{"Yesterday", b.Yesterday},
		{"Previous 7 Days", b.Past7Days},
		{"Previous 30 Days", b.PastMonth},
		{"Previous Year", b.PastYear},
		{"Older", b.Older},
	}
}

// Categorize partitions records by age relative to now. The instant is
// captured once by the caller so assignment stays consistent within one
// invocation. Thresholds are in fractional days: under 1 is today,
// under 2 yesterday, then 7, 30, and 365. Everything else lands in
// Older, as do records whose timestamps do not parse. Records keep
// their given order within each bucket.
func Categorize(records []chat.Record, now time.Time) Buckets {
	var b Buckets
	for _, rec := range records {
		summary := Summary{Timestamp: rec.Timestamp}

		t, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
		if err != nil {
			b.Older = append(b.Older, summary)
			continue
		}

		days := now.Sub(t).Hours() / 24

		switch {
		case days < 1:
			b.Today = append(b.Today, summary)
		case days < 2:
			b.Yesterday = append(b.Yesterday, summary)
		case days < 7:
			b.Past7Days = append(b.Past7Days, summary)
		case days < 30:
			b.PastMonth = append(b.PastMonth, summary)
		case days < 365:
			b.PastYear = append(b.PastYear, summary)
		default:
			b.Older = append(b.Older, summary)
		}
	}
	return b
}
