// Package tocid implements the stable, bit-exact id grammars from the
// wire contract: five-level TocNode ids and Grip ids. Node ids are a
// pure function of level and time, which is what makes TocBuilder
// reruns converge on the same id instead of allocating a new node.
package tocid

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/recall-memory/recall/go/types"
)

// NodeID returns the deterministic node id for level at time t
// (interpreted in UTC, per the grammar).
func NodeID(level types.Level, t time.Time) string {
	t = t.UTC()
	switch level {
	case types.LevelYear:
		return fmt.Sprintf("toc:year:%04d", t.Year())
	case types.LevelMonth:
		return fmt.Sprintf("toc:month:%04d-%02d", t.Year(), t.Month())
	case types.LevelWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("toc:week:%04d-W%02d", year, week)
	case types.LevelDay:
		return fmt.Sprintf("toc:day:%04d-%02d-%02d", t.Year(), t.Month(), t.Day())
	case types.LevelSegment:
		return fmt.Sprintf("toc:segment:%s", t.Format("2006-01-02T15:04:05"))
	default:
		panic(fmt.Sprintf("tocid: unknown level %q", level))
	}
}

// Window returns the calendar [start, end) bounds containing t for
// level, in UTC epoch milliseconds. end is exclusive.
func Window(level types.Level, t time.Time) (startMs, endMs int64) {
	t = t.UTC()
	switch level {
	case types.LevelYear:
		var start = time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start.UnixMilli(), start.AddDate(1, 0, 0).UnixMilli()
	case types.LevelMonth:
		var start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start.UnixMilli(), start.AddDate(0, 1, 0).UnixMilli()
	case types.LevelWeek:
		var wd = int(t.Weekday())
		if wd == 0 { // Sunday -> 7, so weeks start Monday (ISO).
			wd = 7
		}
		var monday = t.AddDate(0, 0, -(wd - 1))
		var start = time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
		return start.UnixMilli(), start.AddDate(0, 0, 7).UnixMilli()
	case types.LevelDay:
		var start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return start.UnixMilli(), start.AddDate(0, 0, 1).UnixMilli()
	default:
		panic(fmt.Sprintf("tocid: Window undefined for level %q", level))
	}
}

// entropySource is process-wide and monotonic, matching the ULID
// spec's recommendation of a monotonic source per-process so ids
// generated in the same millisecond still sort correctly.
var entropySource = ulid.Monotonic(rand.Reader, 0)

// NewGripID returns a grip id of the form "grip:<13-digit-ms>:<ULID>"
// for an excerpt whose first event has timestamp tsMs. The ms prefix
// lets callers iterate grips in time order by key alone.
func NewGripID(tsMs int64) string {
	var id = ulid.MustNew(ulid.Timestamp(time.UnixMilli(tsMs)), entropySource)
	return fmt.Sprintf("grip:%013d:%s", tsMs, id.String())
}
