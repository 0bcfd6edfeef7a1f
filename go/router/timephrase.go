package router

import (
	"strings"
	"time"

	"github.com/recall-memory/recall/go/tocid"
	"github.com/recall-memory/recall/go/types"
)

// resolveTimePhrase maps a small set of relative time phrases to a
// concrete [fromMs, toMs) window anchored at nowMs. It is intentionally
// narrow: the router's TimeBoxed intent only needs a window to restrict
// other layers to, not a general natural-language date parser.
func resolveTimePhrase(query string, nowMs int64) (fromMs, toMs int64, ok bool) {
	var lower = strings.ToLower(query)
	var now = time.UnixMilli(nowMs)

	switch {
	case strings.Contains(lower, "yesterday"):
		var from, to = tocid.Window(types.LevelDay, now.AddDate(0, 0, -1))
		return from, to, true
	case strings.Contains(lower, "today"):
		var from, to = tocid.Window(types.LevelDay, now)
		return from, to, true
	case strings.Contains(lower, "last week"):
		var from, to = tocid.Window(types.LevelWeek, now.AddDate(0, 0, -7))
		return from, to, true
	case strings.Contains(lower, "this week"):
		var from, to = tocid.Window(types.LevelWeek, now)
		return from, to, true
	case strings.Contains(lower, "last month"):
		var from, to = tocid.Window(types.LevelMonth, now.AddDate(0, -1, 0))
		return from, to, true
	case strings.Contains(lower, "this month"):
		var from, to = tocid.Window(types.LevelMonth, now)
		return from, to, true
	case strings.Contains(lower, "last year"):
		var from, to = tocid.Window(types.LevelYear, now.AddDate(-1, 0, 0))
		return from, to, true
	case strings.Contains(lower, "this year"):
		var from, to = tocid.Window(types.LevelYear, now)
		return from, to, true
	default:
		return 0, 0, false
	}
}
