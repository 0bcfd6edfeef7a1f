// Package router implements the retrieval router: tier detection over
// the three indexers plus TOC navigation, a small rule-based intent
// classifier, per-intent layer composition with fallback, and the grip
// expansion operation's sibling — the response envelope every query
// returns.
package router

import "strings"

// Intent is the query's classified shape, deciding which layers the
// router tries first.
type Intent string

const (
	IntentLocate    Intent = "locate"
	IntentAnswer    Intent = "answer"
	IntentExplore   Intent = "explore"
	IntentTimeBoxed Intent = "time_boxed"
)

var timePhrases = []string{
	"today", "yesterday", "this week", "last week", "this month", "last month",
	"this year", "last year", "ago", "between", "since",
}

var questionWords = []string{"who", "what", "when", "where", "why", "how", "which", "did", "does", "do", "is", "are", "can"}

// ClassifyIntent is a deterministic, small rule-based scorer — never
// an LLM call — assigning one of the four intents from a single pass
// over the query text: a quoted phrase means Locate, a time phrase
// means TimeBoxed, question form means Answer, and anything else is
// treated as a bare topical noun phrase, Explore.
func ClassifyIntent(query string) Intent {
	if strings.Contains(query, `"`) {
		return IntentLocate
	}

	var lower = strings.ToLower(query)
	for _, phrase := range timePhrases {
		if strings.Contains(lower, phrase) {
			return IntentTimeBoxed
		}
	}

	if isQuestion(lower) {
		return IntentAnswer
	}

	return IntentExplore
}

func isQuestion(lowerQuery string) bool {
	if strings.HasSuffix(strings.TrimSpace(lowerQuery), "?") {
		return true
	}
	var fields = strings.Fields(lowerQuery)
	if len(fields) == 0 {
		return false
	}
	var first = fields[0]
	for _, w := range questionWords {
		if first == w {
			return true
		}
	}
	return false
}
