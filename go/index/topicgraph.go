package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/types"
)

// TopicGraphConfig enumerates the topic graph's tunables from the
// configuration table: half-life and minimum cluster size.
type TopicGraphConfig struct {
	// HalfLifeMs is importance's decay half-life. Default 30 days.
	HalfLifeMs int64
	// MinClusterSize is how many distinct mentions a label needs
	// before it is promoted from a pending candidate into a persisted
	// Topic.
	MinClusterSize int
}

// DefaultTopicGraphConfig returns the spec's stated defaults
// (half_life_days: 30).
func DefaultTopicGraphConfig() TopicGraphConfig {
	const dayMs = int64(24 * 60 * 60 * 1000)
	return TopicGraphConfig{HalfLifeMs: 30 * dayMs, MinClusterSize: 3}
}

// TopicGraph clusters TocNode keywords into Topics with co-occurring
// edges, persisting through the Store's topics/topic_edges column
// families. Clustering here is a simple mention-threshold promotion
// rather than embedding-based clustering, since no embedder is wired
// by default; Search falls back to exact label match for the same
// reason. Both are documented simplifications of the fuller spec,
// not a departure from its persisted shape.
type TopicGraph struct {
	store *store.Store
	cfg   TopicGraphConfig

	mu            sync.Mutex
	pendingCounts map[string]int
}

// NewTopicGraph constructs a TopicGraph backed by st.
func NewTopicGraph(st *store.Store, cfg TopicGraphConfig) *TopicGraph {
	if cfg.HalfLifeMs <= 0 || cfg.MinClusterSize <= 0 {
		cfg = DefaultTopicGraphConfig()
	}
	return &TopicGraph{store: st, cfg: cfg, pendingCounts: make(map[string]int)}
}

// TopicID returns the deterministic topic id for a label.
func TopicID(label string) string {
	return "topic:" + strings.ToLower(strings.TrimSpace(label))
}

// ObserveNode registers one mention of each of node's keywords at
// node.StartMs, and records a co_occurring edge between every pair of
// keywords the node carries together.
func (tg *TopicGraph) ObserveNode(node types.TocNode) error {
	for _, kw := range node.Keywords {
		if err := tg.observeLabel(kw, node.StartMs); err != nil {
			return err
		}
	}
	for i := range node.Keywords {
		for j := range node.Keywords {
			if i == j {
				continue
			}
			var edge = types.TopicEdge{
				SrcTopicID: TopicID(node.Keywords[i]),
				Relation:   types.RelationCoOccurring,
				DstTopicID: TopicID(node.Keywords[j]),
			}
			if err := tg.store.PutTopicEdge(edge); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tg *TopicGraph) observeLabel(label string, tsMs int64) error {
	var id = TopicID(label)

	existing, found, err := tg.store.GetTopic(id)
	if err != nil && recallerr.KindOf(err) != recallerr.NotFound {
		return err
	}
	if found {
		existing.MentionCount++
		existing.LastSeenMs = tsMs
		// Any fresh mention resurrects a dormant topic; a bounded
		// "mention count crosses a threshold inside a refresh window"
		// policy is left as a refinement RefreshStates could apply,
		// but immediate resurrection on mention is always correct.
		existing.State = types.TopicActive
		return tg.store.PutTopic(existing)
	}

	tg.mu.Lock()
	tg.pendingCounts[label]++
	var count = tg.pendingCounts[label]
	if count < tg.cfg.MinClusterSize {
		tg.mu.Unlock()
		return nil
	}
	delete(tg.pendingCounts, label)
	tg.mu.Unlock()

	return tg.store.PutTopic(types.Topic{
		TopicID:      id,
		Label:        label,
		MentionCount: uint64(count),
		LastSeenMs:   tsMs,
		State:        types.TopicActive,
	})
}

// RefreshStates recomputes every persisted Topic's State from its
// read-time Importance, moving topics below types.DormantThreshold to
// dormant. Called by a scheduled sweep; Importance itself is always
// computed fresh by callers and never trusted from a stale State
// alone.
func (tg *TopicGraph) RefreshStates(nowMs int64) error {
	var topics, err = tg.store.ListTopics()
	if err != nil {
		return err
	}
	for _, t := range topics {
		var wantState = types.TopicActive
		if t.Importance(nowMs, tg.cfg.HalfLifeMs) < types.DormantThreshold {
			wantState = types.TopicDormant
		}
		if t.State == wantState {
			continue
		}
		t.State = wantState
		if err := tg.store.PutTopic(t); err != nil {
			return err
		}
	}
	return nil
}

// Search returns the topK topics whose label exactly matches a query
// token, scored by read-time Importance.
func (tg *TopicGraph) Search(query string, nowMs int64, topK int) ([]types.Topic, error) {
	var seen = make(map[string]bool)
	var out []types.Topic
	for _, token := range tokenize(query) {
		if seen[token] {
			continue
		}
		seen[token] = true
		var t, found, err = tg.store.GetTopic(TopicID(token))
		if err != nil && recallerr.KindOf(err) != recallerr.NotFound {
			return nil, err
		}
		if found {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Importance(nowMs, tg.cfg.HalfLifeMs) > out[j].Importance(nowMs, tg.cfg.HalfLifeMs)
	})
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
