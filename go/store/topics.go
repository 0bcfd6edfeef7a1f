package store

import (
	"encoding/json"
	"fmt"

	"github.com/recall-memory/recall/go/recallerr"
	"github.com/recall-memory/recall/go/types"
)

// PutTopic upserts a Topic. Callers recompute MentionCount/LastSeenMs
// themselves (typically via GetTopic then a merge); importance is
// never stored, only derived at read time.
func (s *Store) PutTopic(topic types.Topic) error {
	var raw, err = json.Marshal(topic)
	if err != nil {
		return recallerr.New(recallerr.InvalidInput, "store.put_topic", err)
	}
	if err := s.db.PutCF(s.wo, s.cf(cfTopics), []byte(topic.TopicID), raw); err != nil {
		return recallerr.New(recallerr.Storage, "store.put_topic", err)
	}
	s.hot.Remove(topicCacheKey(topic.TopicID))
	return nil
}

func topicCacheKey(topicID string) string { return "topic:" + topicID }

// GetTopic returns the Topic with the given id.
func (s *Store) GetTopic(topicID string) (types.Topic, bool, error) {
	if cached, ok := s.hot.Get(topicCacheKey(topicID)); ok {
		var t types.Topic
		if err := json.Unmarshal(cached, &t); err != nil {
			return types.Topic{}, false, recallerr.New(recallerr.Storage, "store.get_topic", err)
		}
		return t, true, nil
	}
	var raw, found, err = get(s.db, s.ro, s.cf(cfTopics), []byte(topicID))
	if err != nil {
		return types.Topic{}, false, recallerr.New(recallerr.Storage, "store.get_topic", err)
	}
	if !found {
		return types.Topic{}, false, recallerr.New(recallerr.NotFound, "store.get_topic", fmt.Errorf("topic %s not found", topicID))
	}
	var t types.Topic
	if err := json.Unmarshal(raw, &t); err != nil {
		return types.Topic{}, false, recallerr.New(recallerr.Storage, "store.get_topic", err)
	}
	s.hot.Add(topicCacheKey(topicID), raw)
	return t, true, nil
}

// ListTopics scans every topic. Used by the topic graph's decay sweep.
func (s *Store) ListTopics() ([]types.Topic, error) {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfTopics))
	defer iter.Close()

	var out []types.Topic
	for iter.SeekToFirst(); iter.Valid(); iter.Next() {
		var t types.Topic
		var val = iter.Value()
		if err := json.Unmarshal(val.Data(), &t); err != nil {
			val.Free()
			return nil, recallerr.New(recallerr.Storage, "store.list_topics", err)
		}
		val.Free()
		out = append(out, t)
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.list_topics", err)
	}
	return out, nil
}

// PutTopicEdge atomically records a directed topic_edges row. Edges
// are modeled as a separate column family keyed by (src, relation,
// dst) rather than an in-node adjacency list, avoiding read-modify-
// write races when multiple mentions update the same topic
// concurrently (see design notes on the topic graph).
func (s *Store) PutTopicEdge(edge types.TopicEdge) error {
	var key = topicEdgeKey(edge.SrcTopicID, string(edge.Relation), edge.DstTopicID)
	if err := s.db.PutCF(s.wo, s.cf(cfTopicEdges), key, nil); err != nil {
		return recallerr.New(recallerr.Storage, "store.put_topic_edge", err)
	}
	return nil
}

// ListTopicEdges returns every edge originating at srcTopicID.
func (s *Store) ListTopicEdges(srcTopicID string) ([]types.TopicEdge, error) {
	var iter = s.db.NewIteratorCF(s.ro, s.cf(cfTopicEdges))
	defer iter.Close()

	var prefix = topicEdgePrefix(srcTopicID)
	var out []types.TopicEdge
	for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
		var rest = string(iter.Key().Data())[len(prefix):]
		for i := 0; i < len(rest); i++ {
			if rest[i] == ':' {
				out = append(out, types.TopicEdge{
					SrcTopicID: srcTopicID,
					Relation:   types.Relation(rest[:i]),
					DstTopicID: rest[i+1:],
				})
				break
			}
		}
	}
	if err := iter.Err(); err != nil {
		return nil, recallerr.New(recallerr.Storage, "store.list_topic_edges", err)
	}
	return out, nil
}
