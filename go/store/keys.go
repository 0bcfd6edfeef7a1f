package store

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Key encodings match the grammars in the wire contract exactly.
// Zero-padded decimal fields sort correctly under RocksDB's default
// bytewise comparator.

func eventKey(sessionID string, tsMs int64, eventID uint64) []byte {
	return []byte(fmt.Sprintf("%s:%013d:%020d", sessionID, tsMs, eventID))
}

// eventKeyPrefix returns the prefix common to every event key for a
// session, for bounded prefix iteration.
func eventKeyPrefix(sessionID string) []byte {
	return []byte(sessionID + ":")
}

func eventByIDKey(eventID uint64) []byte {
	return []byte(fmt.Sprintf("%020d", eventID))
}

func tocChildKey(parentID string, childStartMs int64, childID string) []byte {
	return []byte(fmt.Sprintf("%s:%013d:%s", parentID, childStartMs, childID))
}

func tocChildPrefix(parentID string) []byte {
	return []byte(parentID + ":")
}

func gripByNodeKey(nodeID, gripID string) []byte {
	return []byte(nodeID + ":" + gripID)
}

func gripByNodePrefix(nodeID string) []byte {
	return []byte(nodeID + ":")
}

// outboxKey is a fixed-width big-endian encoding of seq, so the
// column family's natural key order is also seq order.
func outboxKey(seq uint64) []byte {
	var b = make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func outboxKeySeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}

func checkpointKey(jobKind, scopeKey string) []byte {
	return []byte(jobKind + ":" + scopeKey)
}

func topicEdgeKey(srcTopicID string, relation string, dstTopicID string) []byte {
	return []byte(srcTopicID + ":" + relation + ":" + dstTopicID)
}

func topicEdgePrefix(srcTopicID string) []byte {
	return []byte(srcTopicID + ":")
}

// splitTocChildKey recovers childID from a toc_children row key under
// parentID, reporting false if the key does not have that shape.
func splitTocChildKey(key []byte, parentID string) (childID string, ok bool) {
	var rest = strings.TrimPrefix(string(key), parentID+":")
	if rest == string(key) {
		return "", false
	}
	var idx = strings.IndexByte(rest, ':')
	if idx < 0 {
		return "", false
	}
	return rest[idx+1:], true
}
