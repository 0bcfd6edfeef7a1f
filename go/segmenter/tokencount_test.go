package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultTokenCounterCountsNonEmptyText(t *testing.T) {
	var c = DefaultTokenCounter{}
	require.Greater(t, c.Count("the quick brown fox jumps over the lazy dog"), uint32(0))
}

func TestDefaultTokenCounterGrowsWithLongerText(t *testing.T) {
	var c = DefaultTokenCounter{}
	var short = "deploy succeeded"
	var long = strings.Repeat(short+" ", 20)
	require.Greater(t, c.Count(long), c.Count(short), "a much longer text must count more tokens, whether BPE-encoded or chars/4-estimated")
}
