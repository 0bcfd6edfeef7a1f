package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectTier(t *testing.T) {
	require.Equal(t, TierFull, detectTier(true, true, true))
	require.Equal(t, TierHybrid, detectTier(true, true, false))
	require.Equal(t, TierSemantic, detectTier(false, true, false))
	require.Equal(t, TierSemantic, detectTier(false, true, true), "topics alone without bm25 still reports semantic per vector presence")
	require.Equal(t, TierKeyword, detectTier(true, false, false))
	require.Equal(t, TierAgentic, detectTier(false, false, false))
	require.Equal(t, TierAgentic, detectTier(false, false, true))
}
