package config

import (
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	var c Config
	c.Service.GRPCPort = 8443
	c.Service.MultiAgentMode = MultiAgentSeparate
	c.Log.Level = "info"
	c.Segmenter.TimeGapThresholdMin = 30
	c.Segmenter.TokenThreshold = 4000
	c.Segmenter.OverlapDurationMin = 5
	c.Segmenter.OverlapTokens = 500
	c.Segmenter.MaxToolResultBytes = 1000
	c.Topics.HalfLifeDays = 30
	c.Topics.MinClusterSize = 3
	c.BM25.SegmentOrGripRetentionDays = 30
	c.BM25.DayRetentionDays = 180
	c.BM25.WeekRetentionDays = 1825
	return c
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejectsBadMultiAgentMode(t *testing.T) {
	var c = validConfig()
	c.Service.MultiAgentMode = "bogus"
	require.Error(t, c.Validate())
}

func TestValidateRejectsOutOfRangePort(t *testing.T) {
	var c = validConfig()
	c.Service.GRPCPort = 0
	require.Error(t, c.Validate())

	c.Service.GRPCPort = 70000
	require.Error(t, c.Validate())
}

func TestLogLevelFallsBackToInfoOnUnparsable(t *testing.T) {
	var c = validConfig()
	c.Log.Level = "not-a-level"
	require.Equal(t, log.InfoLevel, c.LogLevel())

	c.Log.Level = "debug"
	require.Equal(t, log.DebugLevel, c.LogLevel())
}

func TestSegmenterConfigConvertsMinutesToDuration(t *testing.T) {
	var c = validConfig()
	var sc = c.SegmenterConfig()
	require.Equal(t, 30*time.Minute, sc.TimeGapThreshold)
	require.Equal(t, uint32(4000), sc.TokenThreshold)
	require.Equal(t, 5*time.Minute, sc.OverlapDuration)
}

func TestBM25RetentionMapsPerLevelDays(t *testing.T) {
	var r = validConfig().BM25Retention()
	require.Equal(t, 30, r.SegmentOrGripDays)
	require.Equal(t, 180, r.DayDays)
	require.Equal(t, 1825, r.WeekDays)
}

func TestTopicGraphConfigConvertsDaysToMs(t *testing.T) {
	var tgc = validConfig().TopicGraphConfig()
	require.Equal(t, int64(30*24*60*60*1000), tgc.HalfLifeMs)
	require.Equal(t, 3, tgc.MinClusterSize)
}
