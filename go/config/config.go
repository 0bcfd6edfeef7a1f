// Package config defines recall's process-wide configuration surface:
// one grouped, tagged struct per subsystem, loaded once at process
// start via github.com/jessevdk/go-flags and handed to cmd/tocengine's
// wiring as an immutable snapshot. No component reads flags or env
// vars itself; every constructor takes a plain value derived from
// this struct, per the "pass an immutable snapshot" design note.
package config

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/recall-memory/recall/go/index"
	"github.com/recall-memory/recall/go/indexer"
	"github.com/recall-memory/recall/go/router"
	"github.com/recall-memory/recall/go/segmenter"
	"github.com/recall-memory/recall/go/tocbuilder"
)

// MultiAgentMode selects whether subagent conversations are segmented
// as part of their parent session or as independent sessions.
type MultiAgentMode string

const (
	MultiAgentSeparate MultiAgentMode = "separate"
	MultiAgentShared   MultiAgentMode = "shared"
)

// Config is the top-level configuration object for every recall
// process: the service entrypoint (cmd/tocengine) and any admin tool
// that needs the same options. Grouped fields mirror the enumerated
// configuration table in the wire contract.
type Config struct {
	Store struct {
		DBPath string `long:"db-path" env:"DB_PATH" default:"./recall-data" description:"Path to the RocksDB data directory"`
	} `group:"Store" namespace:"store" env-namespace:"STORE"`

	Service struct {
		GRPCHost        string         `long:"grpc-host" env:"GRPC_HOST" default:"127.0.0.1" description:"Host the service facade binds to"`
		GRPCPort        int            `long:"grpc-port" env:"GRPC_PORT" default:"8443" description:"Port the service facade binds to"`
		MultiAgentMode  MultiAgentMode `long:"multi-agent-mode" env:"MULTI_AGENT_MODE" default:"separate" description:"How subagent conversations are segmented: separate or shared"`
	} `group:"Service" namespace:"service" env-namespace:"SERVICE"`

	Log struct {
		Level string `long:"level" env:"LEVEL" default:"info" description:"Logging level: debug, info, warn, error"`
	} `group:"Logging" namespace:"log" env-namespace:"LOG"`

	Segmenter struct {
		TimeGapThresholdMin int `long:"time-gap-threshold-min" env:"TIME_GAP_THRESHOLD_MIN" default:"30" description:"Inter-event gap, in minutes, that forces a segment cut"`
		TokenThreshold      int `long:"token-threshold" env:"TOKEN_THRESHOLD" default:"4000" description:"Soft cap on a segment body's token count"`
		OverlapDurationMin  int `long:"overlap-duration-min" env:"OVERLAP_DURATION_MIN" default:"5" description:"Max duration, in minutes, of carryover into the next segment"`
		OverlapTokens       int `long:"overlap-tokens" env:"OVERLAP_TOKENS" default:"500" description:"Max tokens of carryover into the next segment"`
		MaxToolResultBytes  int `long:"max-tool-result-bytes" env:"MAX_TOOL_RESULT_BYTES" default:"1000" description:"Truncation size, in bytes, for tool_result token counting"`
	} `group:"Segmenter" namespace:"segmenter" env-namespace:"SEGMENTER"`

	Summarizer struct {
		Provider string `long:"provider" env:"PROVIDER" default:"local" description:"Summarizer capability provider: local (deterministic) or a named LLM provider"`
		Model    string `long:"model" env:"MODEL" default:"" description:"Model identifier passed to the summarizer provider"`
	} `group:"Summarizer" namespace:"summarizer" env-namespace:"SUMMARIZER"`

	Topics struct {
		Enabled        bool `long:"enabled" env:"ENABLED" description:"Enable the topic graph indexer"`
		HalfLifeDays   int  `long:"half-life-days" env:"HALF_LIFE_DAYS" default:"30" description:"Topic importance decay half-life, in days"`
		MinClusterSize int  `long:"min-cluster-size" env:"MIN_CLUSTER_SIZE" default:"3" description:"Minimum distinct mentions before a label is promoted to a Topic"`
	} `group:"Topics" namespace:"topics" env-namespace:"TOPICS"`

	BM25 struct {
		SegmentOrGripRetentionDays int `long:"segment-grip-retention-days" env:"SEGMENT_GRIP_RETENTION_DAYS" default:"30" description:"BM25 retention for segment/grip documents, in days"`
		DayRetentionDays           int `long:"day-retention-days" env:"DAY_RETENTION_DAYS" default:"180" description:"BM25 retention for day documents, in days"`
		WeekRetentionDays          int `long:"week-retention-days" env:"WEEK_RETENTION_DAYS" default:"1825" description:"BM25 retention for week documents, in days"`
		PruneSchedule              string `long:"prune-schedule" env:"PRUNE_SCHEDULE" default:"0 3 * * *" description:"Cron schedule for the BM25 prune+optimize sweep"`
	} `group:"BM25" namespace:"bm25" env-namespace:"BM25"`

	Embedder struct {
		Provider string `long:"provider" env:"PROVIDER" default:"" description:"Vector embedder capability provider; empty disables the vector layer"`
		Model    string `long:"model" env:"MODEL" default:"" description:"Model identifier passed to the embedder provider"`
	} `group:"Embedder" namespace:"embedder" env-namespace:"EMBEDDER"`
}

// LogLevel parses c.Log.Level, defaulting to logrus.InfoLevel on an
// unrecognized string rather than failing process startup over a typo.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// SegmenterConfig derives a segmenter.Config from the flat minute/byte
// fields above, converting to the time.Duration-based shape that
// package expects.
func (c Config) SegmenterConfig() segmenter.Config {
	return segmenter.Config{
		TimeGapThreshold:  time.Duration(c.Segmenter.TimeGapThresholdMin) * time.Minute,
		TokenThreshold:    uint32(c.Segmenter.TokenThreshold),
		OverlapDuration:   time.Duration(c.Segmenter.OverlapDurationMin) * time.Minute,
		OverlapTokens:     uint32(c.Segmenter.OverlapTokens),
		MaxToolResultSize: c.Segmenter.MaxToolResultBytes,
	}
}

// TocBuilderConfig derives a tocbuilder.Config, leaving fields this
// Config has no opinion on (worker counts, poll interval) at their
// package defaults.
func (c Config) TocBuilderConfig() tocbuilder.Config {
	return tocbuilder.Config{SegmenterConfig: c.SegmenterConfig()}
}

// BM25Retention derives an index.Retention from the enumerated
// per-level day counts.
func (c Config) BM25Retention() index.Retention {
	return index.Retention{
		SegmentOrGripDays: c.BM25.SegmentOrGripRetentionDays,
		DayDays:           c.BM25.DayRetentionDays,
		WeekDays:          c.BM25.WeekRetentionDays,
	}
}

// TopicGraphConfig derives an index.TopicGraphConfig from the days-based
// half-life field.
func (c Config) TopicGraphConfig() index.TopicGraphConfig {
	const dayMs = int64(24 * 60 * 60 * 1000)
	return index.TopicGraphConfig{
		HalfLifeMs:     int64(c.Topics.HalfLifeDays) * dayMs,
		MinClusterSize: c.Topics.MinClusterSize,
	}
}

// IndexerConfig derives an indexer.Config; no flag currently overrides
// its batch size or poll interval, so it runs at the package defaults,
// the same "leave it at the package default" posture TocBuilderConfig
// takes for its own worker counts and poll interval.
func (c Config) IndexerConfig() indexer.Config {
	return indexer.Config{}
}

// RouterConfig returns the router's default tuning; no flag currently
// overrides it, but it is threaded through here so one is added without
// touching cmd/tocengine.
func (c Config) RouterConfig() router.Config {
	return router.DefaultConfig()
}

// Validate rejects configuration combinations that would otherwise
// fail confusingly deep inside wiring, e.g. a multi_agent_mode typo.
func (c Config) Validate() error {
	switch c.Service.MultiAgentMode {
	case MultiAgentSeparate, MultiAgentShared, "":
	default:
		return fmt.Errorf("config: multi_agent_mode must be %q or %q, got %q", MultiAgentSeparate, MultiAgentShared, c.Service.MultiAgentMode)
	}
	if c.Service.GRPCPort <= 0 || c.Service.GRPCPort > 65535 {
		return fmt.Errorf("config: grpc-port %d out of range", c.Service.GRPCPort)
	}
	return nil
}
