// Command tocengine is recall's thin process entrypoint: it loads
// configuration, opens the Store, wires the Segmenter/TocBuilder
// pipeline and the BM25/vector/topic indexers, and serves the Facade.
// It carries no RPC framing of its own (see go/service), no daemon
// supervision beyond a signal-triggered shutdown, and no config file
// parser: configuration comes only from command-line flags and
// environment variables — all per the wire-service Non-goal.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/recall-memory/recall/go/config"
	"github.com/recall-memory/recall/go/gripexpander"
	"github.com/recall-memory/recall/go/index"
	"github.com/recall-memory/recall/go/indexer"
	"github.com/recall-memory/recall/go/ops"
	"github.com/recall-memory/recall/go/router"
	"github.com/recall-memory/recall/go/service"
	"github.com/recall-memory/recall/go/store"
	"github.com/recall-memory/recall/go/summarizer"
	"github.com/recall-memory/recall/go/tocbuilder"
)

const iniFilename = "recall.ini"

// Config is the top-level configuration object of the tocengine
// process.
var Config = new(config.Config)

type cmdServe struct{}

func (cmdServe) Execute(_ []string) error {
	if err := Config.Validate(); err != nil {
		return err
	}
	log.SetLevel(Config.LogLevel())

	log.WithFields(log.Fields{"config": Config}).Info("tocengine configuration")

	var logger = ops.StdLogger()
	var metrics = ops.NewMetrics(promRegistry())

	var st, err = store.Open(Config.Store.DBPath, logger, store.DefaultOptions())
	if err != nil {
		return err
	}
	defer st.Close()

	var eventSummarizer summarizer.Summarizer = summarizer.Local{}
	var rollupSummarizer summarizer.Summarizer = summarizer.Rollup{}
	var builder = tocbuilder.New(st, eventSummarizer, rollupSummarizer, nil, logger, metrics, Config.TocBuilderConfig())

	var bm25 = index.NewBM25Index(Config.BM25Retention())
	var vector = index.NewVectorIndex()
	var embedder index.Embedder // no concrete provider wired; vector layer stays unavailable until one is.
	var topics *index.TopicGraph
	if Config.Topics.Enabled {
		topics = index.NewTopicGraph(st, Config.TopicGraphConfig())
	}
	var idxConsumer = indexer.New(st, bm25, vector, embedder, topics, logger, metrics, Config.IndexerConfig())

	var rtr = router.New(st, bm25, vector, topics, nil, logger, Config.RouterConfig())
	var expander = gripexpander.New(st)
	var facade = service.New(st, expander, rtr, logger)
	_ = facade // bound to the wire-service shell, out of scope here.

	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	var signalCh = make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		var sig = <-signalCh
		log.WithField("signal", sig).Info("caught signal, shutting down")
		cancel()
	}()

	// The BM25/vector indexes hold no durable state of their own, so
	// every process start replays them from the Store before the live
	// outbox consumer begins draining new entries.
	if err := idxConsumer.Rebuild(ctx); err != nil {
		return err
	}

	var g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error { return builder.Run(gctx) })
	g.Go(func() error { return idxConsumer.Run(gctx) })
	return g.Wait()
}

func promRegistry() prometheus.Registerer {
	return prometheus.NewRegistry()
}

func main() {
	var parser = flags.NewParser(Config, flags.Default)

	_, _ = parser.AddCommand("serve", "Serve the TocBuilder driver loop", `
Opens the Store, wires the segmentation/summarization/rollup pipeline
and the configured indexers, and runs until signaled to exit (SIGTERM
or SIGINT).
`, &cmdServe{})

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
