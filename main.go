// FeedOrganizer — tracked-channel video ingestion and LLM classification.
//
// Syncs videos from tracked channels into an embedded SQLite store and
// assigns each one operator-defined category labels using a local chat
// model driven by transcript term frequencies.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/spf13/cobra"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
	"github.com/Zhynem/FeedOrganizer/internal/engine/sources"
	"github.com/Zhynem/FeedOrganizer/internal/organizer"
	"github.com/Zhynem/FeedOrganizer/internal/store"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "feedorganizer",
	Short:   "Ingest and classify videos from tracked channels",
	Version: version,
}

func main() {
	initEngine()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initEngine() {
	c := engine.Config{
		DBPath:         env.Str("FEEDORG_DB", "data.db3"),
		LLMAPIBase:     env.Str("LLM_API_BASE", "http://127.0.0.1:11434/v1"),
		LLMAPIKey:      env.Str("LLM_API_KEY", "ollama"),
		LLMMaxTokens:   env.Int("LLM_MAX_TOKENS", 500),
		LLMRetries:     env.Int("LLM_RETRIES", 5),
		FreqResultSize: env.Int("FREQ_RESULT_SIZE", 25),
		FreqGramLen:    env.Int("FREQ_GRAM_LEN", 3),
		FreqMinCount:   env.Int("FREQ_MIN_COUNT", 1),
		FetchTimeout:   env.Duration("FETCH_TIMEOUT", 10*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}

	bc, err := stealth.NewClient(stealth.WithTimeout(15))
	if err != nil {
		slog.Error("stealth client init failed", slog.Any("error", err))
	} else {
		c.BrowserClient = bc
	}

	engine.Init(c)
}

// openStore opens the configured database, exiting on failure: a store that
// cannot open is not locally recoverable.
func openStore() *store.Store {
	st, err := store.Open(engine.Cfg.DBPath)
	if err != nil {
		slog.Error("store open failed", slog.String("path", engine.Cfg.DBPath), slog.Any("error", err))
		os.Exit(1)
	}
	return st
}

// newRunner assembles the job runner with production collaborators. The
// fetcher and classifier are rebuilt per job from that job's settings
// snapshot, so mid-session settings edits take effect on the next run.
func newRunner(st *store.Store, progress organizer.Progress) *organizer.Runner {
	lister := sources.NewChannelLister(engine.Cfg.BrowserClient)

	newFetcher := func(ps organizer.PipelineSettings) organizer.Fetcher {
		return &sources.MetadataFetcher{APIKey: ps.YTAPIKey}
	}

	newClassifier := func(ps organizer.PipelineSettings) organizer.Classifier {
		client := llm.NewClient(engine.Cfg.LLMAPIBase, engine.Cfg.LLMAPIKey, ps.Model,
			llm.WithMaxTokens(engine.Cfg.LLMMaxTokens),
			llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		)
		return &engine.Classifier{
			Chat: func(ctx context.Context, system, user string) (string, error) {
				return client.Complete(ctx, system, user)
			},
			SystemPrompt: ps.SystemPrompt,
			UserPrompt:   ps.UserPrompt,
			CustomStop:   ps.CustomStopWords,
			ResultSize:   engine.Cfg.FreqResultSize,
			GramLen:      engine.Cfg.FreqGramLen,
			MinCount:     engine.Cfg.FreqMinCount,
			CtxWords:     ps.CtxSize,
			Retries:      engine.Cfg.LLMRetries,
		}
	}

	return organizer.New(st, lister, newFetcher, newClassifier, progress)
}
