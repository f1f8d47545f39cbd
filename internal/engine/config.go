package engine

import (
	"context"
	"net/http"
	"time"
)

// ChatFunc sends a system+user message pair to the chat model and returns
// the raw response text. Injected per job so tests can stub the model and
// so the model name follows the settings snapshot of each run.
type ChatFunc func(ctx context.Context, system, user string) (string, error)

// Config holds all engine configuration, injected from main.
type Config struct {
	DBPath string

	LLMAPIBase   string
	LLMAPIKey    string
	LLMMaxTokens int
	LLMRetries   int

	// Term-frequency extraction defaults.
	FreqResultSize int
	FreqGramLen    int
	FreqMinCount   int

	FetchTimeout time.Duration

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = channel page listing disabled
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (sources, organizer).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	cfg = c
	Cfg = &cfg
}
