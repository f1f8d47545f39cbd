package organizer

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
	"github.com/Zhynem/FeedOrganizer/internal/engine/sources"
	"github.com/Zhynem/FeedOrganizer/internal/store"
)

// Lister lists recent (video id, title) pairs for a channel.
type Lister interface {
	ListRecent(ctx context.Context, username string) ([]sources.ListedVideo, error)
}

// Fetcher retrieves full metadata and thumbnails for a video id.
type Fetcher interface {
	FetchDetails(ctx context.Context, videoID string) (*sources.VideoDetails, error)
	FetchThumbnail(ctx context.Context, thumbURL string) []byte
}

// Classifier assigns category labels to a video.
type Classifier interface {
	Categorize(ctx context.Context, title, transcript string, available []string) []string
}

// FetcherFactory builds a metadata fetcher from the run's settings snapshot
// (the API key is operator-editable mid-session).
type FetcherFactory func(s PipelineSettings) Fetcher

// ClassifierFactory builds a classifier from the run's settings snapshot
// (model name, prompts, and stop words are operator-editable mid-session).
type ClassifierFactory func(s PipelineSettings) Classifier

// Progress reports job progress: a human-readable label and a completion
// fraction in [0,1], or a negative fraction for indeterminate work. The
// terminal call is ("", 0).
type Progress func(label string, fraction float64)

// PipelineSettings is the typed settings snapshot one job runs against.
type PipelineSettings struct {
	Model           string
	CtxSize         int
	SystemPrompt    string
	UserPrompt      string
	CustomStopWords []string
	YTAPIKey        string
}

// ParseSettings decodes the raw settings map, falling back to compiled-in
// defaults for missing or malformed values.
func ParseSettings(raw map[string]string) PipelineSettings {
	ps := PipelineSettings{
		Model:        raw[store.SettingModel],
		SystemPrompt: raw[store.SettingSystemPrompt],
		UserPrompt:   raw[store.SettingUserPrompt],
		YTAPIKey:     raw[store.SettingYTAPIKey],
	}
	if ps.SystemPrompt == "" {
		ps.SystemPrompt = engine.DefaultSystemPrompt
	}
	if ps.UserPrompt == "" {
		ps.UserPrompt = engine.DefaultUserPrompt
	}
	ps.CtxSize = 1200
	if n, err := strconv.Atoi(raw[store.SettingCtxSize]); err == nil && n > 0 {
		ps.CtxSize = n
	}
	if err := json.Unmarshal([]byte(raw[store.SettingCustomStopWords]), &ps.CustomStopWords); err != nil {
		ps.CustomStopWords = engine.DefaultCustomStopWords
	}
	return ps
}

// Runner owns the job state and executes sync and reclassification jobs.
type Runner struct {
	store         *store.Store
	lister        Lister
	newFetcher    FetcherFactory
	newClassifier ClassifierFactory
	progress      Progress

	state jobState
}

// New assembles a Runner. progress may be nil.
func New(st *store.Store, lister Lister, nf FetcherFactory, nc ClassifierFactory, progress Progress) *Runner {
	if progress == nil {
		progress = func(string, float64) {}
	}
	return &Runner{
		store:         st,
		lister:        lister,
		newFetcher:    nf,
		newClassifier: nc,
		progress:      progress,
	}
}

// Running reports the currently running job kind, or "" when idle.
func (r *Runner) Running() Kind {
	return r.state.Running()
}

// intersect keeps the labels present in the stored key set, preserving order.
// Sanitization upstream already restricts labels to the live category list;
// this guards the persistence boundary against any drift between the two.
func intersect(labels, stored []string) []string {
	valid := make(map[string]bool, len(stored))
	for _, s := range stored {
		valid[s] = true
	}
	kept := make([]string, 0, len(labels))
	for _, l := range labels {
		if valid[l] {
			kept = append(kept, l)
		}
	}
	return kept
}
