package organizer

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
)

// Reclassify rebuilds every video↔category association from scratch: clear
// the association table, then categorize each stored video again. Videos are
// visited in randomized order so a partial run samples classification
// quality across the corpus instead of replaying insertion order.
//
// Cancellation between videos leaves already-processed videos reclassified
// and the remainder uncategorized until the next full or per-video run; that
// window is accepted by design.
func (r *Runner) Reclassify(ctx context.Context) error {
	runCtx, err := r.state.begin(ctx, KindReclassify)
	if err != nil {
		return err
	}
	defer r.state.finish()
	defer r.progress("", 0)

	start := time.Now()

	raw, err := r.store.Settings(runCtx)
	if err != nil {
		return fmt.Errorf("reclassify: load settings: %w", err)
	}
	settings := ParseSettings(raw)
	classifier := r.newClassifier(settings)

	categoryKeys, err := r.store.LLMCategoryKeys(runCtx)
	if err != nil {
		return fmt.Errorf("reclassify: load categories: %w", err)
	}
	videos, err := r.store.FullVideos(runCtx)
	if err != nil {
		return fmt.Errorf("reclassify: load videos: %w", err)
	}

	slog.Info("reclassify: clearing associations", slog.Int("videos", len(videos)))
	if err := r.store.ClearVideoCategories(runCtx); err != nil {
		return fmt.Errorf("reclassify: clear associations: %w", err)
	}

	rand.Shuffle(len(videos), func(i, j int) {
		videos[i], videos[j] = videos[j], videos[i]
	})

	finished := 0
	for _, v := range videos {
		if err := runCtx.Err(); err != nil {
			slog.Info("reclassify: cancelled",
				slog.Int("finished", finished), slog.Int("total", len(videos)))
			return err
		}

		r.progress("Classifying "+v.Title, float64(finished)/float64(len(videos)))
		labels := classifier.Categorize(runCtx, v.Title, v.Transcript, categoryKeys)
		if err := r.store.AddVideoCategories(runCtx, v.VideoID, intersect(labels, categoryKeys)); err != nil {
			return fmt.Errorf("reclassify: persist %s: %w", v.VideoID, err)
		}
		engine.IncrVideosReclassified()

		finished++
		r.progress(v.Title, float64(finished)/float64(len(videos)))
	}

	slog.Info("reclassify: complete",
		slog.Int("videos", finished),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)))
	return nil
}

// ReclassifyOne re-runs classification for a single stored video, replacing
// its associations.
func (r *Runner) ReclassifyOne(ctx context.Context, videoID string) error {
	runCtx, err := r.state.begin(ctx, KindReclassify)
	if err != nil {
		return err
	}
	defer r.state.finish()
	defer r.progress("", 0)

	raw, err := r.store.Settings(runCtx)
	if err != nil {
		return fmt.Errorf("reclassify: load settings: %w", err)
	}
	classifier := r.newClassifier(ParseSettings(raw))

	categoryKeys, err := r.store.LLMCategoryKeys(runCtx)
	if err != nil {
		return fmt.Errorf("reclassify: load categories: %w", err)
	}
	v, err := r.store.VideoByID(runCtx, videoID)
	if err != nil {
		return fmt.Errorf("reclassify: load video %s: %w", videoID, err)
	}

	if err := r.store.DeleteVideoCategories(runCtx, videoID); err != nil {
		return fmt.Errorf("reclassify: clear %s: %w", videoID, err)
	}
	labels := classifier.Categorize(runCtx, v.Title, v.Transcript, categoryKeys)
	if err := r.store.AddVideoCategories(runCtx, videoID, intersect(labels, categoryKeys)); err != nil {
		return fmt.Errorf("reclassify: persist %s: %w", videoID, err)
	}
	engine.IncrVideosReclassified()
	return nil
}
