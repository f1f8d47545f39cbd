package organizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
	"github.com/Zhynem/FeedOrganizer/internal/store"
)

// Sync runs one feed synchronization pass over all tracked channels:
// list recent videos, skip known ids (updating renamed titles in place),
// ingest new ones with metadata, thumbnail, transcript, and classification.
//
// Network and API failures are per-item and non-fatal; store failures abort
// the job. Cancellation surfaces as context.Canceled, which is an early
// exit, not a failure.
func (r *Runner) Sync(ctx context.Context) error {
	runCtx, err := r.state.begin(ctx, KindSync)
	if err != nil {
		return err
	}
	defer r.state.finish()
	defer r.progress("", 0)

	// Snapshot everything the run depends on: settings, known ids and
	// titles, the live category list, and the tracked channel list.
	raw, err := r.store.Settings(runCtx)
	if err != nil {
		return fmt.Errorf("sync: load settings: %w", err)
	}
	settings := ParseSettings(raw)

	knownTitles, err := r.store.VideoIDsAndTitles(runCtx)
	if err != nil {
		return fmt.Errorf("sync: load known videos: %w", err)
	}
	categoryKeys, err := r.store.LLMCategoryKeys(runCtx)
	if err != nil {
		return fmt.Errorf("sync: load categories: %w", err)
	}
	channels, err := r.store.ChannelUsernames(runCtx)
	if err != nil {
		return fmt.Errorf("sync: load channels: %w", err)
	}

	fetcher := r.newFetcher(settings)
	classifier := r.newClassifier(settings)

	for i, channel := range channels {
		if err := runCtx.Err(); err != nil {
			slog.Info("sync: cancelled", slog.String("channel", channel))
			return err
		}

		r.progress("Finding video IDs for "+channel, -1)
		recent, err := r.lister.ListRecent(runCtx, channel)
		if err != nil {
			slog.Warn("sync: listing failed, skipping channel",
				slog.String("channel", channel), slog.Any("error", err))
			continue
		}

		for _, lv := range recent {
			if err := runCtx.Err(); err != nil {
				slog.Info("sync: cancelled", slog.String("channel", channel))
				return err
			}
			if err := r.syncVideo(runCtx, channel, lv.ID, lv.Title, knownTitles, categoryKeys, fetcher, classifier); err != nil {
				return err
			}
		}

		r.progress("Synced "+channel, float64(i+1)/float64(len(channels)))
	}

	slog.Info("sync: complete", slog.Int("channels", len(channels)))
	return nil
}

// syncVideo processes a single listed (id, title) pair. Returns an error only
// for store failures; everything external degrades and skips.
func (r *Runner) syncVideo(ctx context.Context, channel, videoID, listedTitle string,
	knownTitles map[string]string, categoryKeys []string, fetcher Fetcher, classifier Classifier) error {

	if storedTitle, known := knownTitles[videoID]; known {
		if listedTitle != storedTitle {
			if err := r.store.UpdateVideoTitle(ctx, videoID, listedTitle); err != nil {
				return fmt.Errorf("sync: update title %s: %w", videoID, err)
			}
			knownTitles[videoID] = listedTitle
			engine.IncrRenamesDetected()
			slog.Info("sync: video renamed",
				slog.String("id", videoID),
				slog.String("old", storedTitle),
				slog.String("new", listedTitle))
		}
		return nil
	}

	details, err := fetcher.FetchDetails(ctx, videoID)
	if err != nil {
		slog.Warn("sync: metadata fetch failed, skipping video",
			slog.String("id", videoID), slog.Any("error", err))
		return nil
	}

	thumbnail := fetcher.FetchThumbnail(ctx, details.ThumbnailURL)

	r.progress("Classifying "+details.Title, -1)
	labels := classifier.Categorize(ctx, details.Title, details.Transcript, categoryKeys)

	video := store.Video{
		VideoID:     details.ID,
		Username:    channel,
		URL:         details.URL,
		Title:       details.Title,
		UploadDate:  details.UploadDate,
		Thumbnail:   thumbnail,
		Tags:        details.Tags,
		Description: details.Description,
		Transcript:  details.Transcript,
	}
	if err := r.store.AddVideo(ctx, video, intersect(labels, categoryKeys)); err != nil {
		return fmt.Errorf("sync: persist %s: %w", details.ID, err)
	}
	knownTitles[details.ID] = details.Title
	engine.IncrVideosIngested()
	slog.Info("sync: video added",
		slog.String("id", details.ID), slog.String("title", details.Title))
	r.progress("Added "+details.Title, -1)
	return nil
}
