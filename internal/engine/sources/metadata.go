package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
)

const ytDataAPIBase = "https://www.googleapis.com/youtube/v3"

// ErrVideoNotFound indicates the metadata API returned no data for an id.
var ErrVideoNotFound = errors.New("no video data available")

// apiLimiter throttles outbound YouTube API and Innertube traffic so a large
// sync job stays under quota and off the abuse radar.
var apiLimiter = rate.NewLimiter(rate.Limit(4), 8)

// VideoDetails is the full metadata record for a single video.
type VideoDetails struct {
	ID           string
	Title        string
	URL          string
	ThumbnailURL string
	UploadDate   string
	Tags         string // JSON-encoded list
	Description  string
	Transcript   string // best-effort, may be empty
}

type ytVideosResp struct {
	Items []struct {
		Kind    string `json:"kind"`
		ID      string `json:"id"`
		Snippet struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			PublishedAt string   `json:"publishedAt"`
			Tags        []string `json:"tags"`
			Thumbnails  struct {
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// MetadataFetcher retrieves per-video metadata from the platform API plus a
// best-effort transcript. The API key comes from settings and may change
// between runs, so it is a field rather than process config.
type MetadataFetcher struct {
	APIKey string
}

// FetchDetails fetches metadata for a video id. Returns ErrVideoNotFound when
// the API has no data; never returns a partially filled record silently.
func (f *MetadataFetcher) FetchDetails(ctx context.Context, videoID string) (*VideoDetails, error) {
	engine.IncrMetadataRequests()
	if err := apiLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", videoID)
	params.Set("key", f.APIKey)

	apiURL := ytDataAPIBase + "/videos?" + params.Encode()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("videos.list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("videos.list %d: %s", resp.StatusCode, string(body))
	}

	var result ytVideosResp
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode videos.list: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, ErrVideoNotFound
	}
	if len(result.Items) > 1 {
		return nil, fmt.Errorf("videos.list returned %d items for one id", len(result.Items))
	}

	item := result.Items[0]
	if item.Kind != "youtube#video" {
		return nil, fmt.Errorf("unexpected item kind %q", item.Kind)
	}

	tags, err := json.Marshal(item.Snippet.Tags)
	if err != nil {
		tags = []byte("[]")
	}

	details := &VideoDetails{
		ID:           item.ID,
		Title:        html.UnescapeString(item.Snippet.Title),
		URL:          "https://www.youtube.com/watch?v=" + item.ID,
		ThumbnailURL: item.Snippet.Thumbnails.Medium.URL,
		UploadDate:   item.Snippet.PublishedAt,
		Tags:         string(tags),
		Description:  html.UnescapeString(item.Snippet.Description),
	}

	if err := apiLimiter.Wait(ctx); err != nil {
		return details, nil
	}
	transcript, err := FetchTranscript(ctx, item.ID)
	if err != nil {
		slog.Warn("metadata: no transcript available",
			slog.String("id", item.ID), slog.Any("error", err))
	} else {
		details.Transcript = transcript
	}
	return details, nil
}

// FetchThumbnail downloads a thumbnail image. Any failure degrades to an
// empty byte slice so a missing image never aborts ingestion.
func (f *MetadataFetcher) FetchThumbnail(ctx context.Context, thumbURL string) []byte {
	if thumbURL == "" {
		engine.IncrThumbnailErrors()
		return []byte{}
	}
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		engine.IncrThumbnailErrors()
		slog.Warn("metadata: thumbnail fetch failed", slog.String("url", thumbURL), slog.Any("error", err))
		return []byte{}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		engine.IncrThumbnailErrors()
		slog.Warn("metadata: thumbnail read failed", slog.String("url", thumbURL), slog.Any("error", err))
		return []byte{}
	}
	return body
}
