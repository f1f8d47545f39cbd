package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
)

// Video Lister — scrapes a channel's video listing page for (id, title)
// pairs. The page markup is at the whims of YouTube: the anchor layout is the
// primary contract, the embedded ytInitialData JSON the fallback.

// ListedVideo is one (video id, title) pair from a channel listing page.
type ListedVideo struct {
	ID    string
	Title string
}

// ChannelLister lists recent videos via the shared browser-fingerprint
// client. The client is long-lived and reused across channels within a job.
type ChannelLister struct {
	bc *engine.BrowserClient
}

// NewChannelLister returns a lister backed by the given browser client.
func NewChannelLister(bc *engine.BrowserClient) *ChannelLister {
	return &ChannelLister{bc: bc}
}

// ListRecent fetches the channel's /videos page and extracts its recent
// (video id, title) pairs. An empty result is not an error: a channel with
// no new videos is a normal condition.
func (l *ChannelLister) ListRecent(ctx context.Context, username string) ([]ListedVideo, error) {
	if l.bc == nil {
		return nil, errors.New("lister: browser client not configured")
	}
	engine.IncrListerRequests()

	pageURL := fmt.Sprintf("https://www.youtube.com/@%s/videos", username)
	headers := engine.ChromeHeaders()
	headers["accept-language"] = "en-US,en;q=0.9"

	data, err := engine.RetryDo(ctx, engine.DefaultRetryConfig, func() ([]byte, error) {
		body, _, status, err := l.bc.Do("GET", pageURL, headers, nil)
		if err != nil {
			return nil, err
		}
		if status != 200 {
			return nil, fmt.Errorf("channel page status %d", status)
		}
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("lister: fetch %s: %w", pageURL, err)
	}

	videos, err := parseChannelAnchors(data)
	if err == nil && len(videos) > 0 {
		return videos, nil
	}
	if err != nil {
		slog.Debug("lister: anchor parse failed, trying ytInitialData", slog.Any("error", err))
	}
	return parseChannelInitialData(data), nil
}

// parseChannelAnchors extracts videos from the rendered page's
// a#video-title-link anchors. Hrefs come as "watch?v=<id>".
func parseChannelAnchors(data []byte) ([]ListedVideo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}

	var videos []ListedVideo
	doc.Find("a#video-title-link").Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		idx := strings.LastIndex(href, "v=")
		if idx < 0 {
			return
		}
		id := href[idx+2:]
		if amp := strings.IndexByte(id, '&'); amp >= 0 {
			id = id[:amp]
		}
		title, _ := s.Attr("title")
		if id == "" {
			return
		}
		videos = append(videos, ListedVideo{ID: id, Title: html.UnescapeString(title)})
	})
	return videos, nil
}

const ytInitialDataMarker = "var ytInitialData = "

// parseChannelInitialData extracts videos by walking the page's embedded
// ytInitialData JSON for videoRenderer entries.
func parseChannelInitialData(data []byte) []ListedVideo {
	idx := bytes.Index(data, []byte(ytInitialDataMarker))
	if idx < 0 {
		return nil
	}
	jsonData := extractJSON(data[idx+len(ytInitialDataMarker):])
	if jsonData == nil {
		return nil
	}

	var videos []ListedVideo
	seen := make(map[string]bool)
	var walk func(v json.RawMessage)
	walk = func(v json.RawMessage) {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(v, &obj); err == nil {
			if raw, ok := obj["videoRenderer"]; ok {
				var vr struct {
					VideoID string `json:"videoId"`
					Title   struct {
						Runs []struct {
							Text string `json:"text"`
						} `json:"runs"`
					} `json:"title"`
				}
				if err := json.Unmarshal(raw, &vr); err == nil && vr.VideoID != "" && !seen[vr.VideoID] {
					seen[vr.VideoID] = true
					title := ""
					if len(vr.Title.Runs) > 0 {
						title = vr.Title.Runs[0].Text
					}
					videos = append(videos, ListedVideo{ID: vr.VideoID, Title: title})
					return
				}
			}
			for _, child := range obj {
				walk(child)
			}
			return
		}
		var arr []json.RawMessage
		if err := json.Unmarshal(v, &arr); err == nil {
			for _, item := range arr {
				walk(item)
			}
		}
	}
	walk(jsonData)
	return videos
}

// extractJSON extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth outside string literals.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}
