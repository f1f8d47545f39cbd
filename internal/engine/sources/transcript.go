package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/Zhynem/FeedOrganizer/internal/engine"
)

// Transcript fetching is best-effort: every path degrades to an error the
// caller turns into an empty transcript rather than a failed ingestion.
// Primary:   watch page ytInitialPlayerResponse → caption timedtext XML
// Fallback:  /next → engagement panel → /get_transcript
// Fallback:  ANDROID Innertube /player → caption track timedtext XML

// transcriptLangs is the preferred caption language order.
var transcriptLangs = []string{"en", "en-US"}

// transcriptTokenRE extracts the continuation token from a raw /next response.
var transcriptTokenRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	m := transcriptTokenRE.FindSubmatch(data)
	if len(m) < 2 {
		return "", errors.New("getTranscriptEndpoint not found in engagement panels")
	}
	// The params value is URL-encoded in the /next response; /get_transcript
	// expects the decoded base64 form.
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1]), nil
	}
	return decoded, nil
}

// joinSegments extracts plain text from a /get_transcript response.
func joinSegments(resp getTranscriptResp) string {
	var sb strings.Builder
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			if seg.TranscriptSegmentRenderer == nil {
				continue
			}
			for _, run := range seg.TranscriptSegmentRenderer.Snippet.Runs {
				if run.Text == "" {
					continue
				}
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(run.Text)
			}
		}
	}
	return sb.String()
}

// transcriptViaEngagementPanel fetches a transcript via:
//  1. POST /next → engagementPanels containing the transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
func transcriptViaEngagementPanel(ctx context.Context, videoID string) (string, error) {
	visitorData := newVisitorData()

	nextData, err := postInnertube(ctx, innertubeNextURL, map[string]any{
		"videoId": videoID,
		"context": webContext(visitorData),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnertube(ctx, innertubeTranscriptURL, map[string]any{
		"params": token,
		"context": map[string]any{
			"client": webClientCtx{
				ClientName:    "WEB",
				ClientVersion: webClientVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/get_transcript: %w", err)
	}

	var resp getTranscriptResp
	if err := json.Unmarshal(transcriptData, &resp); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	text := joinSegments(resp)
	if text == "" {
		return "", errors.New("empty transcript segments")
	}
	return text, nil
}

// requiresPoToken reports whether a caption track URL needs a PoToken.
// Tracks with &exp=xpe only work inside a real browser session.
func requiresPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickCaptionTrack selects the best usable caption track: manual track in a
// preferred language, then auto-generated in a preferred language, then any
// English track, then anything fetchable.
func pickCaptionTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !requiresPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchTimedText fetches and flattens a timedtext XML caption URL.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return "", err
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

const playerResponseMarker = "ytInitialPlayerResponse = "

// transcriptViaWatchPage scrapes the watch page HTML for the embedded
// ytInitialPlayerResponse JSON and fetches the caption track it names. This
// path needs no Innertube session and works from most IPs.
func transcriptViaWatchPage(ctx context.Context, videoID string, langs []string) (string, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read watch page: %w", err)
	}

	idx := strings.Index(string(body), playerResponseMarker)
	if idx < 0 {
		return "", errors.New("ytInitialPlayerResponse not found")
	}
	jsonData := extractJSON(body[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return "", errors.New("malformed ytInitialPlayerResponse")
	}

	var player playerResp
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return transcriptFromCaptions(ctx, &player, langs)
}

// transcriptFromCaptions resolves a player response's caption list to text.
func transcriptFromCaptions(ctx context.Context, player *playerResp, langs []string) (string, error) {
	if player.Captions == nil {
		return "", errors.New("no captions available")
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", errors.New("no caption tracks")
	}
	track, ok := pickCaptionTrack(tracks, langs)
	if !ok {
		return "", errors.New("all caption tracks require PoToken")
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// transcriptViaPlayer uses the ANDROID Innertube /player endpoint to discover
// caption tracks and fetches the best one as timedtext XML.
func transcriptViaPlayer(ctx context.Context, videoID string, langs []string) (string, error) {
	reqBody, err := json.Marshal(playerReq{
		VideoID: videoID,
		Context: clientCtx{
			Client: clientInfo{
				ClientName:        "ANDROID",
				ClientVersion:     androidClientVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return "", err
	}

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, innertubePlayerURL+"?prettyPrint=false", strings.NewReader(string(reqBody)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", androidUA)
		req.Header.Set("X-Youtube-Client-Name", "3")
		req.Header.Set("X-Youtube-Client-Version", androidClientVersion)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()

	var player playerResp
	if err := json.NewDecoder(resp.Body).Decode(&player); err != nil {
		return "", fmt.Errorf("decode player: %w", err)
	}
	if player.PlayabilityStatus != nil && player.PlayabilityStatus.Status != "OK" {
		return "", fmt.Errorf("playability %s: %s", player.PlayabilityStatus.Status, player.PlayabilityStatus.Reason)
	}
	return transcriptFromCaptions(ctx, &player, langs)
}

// FetchTranscript fetches the spoken-text transcript for a video. Returns an
// error only when every path fails; callers treat that as an empty transcript.
func FetchTranscript(ctx context.Context, videoID string) (string, error) {
	engine.IncrTranscriptRequests()

	text, err := transcriptViaWatchPage(ctx, videoID, transcriptLangs)
	if err == nil {
		return text, nil
	}
	slog.Warn("transcript: watch page failed, trying engagement panel",
		slog.String("id", videoID), slog.Any("err", err))

	text, err = transcriptViaEngagementPanel(ctx, videoID)
	if err == nil {
		return text, nil
	}
	slog.Warn("transcript: engagement panel failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	return transcriptViaPlayer(ctx, videoID, transcriptLangs)
}
