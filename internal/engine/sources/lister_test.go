package sources

import (
	"reflect"
	"testing"
)

const channelPageHTML = `<html><body>
<a id="video-title-link" href="/watch?v=abc123DEF45" title="First Video &amp; More"></a>
<a id="video-title-link" href="/watch?v=xyz987GHI65&amp;pp=ygU" title="Second Video"></a>
<a id="video-title-link" href="/playlist?list=PL123" title="Not a video"></a>
<a id="other-link" href="/watch?v=ignored0000" title="Different anchor"></a>
</body></html>`

func TestParseChannelAnchors(t *testing.T) {
	videos, err := parseChannelAnchors([]byte(channelPageHTML))
	if err != nil {
		t.Fatalf("parseChannelAnchors() error = %v", err)
	}
	want := []ListedVideo{
		{ID: "abc123DEF45", Title: "First Video & More"},
		{ID: "xyz987GHI65", Title: "Second Video"},
	}
	if !reflect.DeepEqual(videos, want) {
		t.Errorf("parseChannelAnchors() = %v, want %v", videos, want)
	}
}

func TestParseChannelAnchorsEmptyPage(t *testing.T) {
	videos, err := parseChannelAnchors([]byte("<html><body></body></html>"))
	if err != nil {
		t.Fatalf("parseChannelAnchors() error = %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("parseChannelAnchors() = %v, want empty", videos)
	}
}

const initialDataPage = `<html><script>var ytInitialData = {"contents":{"grid":{"items":[` +
	`{"videoRenderer":{"videoId":"vid00000001","title":{"runs":[{"text":"Walked Video"}]}}},` +
	`{"videoRenderer":{"videoId":"vid00000002","title":{"runs":[{"text":"Another One"}]}}},` +
	`{"videoRenderer":{"videoId":"vid00000001","title":{"runs":[{"text":"Duplicate"}]}}}` +
	`]}}};</script></html>`

func TestParseChannelInitialData(t *testing.T) {
	videos := parseChannelInitialData([]byte(initialDataPage))
	want := []ListedVideo{
		{ID: "vid00000001", Title: "Walked Video"},
		{ID: "vid00000002", Title: "Another One"},
	}
	if !reflect.DeepEqual(videos, want) {
		t.Errorf("parseChannelInitialData() = %v, want %v", videos, want)
	}
}

func TestParseChannelInitialDataNoMarker(t *testing.T) {
	if videos := parseChannelInitialData([]byte("<html><body>nothing here</body></html>")); videos != nil {
		t.Errorf("parseChannelInitialData() = %v, want nil", videos)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "simple object with trailing data",
			in:   `{"a": 1};var next = 2;`,
			want: `{"a": 1}`,
		},
		{
			name: "nested objects",
			in:   `{"a": {"b": {"c": 3}}} trailing`,
			want: `{"a": {"b": {"c": 3}}}`,
		},
		{
			name: "braces inside string literals ignored",
			in:   `{"a": "}{", "b": "\"}"} rest`,
			want: `{"a": "}{", "b": "\"}"}`,
		},
		{
			name: "not an object",
			in:   `["a", "b"]`,
			want: "",
		},
		{
			name: "unterminated object",
			in:   `{"a": {"b": 1}`,
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(extractJSON([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}
