package organizer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zhynem/FeedOrganizer/internal/engine/sources"
	"github.com/Zhynem/FeedOrganizer/internal/store"
)

type fakeLister struct {
	byChannel map[string][]sources.ListedVideo
	failing   map[string]bool
	calls     int
}

func (f *fakeLister) ListRecent(ctx context.Context, username string) ([]sources.ListedVideo, error) {
	f.calls++
	if f.failing[username] {
		return nil, errors.New("listing blocked")
	}
	return f.byChannel[username], nil
}

type fakeFetcher struct {
	details map[string]*sources.VideoDetails
	failing map[string]bool
	calls   int
	onFetch func(videoID string)
}

func (f *fakeFetcher) FetchDetails(ctx context.Context, videoID string) (*sources.VideoDetails, error) {
	f.calls++
	if f.onFetch != nil {
		f.onFetch(videoID)
	}
	if f.failing[videoID] {
		return nil, errors.New("metadata unavailable")
	}
	d, ok := f.details[videoID]
	if !ok {
		return nil, sources.ErrVideoNotFound
	}
	return d, nil
}

func (f *fakeFetcher) FetchThumbnail(ctx context.Context, thumbURL string) []byte {
	return []byte("thumb")
}

type fakeClassifier struct {
	labels []string
	calls  int
}

func (f *fakeClassifier) Categorize(ctx context.Context, title, transcript string, available []string) []string {
	f.calls++
	return f.labels
}

func details(id, title string) *sources.VideoDetails {
	return &sources.VideoDetails{
		ID:           id,
		Title:        title,
		URL:          "https://www.youtube.com/watch?v=" + id,
		ThumbnailURL: "https://i.ytimg.com/vi/" + id + "/maxresdefault.jpg",
		UploadDate:   "2026-08-30",
		Transcript:   "transcript of " + title,
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db3"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	require.NoError(t, s.AddFeed(ctx, "veritasium", "Veritasium"))
	for _, c := range []string{"Educational", "Entertainment", "Science"} {
		require.NoError(t, s.AddCategory(ctx, c, c))
	}
	return s
}

func newTestRunner(st *store.Store, lister Lister, fetcher Fetcher, classifier Classifier) *Runner {
	return New(st,
		lister,
		func(PipelineSettings) Fetcher { return fetcher },
		func(PipelineSettings) Classifier { return classifier },
		nil)
}

func TestSyncIngestsNewVideos(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	lister := &fakeLister{byChannel: map[string][]sources.ListedVideo{
		"veritasium": {
			{ID: "vid000000001", Title: "First"},
			{ID: "vid000000002", Title: "Second"},
		},
	}}
	fetcher := &fakeFetcher{details: map[string]*sources.VideoDetails{
		"vid000000001": details("vid000000001", "First"),
		"vid000000002": details("vid000000002", "Second"),
	}}
	classifier := &fakeClassifier{labels: []string{"Educational", "Science"}}

	r := newTestRunner(st, lister, fetcher, classifier)
	require.NoError(t, r.Sync(ctx))

	titles, err := st.VideoIDsAndTitles(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 2)
	require.Equal(t, 2, classifier.calls)

	grid, err := st.VideoGrid(ctx, nil, []string{"Educational", "Science"}, 10)
	require.NoError(t, err)
	require.Len(t, grid, 2)
}

func TestSyncSecondRunIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	lister := &fakeLister{byChannel: map[string][]sources.ListedVideo{
		"veritasium": {{ID: "vid000000001", Title: "First"}},
	}}
	fetcher := &fakeFetcher{details: map[string]*sources.VideoDetails{
		"vid000000001": details("vid000000001", "First"),
	}}
	classifier := &fakeClassifier{labels: []string{"Educational"}}

	r := newTestRunner(st, lister, fetcher, classifier)
	require.NoError(t, r.Sync(ctx))
	require.NoError(t, r.Sync(ctx))

	require.Equal(t, 1, fetcher.calls)
	require.Equal(t, 1, classifier.calls)

	titles, err := st.VideoIDsAndTitles(ctx)
	require.NoError(t, err)
	require.Len(t, titles, 1)
}

func TestSyncDetectsRename(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddVideo(ctx, store.Video{
		VideoID: "vid000000001", Username: "veritasium", URL: "u", Title: "Old Title",
	}, []string{"Educational"}))

	lister := &fakeLister{byChannel: map[string][]sources.ListedVideo{
		"veritasium": {{ID: "vid000000001", Title: "New Title"}},
	}}
	fetcher := &fakeFetcher{}
	classifier := &fakeClassifier{labels: []string{"Entertainment"}}

	r := newTestRunner(st, lister, fetcher, classifier)
	require.NoError(t, r.Sync(ctx))

	title, err := st.VideoTitle(ctx, "vid000000001")
	require.NoError(t, err)
	require.Equal(t, "New Title", title)

	// A rename must not refetch or reclassify.
	require.Equal(t, 0, fetcher.calls)
	require.Equal(t, 0, classifier.calls)
	grid, err := st.VideoGrid(ctx, nil, []string{"Educational"}, 10)
	require.NoError(t, err)
	require.Len(t, grid, 1)
}

func TestSyncSkipsVideoOnMetadataFailure(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	lister := &fakeLister{byChannel: map[string][]sources.ListedVideo{
		"veritasium": {
			{ID: "vidBroken001", Title: "Broken"},
			{ID: "vid000000002", Title: "Fine"},
		},
	}}
	fetcher := &fakeFetcher{
		details: map[string]*sources.VideoDetails{
			"vid000000002": details("vid000000002", "Fine"),
		},
		failing: map[string]bool{"vidBroken001": true},
	}
	classifier := &fakeClassifier{labels: []string{"Educational"}}

	r := newTestRunner(st, lister, fetcher, classifier)
	require.NoError(t, r.Sync(ctx))

	titles, err := st.VideoIDsAndTitles(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"vid000000002": "Fine"}, titles)
}

func TestSyncSkipsChannelOnListingFailure(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.AddFeed(ctx, "kurzgesagt", "Kurzgesagt"))

	lister := &fakeLister{
		byChannel: map[string][]sources.ListedVideo{
			"veritasium": {{ID: "vid000000001", Title: "First"}},
			"kurzgesagt": {{ID: "vid000000002", Title: "Second"}},
		},
		failing: map[string]bool{"veritasium": true},
	}
	fetcher := &fakeFetcher{details: map[string]*sources.VideoDetails{
		"vid000000001": details("vid000000001", "First"),
		"vid000000002": details("vid000000002", "Second"),
	}}
	classifier := &fakeClassifier{labels: []string{"Educational"}}

	r := newTestRunner(st, lister, fetcher, classifier)
	require.NoError(t, r.Sync(ctx))

	titles, err := st.VideoIDsAndTitles(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"vid000000002": "Second"}, titles)
	require.Equal(t, 2, lister.calls)
}

func TestSyncPersistsOnlyStoredCategories(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	lister := &fakeLister{byChannel: map[string][]sources.ListedVideo{
		"veritasium": {{ID: "vid000000001", Title: "First"}},
	}}
	fetcher := &fakeFetcher{details: map[string]*sources.VideoDetails{
		"vid000000001": details("vid000000001", "First"),
	}}
	// A label outside the stored category set must not reach the store.
	classifier := &fakeClassifier{labels: []string{"Educational", "Bogus"}}

	r := newTestRunner(st, lister, fetcher, classifier)
	require.NoError(t, r.Sync(ctx))

	grid, err := st.VideoGrid(ctx, nil, nil, 10)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	require.Equal(t, []string{"Educational"}, grid[0].Categories)
}

func TestSyncCancellationKeepsPersistedWork(t *testing.T) {
	st := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lister := &fakeLister{byChannel: map[string][]sources.ListedVideo{
		"veritasium": {
			{ID: "vid000000001", Title: "First"},
			{ID: "vid000000002", Title: "Second"},
			{ID: "vid000000003", Title: "Third"},
		},
	}}
	fetcher := &fakeFetcher{details: map[string]*sources.VideoDetails{
		"vid000000001": details("vid000000001", "First"),
		"vid000000002": details("vid000000002", "Second"),
		"vid000000003": details("vid000000003", "Third"),
	}}
	fetcher.onFetch = func(videoID string) {
		if videoID == "vid000000002" {
			cancel()
		}
	}
	classifier := &fakeClassifier{labels: []string{"Educational"}}

	r := newTestRunner(st, lister, fetcher, classifier)
	err := r.Sync(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// Work finished before the cancellation stays persisted.
	titles, err := st.VideoIDsAndTitles(context.Background())
	require.NoError(t, err)
	require.Contains(t, titles, "vid000000001")
	require.NotContains(t, titles, "vid000000003")
}

func TestReclassifyRebuildsAssociations(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"vid000000001", "vid000000002"} {
		require.NoError(t, st.AddVideo(ctx, store.Video{
			VideoID: id, Username: "veritasium", URL: "u",
			Title: id, Transcript: "words",
		}, []string{"Educational"}))
	}

	classifier := &fakeClassifier{labels: []string{"Entertainment", "Science"}}
	r := newTestRunner(st, &fakeLister{}, &fakeFetcher{}, classifier)
	require.NoError(t, r.Reclassify(ctx))

	require.Equal(t, 2, classifier.calls)

	grid, err := st.VideoGrid(ctx, nil, []string{"Entertainment", "Science"}, 10)
	require.NoError(t, err)
	require.Len(t, grid, 2)

	grid, err = st.VideoGrid(ctx, nil, []string{"Educational"}, 10)
	require.NoError(t, err)
	require.Empty(t, grid)
}

func TestReclassifyOne(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddVideo(ctx, store.Video{
		VideoID: "vid000000001", Username: "veritasium", URL: "u",
		Title: "keep", Transcript: "words",
	}, []string{"Educational"}))
	require.NoError(t, st.AddVideo(ctx, store.Video{
		VideoID: "vid000000002", Username: "veritasium", URL: "u",
		Title: "redo", Transcript: "words",
	}, []string{"Educational"}))

	classifier := &fakeClassifier{labels: []string{"Science", "Entertainment"}}
	r := newTestRunner(st, &fakeLister{}, &fakeFetcher{}, classifier)
	require.NoError(t, r.ReclassifyOne(ctx, "vid000000002"))

	// Only the named video changes.
	grid, err := st.VideoGrid(ctx, nil, []string{"Educational"}, 10)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	require.Equal(t, "keep", grid[0].Title)

	grid, err = st.VideoGrid(ctx, nil, []string{"Science"}, 10)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	require.Equal(t, "redo", grid[0].Title)

	require.ErrorIs(t, r.ReclassifyOne(ctx, "missing00000"), store.ErrNotFound)
}

func TestParseSettings(t *testing.T) {
	ps := ParseSettings(map[string]string{
		store.SettingModel:           "llama3.2:3b",
		store.SettingCtxSize:         "800",
		store.SettingSystemPrompt:    "system %s %s",
		store.SettingUserPrompt:      "user %s %s %s %s",
		store.SettingCustomStopWords: `["uh","um"]`,
		store.SettingYTAPIKey:        "key",
	})
	require.Equal(t, "llama3.2:3b", ps.Model)
	require.Equal(t, 800, ps.CtxSize)
	require.Equal(t, "system %s %s", ps.SystemPrompt)
	require.Equal(t, []string{"uh", "um"}, ps.CustomStopWords)
	require.Equal(t, "key", ps.YTAPIKey)
}

func TestParseSettingsDefaults(t *testing.T) {
	ps := ParseSettings(map[string]string{})
	require.Equal(t, 1200, ps.CtxSize)
	require.NotEmpty(t, ps.SystemPrompt)
	require.NotEmpty(t, ps.UserPrompt)
	require.NotEmpty(t, ps.CustomStopWords)
}

func TestJobStateToggleAndBusy(t *testing.T) {
	var s jobState
	parent := context.Background()

	runCtx, err := s.begin(parent, KindSync)
	require.NoError(t, err)
	require.Equal(t, KindSync, s.Running())

	// Same kind again: the running job is cancelled instead of a second start.
	_, err = s.begin(parent, KindSync)
	require.ErrorIs(t, err, ErrCancelRequested)
	require.ErrorIs(t, runCtx.Err(), context.Canceled)

	// A different kind is refused outright.
	_, err = s.begin(parent, KindReclassify)
	require.ErrorIs(t, err, ErrJobBusy)

	s.finish()
	require.Equal(t, Kind(""), s.Running())

	_, err = s.begin(parent, KindReclassify)
	require.NoError(t, err)
	s.finish()
}

func TestIntersect(t *testing.T) {
	require.Equal(t, []string{"a", "c"},
		intersect([]string{"a", "x", "c"}, []string{"a", "b", "c"}))
	require.Empty(t, intersect([]string{"x"}, []string{"a"}))
	require.Empty(t, intersect(nil, []string{"a"}))
}
