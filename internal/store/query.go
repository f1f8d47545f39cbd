package store

import (
	"context"
	"fmt"
	"strings"
)

// GridVideo is one row of the filtered video grid with its full category
// label list attached.
type GridVideo struct {
	VideoID     string
	Username    string
	DisplayName string
	URL         string
	Title       string
	UploadDate  string
	Thumbnail   []byte
	Categories  []string
}

// BuildVideoGridQuery constructs the parameterized grid query: videos in any
// of the selected feeds AND carrying all of the selected categories, newest
// first, capped at limit. Empty filter sets impose no restriction.
//
// The all-of-categories semantic needs a distinct-count aggregation per video
// equal to the number of selected categories; a plain join would match videos
// carrying only some of them.
func BuildVideoGridQuery(feedFilters, categoryFilters []string, limit int) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT v.video_id, f.username, f.display_name, v.url, v.title, v.upload_date, v.thumbnail, c.display_category
		FROM videos v
		JOIN video_categories vc ON v.video_id = vc.video_id
		JOIN categories c ON vc.llm_category = c.llm_category
		JOIN feeds f ON v.username = f.username`)

	var where []string
	var args []any

	if len(feedFilters) > 0 {
		where = append(where,
			fmt.Sprintf("f.username IN (%s)", placeholders(len(feedFilters))))
		for _, f := range feedFilters {
			args = append(args, f)
		}
	}

	if len(categoryFilters) > 0 {
		where = append(where, fmt.Sprintf(`v.video_id IN (
			SELECT vc.video_id
			FROM video_categories vc
			WHERE vc.llm_category IN (%s)
			GROUP BY vc.video_id
			HAVING COUNT(DISTINCT vc.llm_category) = ?)`, placeholders(len(categoryFilters))))
		for _, c := range categoryFilters {
			args = append(args, c)
		}
		args = append(args, len(categoryFilters))
	}

	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY v.upload_date DESC LIMIT ?")
	args = append(args, limit)

	return sb.String(), args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// VideoGrid runs the filtered grid query and groups the joined rows so each
// video appears once with its full category list.
func (s *Store) VideoGrid(ctx context.Context, feedFilters, categoryFilters []string, limit int) ([]GridVideo, error) {
	query, args := BuildVideoGridQuery(feedFilters, categoryFilters, limit)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []GridVideo
	index := make(map[string]int)
	for rows.Next() {
		var (
			v        GridVideo
			category string
		)
		if err := rows.Scan(&v.VideoID, &v.Username, &v.DisplayName, &v.URL,
			&v.Title, &v.UploadDate, &v.Thumbnail, &category); err != nil {
			return nil, err
		}
		if i, ok := index[v.VideoID]; ok {
			videos[i].Categories = append(videos[i].Categories, category)
			continue
		}
		v.Categories = []string{category}
		index[v.VideoID] = len(videos)
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
