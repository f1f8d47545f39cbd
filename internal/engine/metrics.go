package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the pipeline.
var metrics struct {
	ListerRequests     atomic.Int64
	MetadataRequests   atomic.Int64
	TranscriptRequests atomic.Int64
	ThumbnailErrors    atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	LLMRetries         atomic.Int64
	MadeUpLabels       atomic.Int64
	VideosIngested     atomic.Int64
	RenamesDetected    atomic.Int64
	VideosReclassified atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"lister_requests":     metrics.ListerRequests.Load(),
		"metadata_requests":   metrics.MetadataRequests.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"thumbnail_errors":    metrics.ThumbnailErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"llm_retries":         metrics.LLMRetries.Load(),
		"made_up_labels":      metrics.MadeUpLabels.Load(),
		"videos_ingested":     metrics.VideosIngested.Load(),
		"renames_detected":    metrics.RenamesDetected.Load(),
		"videos_reclassified": metrics.VideosReclassified.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for job summaries.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"lister_requests", "metadata_requests", "transcript_requests",
		"thumbnail_errors",
		"llm_calls", "llm_errors", "llm_retries", "made_up_labels",
		"videos_ingested", "renames_detected", "videos_reclassified",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ and organizer/ sub-packages.
func IncrListerRequests()     { metrics.ListerRequests.Add(1) }
func IncrMetadataRequests()   { metrics.MetadataRequests.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrThumbnailErrors()    { metrics.ThumbnailErrors.Add(1) }
func IncrVideosIngested()     { metrics.VideosIngested.Add(1) }
func IncrRenamesDetected()    { metrics.RenamesDetected.Add(1) }
func IncrVideosReclassified() { metrics.VideosReclassified.Add(1) }
