package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
)

// The two mutually exclusive top-level labels. Every classified video carries
// exactly one of them; CategoryEntertainment is the fallback when the model
// returns neither.
const (
	CategoryEducational   = "Educational"
	CategoryEntertainment = "Entertainment"
)

const (
	noTopWordsPlaceholder = "No Top Words Available"
	noTopGramsPlaceholder = "No Top Grams Available"
)

// Classifier assigns category labels to a video from its title and transcript
// statistics. It treats the model as an unreliable channel: malformed output
// is retried up to Retries attempts and the final label set is sanitized
// against the live category list, so Categorize never fails outward.
type Classifier struct {
	Chat         ChatFunc
	SystemPrompt string // template, 2 substitutions: example list, category list
	UserPrompt   string // template, 4 substitutions: words, grams, title, category list
	CustomStop   []string
	ResultSize   int // top word/gram list length
	GramLen      int
	MinCount     int // minimum term frequency, 1 keeps everything
	CtxWords     int // transcript word budget, 0 = unlimited
	Retries      int
	Rand         *rand.Rand // nil = package-level source
}

func (c *Classifier) intn(n int) int {
	if c.Rand != nil {
		return c.Rand.Intn(n)
	}
	return rand.Intn(n)
}

func (c *Classifier) shuffled(items []string) []string {
	out := make([]string, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := c.intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// exampleList builds the few-shot example of 3 distinct category keys, seeded
// with a random polarity label to bias the model toward including one.
func (c *Classifier) exampleList(available []string) []string {
	polarity := CategoryEducational
	if c.intn(2) == 1 {
		polarity = CategoryEntertainment
	}
	examples := []string{polarity}
	// Bounded draw so a category set smaller than the example size cannot
	// spin forever.
	for tries := 0; len(examples) < 3 && len(available) > 0 && tries < 20; tries++ {
		item := available[c.intn(len(available))]
		seen := false
		for _, e := range examples {
			if e == item {
				seen = true
				break
			}
		}
		if !seen {
			examples = append(examples, item)
		}
	}
	return examples
}

// buildMessages renders the system and user prompts. The category list is
// shuffled independently for each message so the model cannot anchor on list
// position.
func (c *Classifier) buildMessages(title, transcript string, available []string) (system, user string) {
	words := noTopWordsPlaceholder
	grams := noTopGramsPlaceholder
	if transcript != "" {
		topWords, topGrams := WordFrequency(LimitWords(transcript, c.CtxWords),
			c.ResultSize, c.GramLen, c.MinCount, c.CustomStop)
		words = strings.Join(topWords, ", ")
		grams = strings.Join(topGrams, ", ")
	}

	system = fmt.Sprintf(c.SystemPrompt, jsonList(c.exampleList(available)), jsonList(c.shuffled(available)))
	user = fmt.Sprintf(c.UserPrompt, words, grams, title, jsonList(c.shuffled(available)))
	return system, user
}

// Categorize classifies a video against the live category set and returns the
// sorted, sanitized label list. It never returns an error: on irrecoverable
// model failure the result degrades to the default polarity label.
func (c *Classifier) Categorize(ctx context.Context, title, transcript string, available []string) []string {
	system, user := c.buildMessages(title, transcript, available)

	retries := c.Retries
	if retries <= 0 {
		retries = 5
	}

	var labels []string
	for attempt := 0; attempt < retries; attempt++ {
		if ctx.Err() != nil {
			break
		}
		metrics.LLMCalls.Add(1)
		raw, err := c.Chat(ctx, system, user)
		if err != nil {
			metrics.LLMErrors.Add(1)
			slog.Warn("classify: chat call failed",
				slog.String("title", title), slog.Int("attempt", attempt+1), slog.Any("error", err))
			continue
		}
		parsed, err := parseLabelList(cleanLabelResponse(raw))
		if err != nil {
			metrics.LLMRetries.Add(1)
			slog.Warn("classify: unparseable response, retrying",
				slog.String("title", title), slog.Int("attempt", attempt+1),
				slog.String("raw", Truncate(raw, 200)))
			continue
		}
		labels = parsed
		break
	}

	labels, madeUp := sanitizeLabels(labels, available)
	if madeUp > 0 {
		metrics.MadeUpLabels.Add(int64(madeUp))
	}
	slog.Info("classify: assigned",
		slog.String("title", title),
		slog.Any("labels", labels),
		slog.Int("made_up_dropped", madeUp))

	sort.Strings(labels)
	return labels
}

// sanitizeLabels drops labels not present in available and guarantees exactly
// one polarity label is present: when the model returned neither the default
// is appended, and when it returned both only the first in the model's
// relevance ordering survives. Returns the kept labels and the made-up count.
func sanitizeLabels(labels, available []string) ([]string, int) {
	valid := make(map[string]bool, len(available))
	for _, a := range available {
		valid[a] = true
	}

	kept := make([]string, 0, len(labels))
	madeUp := 0
	hasPolarity := false
	for _, l := range labels {
		if !valid[l] {
			madeUp++
			continue
		}
		if l == CategoryEducational || l == CategoryEntertainment {
			if hasPolarity {
				continue
			}
			hasPolarity = true
		}
		kept = append(kept, l)
	}
	if !hasPolarity {
		kept = append(kept, CategoryEntertainment)
	}
	return kept, madeUp
}

func jsonList(items []string) string {
	b, _ := json.Marshal(items)
	return string(b)
}
