package engine

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and splits on punctuation",
			text: "Hello, World! Go-lang rocks.",
			want: []string{"hello", "world", "go", "lang", "rocks"},
		},
		{
			name: "digits kept inside tokens",
			text: "gpt4 beats gpt3.5",
			want: []string{"gpt4", "beats", "gpt3", "5"},
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
		{
			name: "only separators",
			text: "... --- !!!",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWordFrequency(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		maxWords   int
		gramLen    int
		minCount   int
		customStop []string
		wantWords  []string
		wantGrams  []string
	}{
		{
			name:      "empty transcript",
			text:      "",
			maxWords:  25,
			gramLen:   3,
			minCount:  1,
			wantWords: nil,
			wantGrams: nil,
		},
		{
			name:      "stop words removed before counting",
			text:      "the quantum computer and the quantum state",
			maxWords:  25,
			gramLen:   2,
			minCount:  1,
			wantWords: []string{"quantum", "computer", "state"},
			wantGrams: []string{"quantum computer", "computer quantum", "quantum state"},
		},
		{
			name:      "frequency ordering with first-seen tie break",
			text:      "rocket rocket engine engine rocket fuel fuel",
			maxWords:  25,
			gramLen:   3,
			minCount:  1,
			wantWords: []string{"rocket", "engine", "fuel"},
			wantGrams: []string{"rocket rocket engine", "rocket engine engine", "engine engine rocket", "engine rocket fuel", "rocket fuel fuel"},
		},
		{
			name:      "single letters dropped, single digits kept",
			text:      "a b c 7 7 plan plan",
			maxWords:  25,
			gramLen:   2,
			minCount:  1,
			wantWords: []string{"7", "plan"},
			wantGrams: []string{"7 7", "7 plan", "plan plan"},
		},
		{
			name:       "custom stop words apply",
			text:       "video video game game review",
			maxWords:   25,
			gramLen:    2,
			minCount:   1,
			customStop: []string{"video"},
			wantWords:  []string{"game", "review"},
			wantGrams:  []string{"game game", "game review"},
		},
		{
			name:      "maxWords caps the lists",
			text:      "alpha alpha beta beta gamma delta",
			maxWords:  2,
			gramLen:   2,
			minCount:  1,
			wantWords: []string{"alpha", "beta"},
			wantGrams: []string{"alpha alpha", "alpha beta"},
		},
		{
			name:      "minCount filters rare terms",
			text:      "common common common rare",
			maxWords:  25,
			gramLen:   2,
			minCount:  2,
			wantWords: []string{"common"},
			wantGrams: []string{"common common"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, grams := WordFrequency(tt.text, tt.maxWords, tt.gramLen, tt.minCount, tt.customStop)
			if !reflect.DeepEqual(words, tt.wantWords) {
				t.Errorf("WordFrequency() words = %v, want %v", words, tt.wantWords)
			}
			if !reflect.DeepEqual(grams, tt.wantGrams) {
				t.Errorf("WordFrequency() grams = %v, want %v", grams, tt.wantGrams)
			}
		})
	}
}

func TestWordFrequencyTranscriptShorterThanGram(t *testing.T) {
	words, grams := WordFrequency("quantum physics", 25, 3, 1, nil)
	if !reflect.DeepEqual(words, []string{"quantum", "physics"}) {
		t.Errorf("words = %v, want [quantum physics]", words)
	}
	if len(grams) != 0 {
		t.Errorf("grams = %v, want empty", grams)
	}
}
