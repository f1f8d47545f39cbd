package engine

import (
	"reflect"
	"testing"
)

func TestCleanLabelResponse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean list untouched",
			raw:  `["Educational", "Science"]`,
			want: `["Educational", "Science"]`,
		},
		{
			name: "doubled closing bracket",
			raw:  `["Educational", "Science"]]`,
			want: `["Educational", "Science"]`,
		},
		{
			name: "python code fence",
			raw:  "```python\n[\"Entertainment\"]\n```",
			want: `["Entertainment"]`,
		},
		{
			name: "json code fence",
			raw:  "```json\n[\"Science\"]\n```",
			want: `["Science"]`,
		},
		{
			name: "bare fence with surrounding prose whitespace",
			raw:  "\n```\n[\"Gaming\"]\n```\n",
			want: `["Gaming"]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanLabelResponse(tt.raw)
			if got != tt.want {
				t.Errorf("cleanLabelResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLabelList(t *testing.T) {
	got, err := parseLabelList(`["Educational", "Science"]`)
	if err != nil {
		t.Fatalf("parseLabelList() error = %v", err)
	}
	if want := []string{"Educational", "Science"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseLabelList() = %v, want %v", got, want)
	}

	for _, bad := range []string{"", "Educational, Science", `{"labels": []}`, `[1, 2]`} {
		if _, err := parseLabelList(bad); err == nil {
			t.Errorf("parseLabelList(%q) expected error, got nil", bad)
		}
	}
}
