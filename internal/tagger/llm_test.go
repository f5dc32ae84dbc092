package tagger

import (
	"context"
	"testing"

	"lowher/internal/types"
)

func TestNewLLMTagger_RequiresAPIKey(t *testing.T) {
	_, err := NewLLMTagger(context.Background(), "", "", "gpt-4o-mini")
	if err == nil {
		t.Fatal("expected error for empty API key")
	}
	appErr, ok := err.(*types.AppError)
	if !ok || appErr.Code != types.ErrConfig {
		t.Errorf("expected CONFIG_ERROR, got %v", err)
	}
}

func TestParseEntityLabels(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []entityLabel
		wantErr bool
	}{
		{
			name:    "bare array",
			content: `[{"index": 0, "category": "person"}, {"index": 3, "category": "location"}]`,
			want:    []entityLabel{{0, "person"}, {3, "location"}},
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    nil,
		},
		{
			name:    "code fence despite prompt",
			content: "```json\n[{\"index\": 1, \"category\": \"org\"}]\n```",
			want:    []entityLabel{{1, "org"}},
		},
		{
			name:    "surrounding prose",
			content: `Here are the entities: [{"index": 2, "category": "organization"}] as requested.`,
			want:    []entityLabel{{2, "organization"}},
		},
		{
			name:    "no array",
			content: "I could not find any entities.",
			wantErr: true,
		},
		{
			name:    "malformed json",
			content: `[{"index": "one"}]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEntityLabels(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("label %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestEntityCategory(t *testing.T) {
	tests := []struct {
		label string
		want  types.TokenCategory
		ok    bool
	}{
		{"person", types.TokenPerson, true},
		{"PER", types.TokenPerson, true},
		{"organization", types.TokenOrganization, true},
		{"Org", types.TokenOrganization, true},
		{"location", types.TokenLocation, true},
		{"GPE", types.TokenLocation, true},
		{" place ", types.TokenLocation, true},
		{"misc", types.TokenWord, false},
		{"", types.TokenWord, false},
	}
	for _, tt := range tests {
		got, ok := entityCategory(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("entityCategory(%q) = %s, %v; want %s, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
}

func TestBuildTokenPrompt(t *testing.T) {
	got := buildTokenPrompt([]string{"alpha", "Beta"})
	want := "Tokens:\n0: alpha\n1: Beta\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
