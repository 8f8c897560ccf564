package transcript

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ytdigest/captions"
	"ytdigest/errors"
)

type fakeStrategy struct {
	name   string
	result *Result
	err    error
	called bool
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(ctx context.Context, videoID string, languages []string) (*Result, error) {
	f.called = true
	return f.result, f.err
}

func textResult(text string) *Result {
	return &Result{Transcript: &captions.TranscriptResult{Text: text}}
}

func TestFetchStrategyOrdering(t *testing.T) {
	first := &fakeStrategy{name: "first", err: fmt.Errorf("unavailable")}
	second := &fakeStrategy{name: "second", result: textResult("from second")}
	third := &fakeStrategy{name: "third", result: textResult("from third")}

	svc := NewServiceWith([]Strategy{first, second, third}, Config{FetchTimeout: time.Second})

	result, err := svc.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if result.Transcript.Text != "from second" {
		t.Errorf("expected second strategy's text, got %q", result.Transcript.Text)
	}
	if result.Source != "second" {
		t.Errorf("expected source second, got %q", result.Source)
	}
	if !first.called || !second.called {
		t.Error("expected first and second strategies to be attempted")
	}
	if third.called {
		t.Error("third strategy must not run after second succeeded")
	}
}

func TestFetchEmptyTextTriggersFallback(t *testing.T) {
	first := &fakeStrategy{name: "first", result: textResult("   ")}
	second := &fakeStrategy{name: "second", result: textResult("usable text")}

	svc := NewServiceWith([]Strategy{first, second}, Config{FetchTimeout: time.Second})

	result, err := svc.Fetch(context.Background(), "dQw4w9WgXcQ", nil)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if result.Transcript.Text != "usable text" {
		t.Errorf("expected fallback to second strategy, got %q", result.Transcript.Text)
	}
}

func TestFetchExhaustion(t *testing.T) {
	first := &fakeStrategy{name: "first", err: fmt.Errorf("down")}
	second := &fakeStrategy{name: "second", err: fmt.Errorf("also down")}

	svc := NewServiceWith([]Strategy{first, second}, Config{FetchTimeout: time.Second})

	result, err := svc.Fetch(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("exhaustion must not return an error, got %v", err)
	}
	if result.Transcript.Text != "" {
		t.Errorf("expected empty text, got %q", result.Transcript.Text)
	}
	if result.Transcript.FailureReason == "" {
		t.Error("expected a failure reason after exhaustion")
	}
}

func TestFetchInvalidID(t *testing.T) {
	strategy := &fakeStrategy{name: "first", result: textResult("text")}
	svc := NewServiceWith([]Strategy{strategy}, Config{FetchTimeout: time.Second})

	_, err := svc.Fetch(context.Background(), "not-valid", []string{"en"})
	if !errors.IsInvalidIdentifier(err) {
		t.Fatalf("expected invalid identifier error, got %v", err)
	}
	if strategy.called {
		t.Error("no strategy may run for an invalid video ID")
	}
}

func TestPickTrack(t *testing.T) {
	tracks := []Track{
		{Code: "de"},
		{Code: "en-GB"},
		{Code: "es"},
	}

	tests := []struct {
		name      string
		languages []string
		wantCode  string
	}{
		{"exact match", []string{"es"}, "es"},
		{"family match", []string{"en"}, "en-GB"},
		{"family match reversed", []string{"en-US"}, "en-GB"},
		{"first available", []string{"fr"}, "de"},
		{"priority order", []string{"fr", "es"}, "es"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, ok := pickTrack(tracks, tt.languages)
			if !ok {
				t.Fatal("expected a track")
			}
			if track.Code != tt.wantCode {
				t.Errorf("pickTrack() = %q, want %q", track.Code, tt.wantCode)
			}
		})
	}

	if _, ok := pickTrack(nil, []string{"en"}); ok {
		t.Error("expected no track from empty list")
	}
}
