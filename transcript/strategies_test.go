package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTimedTextStrategy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("type") == "list":
			fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8"?>
<transcript_list>
  <track lang_code="de" name=""/>
  <track lang_code="en" name="English"/>
</transcript_list>`)
		case q.Get("lang") == "en":
			fmt.Fprint(w, `<transcript>
  <text start="0" dur="1.5">hello there</text>
  <text start="1.5" dur="2">general transcript</text>
</transcript>`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	strategy := NewTimedTextStrategy(server.Client())
	strategy.baseURL = server.URL

	result, err := strategy.Attempt(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if result.Transcript.Text != "hello there general transcript" {
		t.Errorf("unexpected text: %q", result.Transcript.Text)
	}
	if len(result.Transcript.Segments) != 2 {
		t.Errorf("expected 2 segments, got %d", len(result.Transcript.Segments))
	}
}

func TestTimedTextStrategyNoTracks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript_list></transcript_list>`)
	}))
	defer server.Close()

	strategy := NewTimedTextStrategy(server.Client())
	strategy.baseURL = server.URL

	if _, err := strategy.Attempt(context.Background(), "dQw4w9WgXcQ", []string{"en"}); err == nil {
		t.Fatal("expected an error when no tracks are listed")
	}
}

func TestUnofficialStrategyPayloads(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantText string
		wantErr  bool
	}{
		{
			name:     "json segments",
			body:     `[{"start": 0, "end": 2, "text": "json works"}]`,
			wantText: "json works",
		},
		{
			name:     "xml payload",
			body:     `<transcript><text start="0" dur="1">xml works</text></transcript>`,
			wantText: "xml works",
		},
		{
			name:     "plain text",
			body:     "a plain transcript that is long enough to accept",
			wantText: "a plain transcript that is long enough to accept",
		},
		{
			name:    "html error page",
			body:    "<html><body>service unavailable</body></html>",
			wantErr: true,
		},
		{
			name:    "short error banner",
			body:    "not found",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseUnofficialPayload(tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseUnofficialPayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && result.Text != tt.wantText {
				t.Errorf("text = %q, want %q", result.Text, tt.wantText)
			}
		})
	}
}

func TestUnofficialStrategyFallsThroughEndpoints(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path == "/bad" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `[{"text": "second endpoint wins"}]`)
	}))
	defer server.Close()

	strategy := NewUnofficialStrategy(server.Client(), []string{
		server.URL + "/bad?v=%s",
		server.URL + "/good?v=%s",
	})

	result, err := strategy.Attempt(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if result.Transcript.Text != "second endpoint wins" {
		t.Errorf("unexpected text: %q", result.Transcript.Text)
	}
	if hits != 2 {
		t.Errorf("expected 2 endpoint hits, got %d", hits)
	}
}

func TestWatchPageStrategy(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><script>
var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"%s/caps?lang=en","languageCode":"en","name":{"simpleText":"English"}}]}},"videoDetails":{"title":"Never Gonna Give You Up"}};
</script></head><body></body></html>`, server.URL)
	})
	mux.HandleFunc("/caps", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text start="0" dur="3">we know the song</text></transcript>`)
	})

	strategy := NewWatchPageStrategy(server.Client())
	strategy.baseURL = server.URL

	result, err := strategy.Attempt(context.Background(), "dQw4w9WgXcQ", []string{"en"})
	if err != nil {
		t.Fatalf("Attempt returned error: %v", err)
	}
	if result.Transcript.Text != "we know the song" {
		t.Errorf("unexpected text: %q", result.Transcript.Text)
	}
	if result.Title != "Never Gonna Give You Up" {
		t.Errorf("unexpected title: %q", result.Title)
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "nested braces",
			in:   `{"a":{"b":1},"c":2};var next = 1;`,
			want: `{"a":{"b":1},"c":2}`,
		},
		{
			name: "braces inside strings",
			in:   `{"title":"a {weird} title","n":1} trailing`,
			want: `{"title":"a {weird} title","n":1}`,
		},
		{
			name: "escaped quotes",
			in:   `{"title":"say \"hi\" {now}"}`,
			want: `{"title":"say \"hi\" {now}"}`,
		},
		{
			name:    "unterminated",
			in:      `{"a":{"b":1}`,
			wantErr: true,
		},
		{
			name:    "no object",
			in:      `nothing here`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSONObject(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractJSONObject() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("extractJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}
