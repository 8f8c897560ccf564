package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ytdigest/captions"
)

var playerResponseMarkers = []string{
	"var ytInitialPlayerResponse = ",
	"ytInitialPlayerResponse = ",
}

// WatchPageStrategy fetches the watch page, digs the embedded player
// response out of the HTML and downloads a caption track from it.
type WatchPageStrategy struct {
	client  *http.Client
	baseURL string
}

func NewWatchPageStrategy(client *http.Client) *WatchPageStrategy {
	return &WatchPageStrategy{
		client:  client,
		baseURL: "https://www.youtube.com",
	}
}

func (s *WatchPageStrategy) Name() string { return "watchpage" }

func (s *WatchPageStrategy) Attempt(ctx context.Context, videoID string, languages []string) (*Result, error) {
	body, err := fetchURL(ctx, s.client, fmt.Sprintf("%s/watch?v=%s", s.baseURL, videoID))
	if err != nil {
		return nil, fmt.Errorf("watch page fetch failed: %w", err)
	}

	player, err := extractPlayerResponse(string(body))
	if err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(player.Captions.Renderer.CaptionTracks))
	for _, t := range player.Captions.Renderer.CaptionTracks {
		if t.BaseURL == "" {
			continue
		}
		tracks = append(tracks, Track{
			Code:    t.LanguageCode,
			Name:    t.Name.SimpleText,
			BaseURL: t.BaseURL,
		})
	}

	track, ok := pickTrack(tracks, languages)
	if !ok {
		return nil, fmt.Errorf("watch page lists no caption tracks")
	}

	body, err = fetchURL(ctx, s.client, track.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("caption track download failed: %w", err)
	}

	transcript, err := captions.Parse(string(body), captions.FormatXML)
	if err != nil {
		return nil, err
	}

	return &Result{
		Transcript: transcript,
		Title:      player.VideoDetails.Title,
	}, nil
}

type playerResponse struct {
	Captions struct {
		Renderer struct {
			CaptionTracks []struct {
				BaseURL      string `json:"baseUrl"`
				LanguageCode string `json:"languageCode"`
				Name         struct {
					SimpleText string `json:"simpleText"`
				} `json:"name"`
			} `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	VideoDetails struct {
		Title string `json:"title"`
	} `json:"videoDetails"`
}

func extractPlayerResponse(html string) (*playerResponse, error) {
	for _, marker := range playerResponseMarkers {
		idx := strings.Index(html, marker)
		if idx < 0 {
			continue
		}

		raw, err := extractJSONObject(html[idx+len(marker):])
		if err != nil {
			continue
		}

		var player playerResponse
		if err := json.Unmarshal([]byte(raw), &player); err != nil {
			continue
		}
		return &player, nil
	}

	return nil, fmt.Errorf("no embedded player response found")
}

// extractJSONObject returns the first balanced JSON object in s,
// accounting for braces inside string literals.
func extractJSONObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object found")
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unterminated JSON object")
}
