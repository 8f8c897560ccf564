package transcript

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"

	"ytdigest/captions"
)

// TimedTextStrategy queries the public timedtext caption listing, picks a
// track by language priority and downloads it.
type TimedTextStrategy struct {
	client  *http.Client
	baseURL string
}

func NewTimedTextStrategy(client *http.Client) *TimedTextStrategy {
	return &TimedTextStrategy{
		client:  client,
		baseURL: "https://www.youtube.com/api/timedtext",
	}
}

func (s *TimedTextStrategy) Name() string { return "timedtext" }

func (s *TimedTextStrategy) Attempt(ctx context.Context, videoID string, languages []string) (*Result, error) {
	listQuery := url.Values{}
	listQuery.Set("type", "list")
	listQuery.Set("v", videoID)

	body, err := fetchURL(ctx, s.client, s.baseURL+"?"+listQuery.Encode())
	if err != nil {
		return nil, fmt.Errorf("caption listing failed: %w", err)
	}

	tracks, err := parseTrackList(body)
	if err != nil {
		return nil, err
	}

	track, ok := pickTrack(tracks, languages)
	if !ok {
		return nil, fmt.Errorf("no caption tracks listed")
	}

	trackQuery := url.Values{}
	trackQuery.Set("v", videoID)
	trackQuery.Set("lang", track.Code)
	if track.Name != "" {
		trackQuery.Set("name", track.Name)
	}

	body, err = fetchURL(ctx, s.client, s.baseURL+"?"+trackQuery.Encode())
	if err != nil {
		return nil, fmt.Errorf("caption download failed: %w", err)
	}

	transcript, err := captions.Parse(string(body), captions.FormatXML)
	if err != nil {
		return nil, err
	}

	return &Result{Transcript: transcript}, nil
}

type trackList struct {
	XMLName xml.Name `xml:"transcript_list"`
	Tracks  []struct {
		LangCode string `xml:"lang_code,attr"`
		Name     string `xml:"name,attr"`
	} `xml:"track"`
}

func parseTrackList(body []byte) ([]Track, error) {
	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("invalid caption listing: %w", err)
	}

	tracks := make([]Track, 0, len(list.Tracks))
	for _, t := range list.Tracks {
		if t.LangCode == "" {
			continue
		}
		tracks = append(tracks, Track{Code: t.LangCode, Name: t.Name})
	}
	return tracks, nil
}
