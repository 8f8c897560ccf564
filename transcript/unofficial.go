package transcript

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"ytdigest/captions"
)

// Third-party transcript services. Their schemas are assumed, not
// guaranteed; expect this list to need updates over time.
var defaultEndpoints = []string{
	"https://youtubetranscript.com/?server_vid2=%s",
	"https://yt.lemnoslife.com/noKey/captions?videoId=%s",
}

// Plain-text bodies shorter than this are error banners, not transcripts.
const minPlainTextLen = 32

// UnofficialStrategy walks a fixed list of third-party transcript
// endpoints, accepting the first parseable payload.
type UnofficialStrategy struct {
	client    *http.Client
	endpoints []string
}

func NewUnofficialStrategy(client *http.Client, endpoints []string) *UnofficialStrategy {
	if len(endpoints) == 0 {
		endpoints = defaultEndpoints
	}
	return &UnofficialStrategy{client: client, endpoints: endpoints}
}

func (s *UnofficialStrategy) Name() string { return "unofficial" }

func (s *UnofficialStrategy) Attempt(ctx context.Context, videoID string, languages []string) (*Result, error) {
	for _, endpoint := range s.endpoints {
		target := fmt.Sprintf(endpoint, url.QueryEscape(videoID))

		body, err := fetchURL(ctx, s.client, target)
		if err != nil {
			logrus.WithError(err).WithField("endpoint", endpoint).Debug("Unofficial endpoint unreachable")
			continue
		}

		transcript, err := parseUnofficialPayload(string(body))
		if err != nil {
			logrus.WithError(err).WithField("endpoint", endpoint).Debug("Unofficial endpoint payload unusable")
			continue
		}

		return &Result{Transcript: transcript}, nil
	}

	return nil, fmt.Errorf("no unofficial endpoint produced a transcript")
}

func parseUnofficialPayload(body string) (*captions.TranscriptResult, error) {
	trimmed := strings.TrimSpace(body)

	switch {
	case strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "["):
		return captions.Parse(trimmed, captions.FormatJSON)
	case strings.Contains(trimmed, "<text"):
		return captions.Parse(trimmed, captions.FormatXML)
	case strings.HasPrefix(trimmed, "<"):
		return nil, fmt.Errorf("markup payload without caption elements")
	case len(trimmed) < minPlainTextLen:
		return nil, fmt.Errorf("payload too short to be a transcript")
	default:
		return captions.Parse(trimmed, captions.FormatPlain)
	}
}
