package transcript

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ytdigest/captions"
	"ytdigest/errors"
	"ytdigest/videoid"
)

const (
	userAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	maxBodyBytes = 8 << 20
)

// Result carries an acquired transcript together with the strategy that
// produced it and the video title when the source exposes one.
type Result struct {
	Transcript *captions.TranscriptResult
	Source     string
	Title      string
}

// Strategy is one independent way of obtaining a transcript. An error or
// an empty-text result both mean "try the next strategy".
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, videoID string, languages []string) (*Result, error)
}

type Config struct {
	// FetchTimeout bounds each individual strategy attempt.
	FetchTimeout time.Duration
}

// Service walks an ordered strategy chain until one yields usable text.
type Service struct {
	strategies []Strategy
	timeout    time.Duration
	logger     *logrus.Logger
}

// NewService builds the default three-strategy chain: timedtext listing,
// unofficial third-party endpoints, then watch-page extraction.
func NewService(client *http.Client, cfg Config) *Service {
	if client == nil {
		client = &http.Client{Timeout: cfg.FetchTimeout}
	}
	return NewServiceWith([]Strategy{
		NewTimedTextStrategy(client),
		NewUnofficialStrategy(client, nil),
		NewWatchPageStrategy(client),
	}, cfg)
}

func NewServiceWith(strategies []Strategy, cfg Config) *Service {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		strategies: strategies,
		timeout:    timeout,
		logger:     logrus.StandardLogger(),
	}
}

// Fetch validates the video ID and runs the strategy chain sequentially.
// Strategies after the winner are never invoked. When every strategy
// fails or returns empty text, Fetch returns a result with empty text and
// a failure reason rather than an error; callers enforce their own
// minimum-usable-length policy.
func (s *Service) Fetch(ctx context.Context, videoID string, languages []string) (*Result, error) {
	const op = "transcript.Fetch"

	if !videoid.Valid(videoID) {
		return nil, errors.InvalidIdentifier(op, nil, "malformed video ID")
	}
	if len(languages) == 0 {
		languages = []string{"en"}
	}

	logger := s.logger.WithField("video_id", videoID)

	for _, strategy := range s.strategies {
		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		result, err := strategy.Attempt(attemptCtx, videoID, languages)
		cancel()

		if err != nil {
			logger.WithError(err).WithField("strategy", strategy.Name()).Warn("Transcript strategy failed")
			continue
		}
		if result == nil || result.Transcript == nil || strings.TrimSpace(result.Transcript.Text) == "" {
			logger.WithField("strategy", strategy.Name()).Warn("Transcript strategy returned no text")
			continue
		}

		result.Source = strategy.Name()
		logger.WithFields(logrus.Fields{
			"strategy": strategy.Name(),
			"segments": len(result.Transcript.Segments),
			"chars":    len(result.Transcript.Text),
		}).Info("Transcript acquired")
		return result, nil
	}

	logger.Warn("All transcript strategies exhausted")
	return &Result{
		Transcript: &captions.TranscriptResult{
			FailureReason: "all transcript sources exhausted",
		},
	}, nil
}

func fetchURL(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
