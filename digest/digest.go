package digest

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ytdigest/analytics"
	"ytdigest/cache"
	"ytdigest/errors"
	"ytdigest/retry"
	"ytdigest/summarize"
	"ytdigest/transcript"
	"ytdigest/videoid"
)

// Request is the single entry point's input.
type Request struct {
	URL         string `json:"url"`
	Language    string `json:"language"`
	Model       string `json:"model"`
	BypassCache bool   `json:"bypass_cache"`
}

// Result is the success payload for a digest request.
type Result struct {
	VideoID          string              `json:"video_id"`
	Title            string              `json:"title,omitempty"`
	TLDR             string              `json:"tldr"`
	Chapters         []summarize.Chapter `json:"chapters"`
	Model            string              `json:"model"`
	TranscriptLength int                 `json:"transcript_length"`
	Cached           bool                `json:"cached"`
}

type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string, languages []string) (*transcript.Result, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, text, language, model string) (*summarize.SummaryResult, error)
}

// Sink receives per-request audit records. Implementations must never
// surface their own failures.
type Sink interface {
	Write(ctx context.Context, rec analytics.Record)
}

type Config struct {
	DefaultLanguage    string
	DefaultModel       string
	MinTranscriptChars int
	CacheTTL           time.Duration
	Retry              retry.Policy
}

// Service runs the full pipeline: resolve, cache check, acquire,
// summarize, cache store.
type Service struct {
	transcripts TranscriptFetcher
	summarizer  Summarizer
	cache       *cache.Cache
	sink        Sink
	config      Config
	logger      *logrus.Logger
}

func NewService(transcripts TranscriptFetcher, summarizer Summarizer, responseCache *cache.Cache, sink Sink, config Config) *Service {
	return &Service{
		transcripts: transcripts,
		summarizer:  summarizer,
		cache:       responseCache,
		sink:        sink,
		config:      config,
		logger:      logrus.StandardLogger(),
	}
}

func (s *Service) Digest(ctx context.Context, req Request) (*Result, error) {
	const op = "digest.Digest"
	start := time.Now()

	videoID, err := videoid.Resolve(req.URL)
	if err != nil {
		s.record(ctx, "", start, err)
		return nil, err
	}

	language := req.Language
	if language == "" {
		language = s.config.DefaultLanguage
	}
	model := req.Model
	if model == "" {
		model = s.config.DefaultModel
	}

	logger := s.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"language": language,
		"model":    model,
	})

	key := cache.Key(videoID, language, model)
	if !req.BypassCache {
		if v, ok := s.cache.Get(key); ok {
			if cached, ok := v.(*Result); ok {
				logger.Info("Digest served from cache")
				out := *cached
				out.Cached = true
				s.record(ctx, videoID, start, nil)
				return &out, nil
			}
		}
	}

	acquired, err := retry.DoIf(ctx, s.config.Retry, func(ctx context.Context) (*transcript.Result, error) {
		return s.transcripts.Fetch(ctx, videoID, []string{language})
	}, func(err error, attempt int) bool {
		return !errors.IsInvalidIdentifier(err)
	})
	if err != nil {
		logger.WithError(err).Error("Transcript acquisition failed")
		s.record(ctx, videoID, start, err)
		return nil, err
	}

	text := strings.TrimSpace(acquired.Transcript.Text)
	if len(text) < s.config.MinTranscriptChars {
		reason := acquired.Transcript.FailureReason
		if reason == "" {
			reason = "transcript too short to summarize"
		}
		logger.WithField("reason", reason).Warn("No usable transcript")

		exhausted := errors.StrategyExhausted(op, "no transcript available for this video")
		s.record(ctx, videoID, start, exhausted)
		return nil, exhausted
	}

	summary, err := s.summarizer.Summarize(ctx, text, language, model)
	if err != nil {
		logger.WithError(err).Error("Summarization failed")
		s.record(ctx, videoID, start, err)
		return nil, err
	}

	result := &Result{
		VideoID:          videoID,
		Title:            acquired.Title,
		TLDR:             summary.TLDR,
		Chapters:         summary.Chapters,
		Model:            model,
		TranscriptLength: len(text),
	}
	s.cache.Set(key, result, s.config.CacheTTL)

	s.record(ctx, videoID, start, nil)
	logger.WithFields(logrus.Fields{
		"source":            acquired.Source,
		"transcript_length": result.TranscriptLength,
		"chapters":          len(result.Chapters),
		"duration":          time.Since(start),
	}).Info("Digest completed")

	return result, nil
}

func (s *Service) record(ctx context.Context, videoID string, start time.Time, err error) {
	if s.sink == nil {
		return
	}

	rec := analytics.Record{
		VideoID:      videoID,
		Endpoint:     "/api/digest",
		StatusCode:   200,
		ResponseTime: time.Since(start),
	}
	if err != nil {
		rec.StatusCode = 500
		if appErr, ok := err.(*errors.AppError); ok {
			rec.StatusCode = appErr.Code
		}
		rec.ErrorMessage = err.Error()
	}

	s.sink.Write(ctx, rec)
}
