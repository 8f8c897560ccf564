package captions

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ytdigest/errors"
)

// Format identifies the presumed encoding of a raw caption payload.
type Format int

const (
	FormatXML Format = iota
	FormatJSON
	FormatPlain
)

// Segment is a time-bounded span of transcript text, offsets in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// TranscriptResult is the uniform output of every caption parse and
// acquisition strategy. Text is the space-joined segment texts, or the
// literal content for plain-text sources. FailureReason is set only when
// acquisition exhausted every strategy.
type TranscriptResult struct {
	Text          string    `json:"text"`
	Segments      []Segment `json:"segments"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

var (
	xmlTextPattern = regexp.MustCompile(`(?s)<text[^>]*\bstart="([0-9.]+)"[^>]*\bdur="([0-9.]+)"[^>]*>(.*?)</text>`)
	inlineTag      = regexp.MustCompile(`<[^>]+>`)
	charRef        = regexp.MustCompile(`&#(x?[0-9a-fA-F]+);`)
)

// Parse normalizes raw caption content into a TranscriptResult.
func Parse(raw string, format Format) (*TranscriptResult, error) {
	switch format {
	case FormatXML:
		return ParseXML(raw)
	case FormatJSON:
		return ParseJSON(raw)
	default:
		return ParsePlain(raw)
	}
}

// ParseXML extracts timedtext-style <text start=".." dur="..">..</text>
// elements. Zero matched elements is a parse failure, not an empty result.
func ParseXML(raw string) (*TranscriptResult, error) {
	const op = "captions.ParseXML"

	matches := xmlTextPattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil, errors.EmptyTranscript(op, "no caption elements found")
	}

	segments := make([]Segment, 0, len(matches))
	for _, m := range matches {
		start, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		dur, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		text := strings.Join(strings.Fields(DecodeEntities(inlineTag.ReplaceAllString(m[3], " "))), " ")
		segments = append(segments, Segment{
			Start: start,
			End:   start + dur,
			Text:  text,
		})
	}

	if len(segments) == 0 {
		return nil, errors.EmptyTranscript(op, "no caption elements found")
	}

	return &TranscriptResult{
		Text:     joinSegments(segments),
		Segments: segments,
	}, nil
}

type jsonSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type jsonTranscript struct {
	Text     string        `json:"text"`
	Segments []jsonSegment `json:"segments"`
}

// ParseJSON accepts either an array of {start?, end?, text} objects or an
// object with a top-level text and optional segments. Missing numeric
// fields default to zero.
func ParseJSON(raw string) (*TranscriptResult, error) {
	const op = "captions.ParseJSON"

	trimmed := strings.TrimSpace(raw)

	var list []jsonSegment
	if err := json.Unmarshal([]byte(trimmed), &list); err == nil {
		segments := convertSegments(list)
		if len(segments) == 0 {
			return nil, errors.EmptyTranscript(op, "no usable segments in JSON payload")
		}
		return &TranscriptResult{
			Text:     joinSegments(segments),
			Segments: segments,
		}, nil
	}

	var obj jsonTranscript
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, errors.EmptyTranscript(op, fmt.Sprintf("payload is not valid JSON: %v", err))
	}

	segments := convertSegments(obj.Segments)
	text := strings.TrimSpace(obj.Text)
	if text == "" {
		text = joinSegments(segments)
	}
	if text == "" {
		return nil, errors.EmptyTranscript(op, "JSON payload contains no text")
	}

	return &TranscriptResult{
		Text:     text,
		Segments: segments,
	}, nil
}

// ParsePlain treats any non-empty trimmed content as a single transcript
// with no segments.
func ParsePlain(raw string) (*TranscriptResult, error) {
	const op = "captions.ParsePlain"

	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, errors.EmptyTranscript(op, "content is empty")
	}

	return &TranscriptResult{Text: text}, nil
}

func convertSegments(list []jsonSegment) []Segment {
	segments := make([]Segment, 0, len(list))
	for _, s := range list {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Start: s.Start,
			End:   s.End,
			Text:  text,
		})
	}
	return segments
}

func joinSegments(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

// DecodeEntities resolves the five standard XML entities plus decimal and
// hex character references.
func DecodeEntities(s string) string {
	s = charRef.ReplaceAllStringFunc(s, func(ref string) string {
		body := ref[2 : len(ref)-1]
		base := 10
		if strings.HasPrefix(body, "x") || strings.HasPrefix(body, "X") {
			base = 16
			body = body[1:]
		}
		n, err := strconv.ParseInt(body, base, 32)
		if err != nil {
			return ref
		}
		return string(rune(n))
	})

	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return replacer.Replace(s)
}
