package summarize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Chapter is one timestamped entry of the chapter list, time normalized
// to MM:SS or HH:MM:SS. Chapters keep the transcript's narrative order.
type Chapter struct {
	Time  string `json:"time"`
	Title string `json:"title"`
}

type SummaryResult struct {
	TLDR     string    `json:"tldr"`
	Chapters []Chapter `json:"chapters"`
}

const unavailableTLDR = "Summary unavailable"

var (
	timestampPattern = regexp.MustCompile(`\b(\d{1,2}:\d{2}(?::\d{2})?)\b`)
	codeFencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

	summaryMarkers = []string{"tl;dr", "tldr", "summary", "resumen", "resumo", "résumé"}
	chapterMarkers = []string{"chapter", "timestamps", "timeline", "capítulos"}
)

// minTLDRLineLen is the threshold for treating an unmarked line as the
// summary during heuristic parsing.
const minTLDRLineLen = 40

// ParseSummary turns raw provider output into a SummaryResult. Strict
// JSON parsing is attempted first; malformed output falls back to
// heuristic line scanning, which never fails.
func ParseSummary(output string) *SummaryResult {
	if result, ok := parseStrict(output); ok {
		return result
	}
	return parseHeuristic(output)
}

type chapterPayload struct {
	Time  string `json:"time"`
	Title string `json:"title"`
}

type summaryPayload struct {
	TLDR     string            `json:"tldr"`
	Chapters *[]chapterPayload `json:"chapters"`
}

func parseStrict(output string) (*SummaryResult, bool) {
	candidate := stripCodeFence(output)

	var payload summaryPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		// The object may be embedded in surrounding prose.
		start := strings.IndexByte(candidate, '{')
		end := strings.LastIndexByte(candidate, '}')
		if start < 0 || end <= start {
			return nil, false
		}
		if err := json.Unmarshal([]byte(candidate[start:end+1]), &payload); err != nil {
			return nil, false
		}
	}

	if strings.TrimSpace(payload.TLDR) == "" || payload.Chapters == nil {
		return nil, false
	}

	result := &SummaryResult{
		TLDR:     strings.TrimSpace(payload.TLDR),
		Chapters: make([]Chapter, 0, len(*payload.Chapters)),
	}
	for _, c := range *payload.Chapters {
		if strings.TrimSpace(c.Time) == "" || strings.TrimSpace(c.Title) == "" {
			continue
		}
		result.Chapters = append(result.Chapters, Chapter{
			Time:  NormalizeTimestamp(strings.TrimSpace(c.Time)),
			Title: strings.TrimSpace(c.Title),
		})
	}
	return result, true
}

func stripCodeFence(s string) string {
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

func parseHeuristic(output string) *SummaryResult {
	result := &SummaryResult{Chapters: []Chapter{}}
	inChapters := false

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		if !inChapters && result.TLDR == "" && hasMarker(lower, summaryMarkers) {
			if idx := strings.IndexByte(line, ':'); idx >= 0 {
				if tldr := strings.TrimSpace(line[idx+1:]); tldr != "" {
					result.TLDR = tldr
					continue
				}
			}
		}

		if m := timestampPattern.FindStringSubmatchIndex(line); m != nil {
			ts := line[m[2]:m[3]]
			title := strings.TrimSpace(line[m[3]:])
			title = strings.TrimSpace(strings.TrimLeft(title, "-–—:.)]"))
			if title != "" {
				result.Chapters = append(result.Chapters, Chapter{
					Time:  NormalizeTimestamp(ts),
					Title: title,
				})
				inChapters = true
			}
			continue
		}

		if hasMarker(lower, chapterMarkers) {
			inChapters = true
			continue
		}

		if !inChapters && result.TLDR == "" && len(line) >= minTLDRLineLen {
			result.TLDR = line
		}
	}

	if result.TLDR == "" {
		result.TLDR = unavailableTLDR
	}
	return result
}

func hasMarker(lower string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// NormalizeTimestamp zero-pads two-part timestamps to MM:SS and
// three-part timestamps to HH:MM:SS. Any other shape passes through
// unmodified.
func NormalizeTimestamp(ts string) string {
	parts := strings.Split(ts, ":")
	switch len(parts) {
	case 2:
		return fmt.Sprintf("%02d:%02d", leadingInt(parts[0]), leadingInt(parts[1]))
	case 3:
		return fmt.Sprintf("%02d:%02d:%02d", leadingInt(parts[0]), leadingInt(parts[1]), leadingInt(parts[2]))
	default:
		return ts
	}
}

func leadingInt(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
