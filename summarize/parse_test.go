package summarize

import (
	"strings"
	"testing"
)

func TestParseSummaryStrictJSON(t *testing.T) {
	output := `{"tldr": "A video about testing.", "chapters": [
		{"time": "0:00", "title": "Intro"},
		{"time": "2:5", "title": "Main part"},
		{"time": "1:2:3", "title": "Outro"},
		{"time": "", "title": "dropped"},
		{"time": "3:00", "title": ""}
	]}`

	result := ParseSummary(output)

	if result.TLDR != "A video about testing." {
		t.Errorf("tldr = %q", result.TLDR)
	}
	if len(result.Chapters) != 3 {
		t.Fatalf("expected 3 chapters after filtering, got %d", len(result.Chapters))
	}

	want := []Chapter{
		{Time: "00:00", Title: "Intro"},
		{Time: "02:05", Title: "Main part"},
		{Time: "01:02:03", Title: "Outro"},
	}
	for i, w := range want {
		if result.Chapters[i] != w {
			t.Errorf("chapter %d = %+v, want %+v", i, result.Chapters[i], w)
		}
	}
}

func TestParseSummaryCodeFence(t *testing.T) {
	output := "Here you go:\n```json\n{\"tldr\": \"Fenced summary.\", \"chapters\": []}\n```"

	result := ParseSummary(output)
	if result.TLDR != "Fenced summary." {
		t.Errorf("tldr = %q", result.TLDR)
	}
	if len(result.Chapters) != 0 {
		t.Errorf("expected no chapters, got %d", len(result.Chapters))
	}
}

func TestParseSummaryEmbeddedObject(t *testing.T) {
	output := `Sure! {"tldr": "Embedded result.", "chapters": [{"time": "10:30", "title": "Topic"}]} hope that helps`

	result := ParseSummary(output)
	if result.TLDR != "Embedded result." {
		t.Errorf("tldr = %q", result.TLDR)
	}
	if len(result.Chapters) != 1 || result.Chapters[0].Time != "10:30" {
		t.Errorf("chapters = %+v", result.Chapters)
	}
}

func TestParseSummaryHeuristic(t *testing.T) {
	output := strings.Join([]string{
		"Resumen: Video about X",
		"",
		"Chapters:",
		"02:30 Main topic",
		"05:45 - Second topic",
		"1:02:03) Third topic",
	}, "\n")

	result := ParseSummary(output)

	if !strings.Contains(result.TLDR, "Video about X") {
		t.Errorf("tldr = %q, want it to contain 'Video about X'", result.TLDR)
	}

	want := []Chapter{
		{Time: "02:30", Title: "Main topic"},
		{Time: "05:45", Title: "Second topic"},
		{Time: "01:02:03", Title: "Third topic"},
	}
	if len(result.Chapters) != len(want) {
		t.Fatalf("expected %d chapters, got %d: %+v", len(want), len(result.Chapters), result.Chapters)
	}
	for i, w := range want {
		if result.Chapters[i] != w {
			t.Errorf("chapter %d = %+v, want %+v", i, result.Chapters[i], w)
		}
	}
}

func TestParseSummaryHeuristicLongLineTLDR(t *testing.T) {
	output := strings.Join([]string{
		"ok",
		"This video walks through the entire deployment pipeline in detail.",
		"02:30 Main topic",
	}, "\n")

	result := ParseSummary(output)
	if result.TLDR != "This video walks through the entire deployment pipeline in detail." {
		t.Errorf("tldr = %q", result.TLDR)
	}
	if len(result.Chapters) != 1 {
		t.Errorf("expected 1 chapter, got %d", len(result.Chapters))
	}
}

func TestParseSummaryHeuristicPlaceholder(t *testing.T) {
	result := ParseSummary("short\nlines\nonly")
	if result.TLDR != unavailableTLDR {
		t.Errorf("tldr = %q, want placeholder", result.TLDR)
	}
	if len(result.Chapters) != 0 {
		t.Errorf("expected no chapters, got %d", len(result.Chapters))
	}
}

func TestParseSummaryStrictRequiresChapters(t *testing.T) {
	// Valid JSON missing the chapters array falls through to heuristics.
	result := ParseSummary(`{"tldr": "Missing chapter list entirely but still a long line."}`)
	if result.TLDR == "" {
		t.Fatal("expected a tldr")
	}
	if result.Chapters == nil {
		t.Error("heuristic result must have a non-nil chapter slice")
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"02:05", "02:05"},
		{"2:5", "02:05"},
		{"1:2:3", "01:02:03"},
		{"00:00", "00:00"},
		{"12:34:56", "12:34:56"},
		{"9:59", "09:59"},
		{"42", "42"},
		{"1:2:3:4", "1:2:3:4"},
	}

	for _, tt := range tests {
		if got := NormalizeTimestamp(tt.in); got != tt.want {
			t.Errorf("NormalizeTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	// Idempotence: normalizing a normalized value is a no-op.
	for _, tt := range tests {
		once := NormalizeTimestamp(tt.in)
		if twice := NormalizeTimestamp(once); twice != once {
			t.Errorf("NormalizeTimestamp not idempotent: %q -> %q -> %q", tt.in, once, twice)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate() = %q", got)
	}

	long := strings.Repeat("a", 20)
	got := Truncate(long, 10)
	if got != strings.Repeat("a", 10)+"..." {
		t.Errorf("Truncate() = %q", got)
	}
}
