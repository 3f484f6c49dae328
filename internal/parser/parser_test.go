package parser

import (
	"strings"
	"testing"

	"github.com/ivlev/storyboard/internal/scene"
)

func TestParse_MarkersAndSections(t *testing.T) {
	text := strings.Join([]string{
		"[Verse 1]",
		"[3] Walking down the road",
		"",
		"Under a silver sky [4.5s]",
		"No marker here",
		"Chorus:",
		"We are the night",
		"# Bridge",
		"[2.25] Hold on",
	}, "\n")

	res := Parse(text, Options{Format: FormatAuto, TargetDuration: 30})

	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
	if res.TargetDuration != 30 {
		t.Errorf("expected target 30 carried through, got %.2f", res.TargetDuration)
	}

	want := []struct {
		text     string
		section  scene.Section
		explicit bool
		dur      float64
	}{
		{"Walking down the road", scene.SectionVerse, true, 3},
		{"Under a silver sky", scene.SectionVerse, true, 4.5},
		{"No marker here", scene.SectionVerse, false, 0},
		{"We are the night", scene.SectionChorus, false, 0},
		{"Hold on", scene.SectionBridge, true, 2.25},
	}
	if len(res.Scenes) != len(want) {
		t.Fatalf("expected %d scenes, got %d", len(want), len(res.Scenes))
	}
	for i, w := range want {
		got := res.Scenes[i]
		if got.Order != i {
			t.Errorf("scene %d: order %d", i, got.Order)
		}
		if got.SourceText != w.text {
			t.Errorf("scene %d: text %q, want %q", i, got.SourceText, w.text)
		}
		if got.Section != w.section {
			t.Errorf("scene %d: section %q, want %q", i, got.Section, w.section)
		}
		if got.Explicit != w.explicit || got.DurationSec != w.dur {
			t.Errorf("scene %d: explicit=%v dur=%.2f, want explicit=%v dur=%.2f",
				i, got.Explicit, got.DurationSec, w.explicit, w.dur)
		}
	}
}

func TestParse_MalformedMarkerDowngrades(t *testing.T) {
	tests := []string{
		"[3.x] broken",
		"[-2] negative",
		"[4s unclosed",
		"trailing [1.2.3]",
		"[] empty",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			res := Parse(line, Options{Format: FormatAuto})
			if len(res.Scenes) != 1 {
				t.Fatalf("expected 1 scene, got %d", len(res.Scenes))
			}
			if res.Scenes[0].Explicit {
				t.Errorf("malformed marker must not produce an explicit duration")
			}
			if res.Scenes[0].SourceText != line {
				t.Errorf("expected line kept verbatim, got %q", res.Scenes[0].SourceText)
			}
			if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "malformed") {
				t.Errorf("expected one malformed warning, got %v", res.Warnings)
			}
		})
	}
}

func TestParse_FormatHints(t *testing.T) {
	text := "[Chorus]\n[5] Sing it loud"

	tests := []struct {
		format      Format
		wantScenes  int
		wantSection scene.Section
		wantExplict bool
	}{
		{FormatAuto, 1, scene.SectionChorus, true},
		{FormatTimestamp, 2, scene.SectionNone, true},
		{FormatSections, 1, scene.SectionChorus, false},
		{FormatPlain, 2, scene.SectionNone, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			res := Parse(text, Options{Format: tt.format})
			if len(res.Scenes) != tt.wantScenes {
				t.Fatalf("expected %d scenes, got %d", tt.wantScenes, len(res.Scenes))
			}
			last := res.Scenes[len(res.Scenes)-1]
			if last.Section != tt.wantSection {
				t.Errorf("section %q, want %q", last.Section, tt.wantSection)
			}
			if last.Explicit != tt.wantExplict {
				t.Errorf("explicit %v, want %v", last.Explicit, tt.wantExplict)
			}
		})
	}
}

func TestParse_ZeroMarkerFlagged(t *testing.T) {
	res := Parse("[0] blink", Options{})
	if len(res.Scenes) != 1 || !res.Scenes[0].Explicit || res.Scenes[0].DurationSec != 0 {
		t.Fatalf("unexpected scenes: %+v", res.Scenes)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected zero-duration warning, got %v", res.Warnings)
	}
}

func TestParse_UnknownFormatFallsBack(t *testing.T) {
	res := Parse("[2] hello", Options{Format: "karaoke"})
	if len(res.Warnings) != 1 {
		t.Fatalf("expected fallback warning, got %v", res.Warnings)
	}
	if !res.Scenes[0].Explicit {
		t.Errorf("auto format should parse markers")
	}
}

func TestParse_NonHeaderColonLineIsScene(t *testing.T) {
	res := Parse("She said:\nhello", Options{})
	if len(res.Scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(res.Scenes))
	}
}
