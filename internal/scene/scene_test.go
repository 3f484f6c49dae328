package scene

import "testing"

func TestParseSection(t *testing.T) {
	tests := []struct {
		label string
		want  Section
		ok    bool
	}{
		{"Verse", SectionVerse, true},
		{" PRE-CHORUS ", SectionPreChorus, true},
		{"refrain", SectionChorus, true},
		{"none", SectionNone, true},
		{"Scene", SectionNone, false},
	}
	for _, tt := range tests {
		got, ok := ParseSection(tt.label)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSection(%q) = %q, %v; want %q, %v", tt.label, got, ok, tt.want, tt.ok)
		}
	}
	if SectionNone.String() != "none" {
		t.Errorf("empty section should print as none")
	}
}

func TestLayoutAndRetime(t *testing.T) {
	scenes := []Scene{{DurationSec: 2}, {DurationSec: 3}, {DurationSec: 1.5}}
	Layout(scenes, 1)

	if scenes[0].StartSec != 1 || scenes[1].StartSec != 3 || scenes[2].EndSec != 7.5 {
		t.Errorf("unexpected layout %+v", scenes)
	}
	if TotalDuration(scenes) != 6.5 {
		t.Errorf("total %.2f, want 6.5", TotalDuration(scenes))
	}

	scenes[1].EndSec = 5
	scenes[2].StartSec = 5
	Retime(scenes)
	if scenes[1].DurationSec != 2 || scenes[2].DurationSec != 2.5 {
		t.Errorf("retime mismatch %+v", scenes)
	}
}

func TestTimingsFallback(t *testing.T) {
	s := Scene{SourceText: "a\nb", StartSec: 2, EndSec: 6}
	lt := s.Timings()
	if len(lt) != 1 || lt[0].DurationSec != 4 || lt[0].Text != "a\nb" {
		t.Errorf("unexpected fallback timings %+v", lt)
	}
	if len(s.Lines()) != 2 {
		t.Errorf("Lines() = %v", s.Lines())
	}
}

func TestCloneIsDeep(t *testing.T) {
	in := []Scene{{
		LyricTimings:    []LyricTiming{{Text: "x"}},
		ReferenceImages: []ReferenceImage{{Path: "a.png"}},
		Metadata:        &BatchMetadata{MergedCount: 1, OriginalSceneIDs: []int{0}},
	}}
	out := Clone(in)
	out[0].LyricTimings[0].Text = "y"
	out[0].ReferenceImages[0].Path = "b.png"
	out[0].Metadata.OriginalSceneIDs[0] = 9

	if in[0].LyricTimings[0].Text != "x" || in[0].ReferenceImages[0].Path != "a.png" || in[0].Metadata.OriginalSceneIDs[0] != 0 {
		t.Errorf("Clone shares memory with its input: %+v", in[0])
	}
}

func TestReferenceSet(t *testing.T) {
	rs := NewReferenceSet(2)
	if err := rs.Add(ReferenceImage{Path: "a"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	rs.Add(ReferenceImage{Path: "b"})
	if err := rs.Add(ReferenceImage{Path: "c"}); err == nil {
		t.Error("expected error when the set is full")
	}
	if !rs.Remove("a") || rs.Remove("a") {
		t.Error("Remove should succeed once")
	}
	if l := rs.List(); len(l) != 1 || l[0].Path != "b" {
		t.Errorf("List() = %+v", l)
	}

	var nilSet *ReferenceSet
	if nilSet.List() != nil {
		t.Error("nil set should list nothing")
	}
}

func TestMusicTimingValidate(t *testing.T) {
	tests := []struct {
		name  string
		m     *MusicTiming
		valid bool
	}{
		{"tempo only", &MusicTiming{TempoBPM: 120, TotalDurationSec: 10}, true},
		{"nil", nil, false},
		{"no length", &MusicTiming{TempoBPM: 120}, false},
		{"no grid data", &MusicTiming{TotalDurationSec: 10}, false},
		{"unsorted beats", &MusicTiming{Beats: []float64{1, 0.5}, TotalDurationSec: 10}, false},
		{"inverted section", &MusicTiming{Sections: []MusicSection{{StartSec: 4, EndSec: 2}}, TotalDurationSec: 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if (err == nil) != tt.valid {
				t.Errorf("Validate() = %v, valid want %v", err, tt.valid)
			}
		})
	}

	m := MusicTiming{TimeSignature: "6/8"}
	if m.BeatsPerMeasure() != 6 {
		t.Errorf("BeatsPerMeasure() = %d, want 6", m.BeatsPerMeasure())
	}
}

func TestWarningsSummary(t *testing.T) {
	var w Warnings
	if w.Summary() != "0 warnings" {
		t.Errorf("got %q", w.Summary())
	}
	w.Addf("scene %d", 1)
	if w.Summary() != "1 warning" {
		t.Errorf("got %q", w.Summary())
	}
	w.Merge(Warnings{"a", "b"})
	if w.Summary() != "3 warnings" {
		t.Errorf("got %q", w.Summary())
	}
}
