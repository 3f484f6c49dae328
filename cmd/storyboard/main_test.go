package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/storyboard/internal/director"
	"github.com/ivlev/storyboard/internal/generation"
	"github.com/ivlev/storyboard/internal/snap"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeInput(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.txt", "[Verse]\n[4] first line\n[4] second line\n[Chorus]\n[8] hook\n")
	outDir := filepath.Join(dir, "out")

	stdout, err := runCLI(t, "build", input, "--out", outDir, "--dispatch", "--workers", "2")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.Contains(stdout, "0 warnings") {
		t.Errorf("summary missing from output:\n%s", stdout)
	}

	sb, err := director.ReadStoryboard(filepath.Join(outDir, "storyboard.yaml"))
	if err != nil {
		t.Fatalf("read storyboard: %v", err)
	}
	if len(sb.Scenes) != 3 || len(sb.Batches) != 2 {
		t.Fatalf("got %d scenes, %d batches", len(sb.Scenes), len(sb.Batches))
	}
	if sb.Batches[0].ClipDurationSec != 8 || sb.Batches[0].ApprovedMedia == "" {
		t.Errorf("unexpected first batch %+v", sb.Batches[0])
	}

	data, err := os.ReadFile(filepath.Join(outDir, "requests.json"))
	if err != nil {
		t.Fatalf("read requests: %v", err)
	}
	var reqs []generation.Request
	if err := json.Unmarshal(data, &reqs); err != nil {
		t.Fatalf("requests.json: %v", err)
	}
	if len(reqs) != 2 || reqs[0].Section != "verse" || len(reqs[0].LyricTimings) != 2 {
		t.Errorf("unexpected requests %+v", reqs)
	}

	if _, err := os.Stat(filepath.Join(outDir, "manifest.json")); err != nil {
		t.Errorf("manifest not written: %v", err)
	}
}

func TestBuildCommand_FixedProviderViolation(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "script.txt", "[7.5] the camera drifts\n")

	_, err := runCLI(t, "build", input, "--out", filepath.Join(dir, "out"), "--provider", "fixed8")
	if !errors.Is(err, snap.ErrFixedDuration) {
		t.Fatalf("expected fixed duration error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "out", "requests.json")); statErr == nil {
		t.Error("no requests may be written when the provider rejects a batch")
	}
}

func TestBuildCommand_UnusableMusicFallsBack(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.txt", "[4] first line\n[4] second line\n")
	broken := writeInput(t, dir, "music.yaml", "tempo_bpm: [not a number\n")

	tests := []struct {
		name  string
		flags []string
		want  string
	}{
		{"malformed music", []string{"--music", broken}, "falling back to pacing"},
		{"missing music", []string{"--music", filepath.Join(dir, "missing.yaml")}, "falling back to pacing"},
		{"malformed estimates", []string{"--estimates", broken}, "estimates unusable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := filepath.Join(t.TempDir(), "out")
			args := append([]string{"build", input, "--out", outDir}, tt.flags...)
			stdout, err := runCLI(t, args...)
			if err != nil {
				t.Fatalf("build must fall back, got %v", err)
			}
			if !strings.Contains(stdout, "(1 warning)") || !strings.Contains(stdout, tt.want) {
				t.Errorf("expected one %q warning:\n%s", tt.want, stdout)
			}

			sb, err := director.ReadStoryboard(filepath.Join(outDir, "storyboard.yaml"))
			if err != nil {
				t.Fatalf("read storyboard: %v", err)
			}
			if len(sb.Warnings) != 1 {
				t.Errorf("unexpected warnings %v", sb.Warnings)
			}
			if len(sb.Batches) != 1 || sb.Batches[0].ClipDurationSec != 8 {
				t.Errorf("unexpected batches %+v", sb.Batches)
			}
		})
	}
}

func TestBuildCommand_WorkingTree(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, d := range []string{"input/text", "input/music"} {
		if err := os.MkdirAll(d, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	writeInput(t, "input/text", "song.txt", "[4] first line\n[4] second line\n")
	writeInput(t, "input/music", "track.yaml", "tempo_bpm: 120\ntotal_duration_sec: 8\n")

	stdout, err := runCLI(t, "build")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	for _, want := range []string{"song.txt", "track.yaml"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output should mention %s:\n%s", want, stdout)
		}
	}
	for _, d := range []string{"input/refs", "output"} {
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			t.Errorf("%s not bootstrapped: %v", d, err)
		}
	}

	stamped, err := filepath.Glob(filepath.Join("output", "storyboard_*.yaml"))
	if err != nil || len(stamped) != 1 {
		t.Fatalf("expected one timestamped storyboard, got %v (%v)", stamped, err)
	}
	sb, err := director.ReadStoryboard(stamped[0])
	if err != nil {
		t.Fatalf("read storyboard: %v", err)
	}
	if len(sb.Batches) != 1 || sb.Batches[0].ClipDurationSec != 8 {
		t.Errorf("unexpected batches %+v", sb.Batches)
	}
}

func TestShowCommand_ReloadsLatest(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.txt", "[Verse]\n[4] first line\n[4] second line\n[Chorus]\n[8] hook\n")
	outDir := filepath.Join(dir, "out")

	if _, err := runCLI(t, "build", input, "--out", outDir, "--dispatch"); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	stdout, err := runCLI(t, "show", "--dir", outDir)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	for _, want := range []string{"veo", "verse", "chorus", "first batch", "clip_000.mp4"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}

	if _, err := runCLI(t, "show", "--dir", t.TempDir()); err == nil {
		t.Error("expected error for a directory without storyboards")
	}
}

func TestBuildCommand_BadFlags(t *testing.T) {
	dir := t.TempDir()
	input := writeInput(t, dir, "song.txt", "line\n")

	cases := [][]string{
		{"build", input, "--strength", "2"},
		{"build", input, "--provider", "nope"},
		{"build", filepath.Join(dir, "clip.mp4")},
	}
	for _, args := range cases {
		if _, err := runCLI(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestProvidersCommand(t *testing.T) {
	stdout, err := runCLI(t, "providers")
	if err != nil {
		t.Fatalf("providers failed: %v", err)
	}
	for _, want := range []string{"veo", "4s/6s/8s", "fixed 8s", "exactly the clip length"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRefsCommand_Invalid(t *testing.T) {
	stdout, err := runCLI(t, "refs", filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected error for missing reference")
	}
	if !strings.Contains(stdout, "does not exist") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestCollectReferences(t *testing.T) {
	dir := t.TempDir()
	writeInput(t, dir, "hero.png", "x")
	writeInput(t, dir, "notes.txt", "x")

	refs, err := collectReferences([]string{"style:" + dir, "object:/tmp/cup.png"})
	if err != nil {
		t.Fatalf("collectReferences failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %+v", refs)
	}
	if refs[0].Name != "hero" || refs[0].Type != "style" {
		t.Errorf("unexpected dir ref %+v", refs[0])
	}
	if refs[1].Path != "/tmp/cup.png" || refs[1].Type != "object" {
		t.Errorf("unexpected file ref %+v", refs[1])
	}
}
