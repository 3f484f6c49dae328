package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ivlev/storyboard/internal/config"
	"github.com/ivlev/storyboard/internal/director"
	"github.com/ivlev/storyboard/internal/engine"
	"github.com/ivlev/storyboard/internal/generation"
	"github.com/ivlev/storyboard/internal/scene"
	"github.com/ivlev/storyboard/internal/source"
	"github.com/ivlev/storyboard/internal/system"
)

const (
	defaultInputDir = "input/text"
	defaultMusicDir = "input/music"
	defaultRefsDir  = "input/refs"
)

func newBuildCmd() *cobra.Command {
	def := config.Default()
	cmd := &cobra.Command{
		Use:   "build [input]",
		Short: "Parse, time, batch and snap a script into generation requests",
		Long: `Build a storyboard from a script, lyric sheet or PDF.
Without an input argument the working tree is used: the newest text or PDF
file in input/text, the newest music timing in input/music (unless --music is
set) and the images in input/refs (unless --refs is set).
Writes storyboard.yaml, a timestamped copy of it, requests.json and
manifest.json to the output directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}

	f := cmd.Flags()
	f.String("format", def.Format, "Input format: auto, timestamp, sections, plain")
	f.String("pacing", def.Pacing, "Pacing for scenes without timing: fast, medium, slow")
	f.Float64("duration", 0, "Target total duration in seconds (0 = unset)")
	f.Bool("match-target", false, "Scale estimated durations so the total matches --duration")
	f.String("music", "", "Music timing file (YAML or JSON)")
	f.String("estimates", "", "Per-scene duration estimates file (YAML)")
	f.String("granularity", def.Granularity, "Music grid: beat, measure, section")
	f.Float64("strength", def.SnapStrength, "Music snap strength in [0, 1]")
	f.String("provider", getenvDefault("STORYBOARD_PROVIDER", def.Provider), "Video provider")
	f.Float64("tolerance", 0, "Batch tolerance multiplier (0 = provider default)")
	f.Int("max-refs", 0, "Max references per request (0 = provider default)")
	f.StringSlice("refs", nil, "Reference images or directories, optionally prefixed with a type (character:hero.png)")
	f.Bool("smart-refs", false, "Pick references per batch by keyword match")
	f.String("detector", def.Detector, "Scene break detector: keyword, none")
	f.Float64("min-duration", def.MinDuration, "Shortest scene duration after scaling")
	f.String("out", def.OutputDir, "Output directory")
	f.Bool("dispatch", false, "Run requests through the dry-run generator")
	f.Int("workers", getenvInt("STORYBOARD_WORKERS", 0), "Dispatch workers (0 = CPU count)")
	return cmd
}

func configFromFlags(cmd *cobra.Command) *config.Config {
	f := cmd.Flags()
	cfg := config.Default()
	cfg.Format, _ = f.GetString("format")
	cfg.Pacing, _ = f.GetString("pacing")
	cfg.TotalDuration, _ = f.GetFloat64("duration")
	cfg.MatchTarget, _ = f.GetBool("match-target")
	cfg.MusicPath, _ = f.GetString("music")
	cfg.EstimatesPath, _ = f.GetString("estimates")
	cfg.Granularity, _ = f.GetString("granularity")
	cfg.SnapStrength, _ = f.GetFloat64("strength")
	cfg.Provider, _ = f.GetString("provider")
	cfg.ProvidersPath, _ = f.GetString("providers")
	cfg.Tolerance, _ = f.GetFloat64("tolerance")
	cfg.MaxReferences, _ = f.GetInt("max-refs")
	cfg.ReferencePaths, _ = f.GetStringSlice("refs")
	cfg.SmartRefs, _ = f.GetBool("smart-refs")
	cfg.Detector, _ = f.GetString("detector")
	cfg.MinDuration, _ = f.GetFloat64("min-duration")
	cfg.OutputDir, _ = f.GetString("out")
	cfg.Dispatch, _ = f.GetBool("dispatch")
	cfg.Workers, _ = f.GetInt("workers")
	cfg.Verbose, _ = f.GetBool("verbose")
	return cfg
}

func runBuild(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfg := configFromFlags(cmd)

	if len(args) > 0 {
		cfg.InputPath = args[0]
	} else if err := useWorkingTree(cfg, out); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	table, err := config.LoadProviders(cfg.ProvidersPath)
	if err != nil {
		return err
	}
	spec, err := table.Lookup(cfg.Provider)
	if err != nil {
		return err
	}

	in, err := loadInput(cfg)
	if err != nil {
		return err
	}
	for _, w := range in.Warnings {
		fmt.Fprintf(out, "[!] %s\n", w)
	}

	project, err := engine.NewStoryboardProject(cfg, spec, newLogger(cmd))
	if err != nil {
		return err
	}
	res, err := project.Build(in)
	if err != nil {
		return err
	}

	now := time.Now()
	sb := res.Storyboard(spec.Name, cfg.InputPath, now)
	if cfg.Dispatch {
		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
		defer stop()
		events, err := project.Dispatch(ctx, generation.DryRunGenerator{OutDir: cfg.OutputDir}, res.Requests)
		if err != nil {
			return err
		}
		sb.ApplyCompletions(events)
	}

	if err := system.EnsureDirs(cfg.OutputDir); err != nil {
		return err
	}
	for _, path := range []string{filepath.Join(cfg.OutputDir, "storyboard.yaml"), director.GenerateStoryboardPath(cfg.OutputDir, now)} {
		if err := director.WriteStoryboard(sb, path); err != nil {
			return fmt.Errorf("write storyboard: %w", err)
		}
	}
	if err := generation.WriteJSON(filepath.Join(cfg.OutputDir, "requests.json"), res.Requests); err != nil {
		return fmt.Errorf("write requests: %w", err)
	}
	manifest := generation.NewManifest(res.ProjectID, spec.Name, sb.Batches, res.Requests)
	if err := generation.WriteJSON(filepath.Join(cfg.OutputDir, "manifest.json"), manifest); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	fmt.Fprintf(out, "[*] Провайдер: %s | Сцен: %d | Пакетов: %d | Длительность: %.2fs\n",
		spec.Name, len(res.Scenes), len(res.Batches), sb.TotalDurationSec)
	for _, w := range res.Warnings[len(in.Warnings):] {
		fmt.Fprintf(out, "[!] %s\n", w)
	}
	fmt.Fprintf(out, "[+++] Готово: %s (%s)\n", cfg.OutputDir, res.Warnings.Summary())
	return nil
}

// useWorkingTree bootstraps the default directories and picks the newest
// input, plus music and references when their flags are unset.
func useWorkingTree(cfg *config.Config, out io.Writer) error {
	if err := system.EnsureDirs(system.DefaultDirs...); err != nil {
		return err
	}
	latest, err := system.FindLatestInput(defaultInputDir)
	if err != nil {
		return fmt.Errorf("%v. Положите текст или PDF в %s/", err, defaultInputDir)
	}
	cfg.InputPath = latest
	fmt.Fprintf(out, "[*] Выбран файл: %s\n", cfg.InputPath)

	if cfg.MusicPath == "" {
		if music, err := system.FindLatestMusic(defaultMusicDir); err == nil {
			cfg.MusicPath = music
			fmt.Fprintf(out, "[*] Музыка: %s\n", cfg.MusicPath)
		}
	}
	if len(cfg.ReferencePaths) == 0 {
		if images, err := system.FindImages(defaultRefsDir); err == nil && len(images) > 0 {
			cfg.ReferencePaths = []string{defaultRefsDir}
			fmt.Fprintf(out, "[*] Референсы: %d из %s\n", len(images), defaultRefsDir)
		}
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func loadInput(cfg *config.Config) (engine.Input, error) {
	in := engine.Input{SourcePath: cfg.InputPath}

	text, err := source.ReadAll(cfg.InputPath)
	if err != nil {
		return in, fmt.Errorf("read input: %w", err)
	}
	in.Text = text

	// Музыка и оценки необязательны: при ошибке работаем по темпу речи
	if cfg.MusicPath != "" {
		if in.Music, err = source.ReadMusicTiming(cfg.MusicPath); err != nil {
			in.Music = nil
			in.Warnings.Addf("music timing unusable (%v), falling back to pacing", err)
		}
	}
	if cfg.EstimatesPath != "" {
		if in.Estimates, err = source.ReadEstimates(cfg.EstimatesPath); err != nil {
			in.Estimates = nil
			in.Warnings.Addf("duration estimates unusable (%v), ignored", err)
		}
	}
	if in.References, err = collectReferences(cfg.ReferencePaths); err != nil {
		return in, err
	}
	return in, nil
}

// collectReferences expands directories and reads an optional "type:" prefix.
func collectReferences(paths []string) ([]scene.ReferenceImage, error) {
	var refs []scene.ReferenceImage
	for _, arg := range paths {
		refType := scene.ReferenceCharacter
		path := arg
		if prefix, rest, ok := strings.Cut(arg, ":"); ok {
			if t, err := scene.ParseReferenceType(prefix); err == nil {
				refType, path = t, rest
			}
		}

		files := []string{path}
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if files, err = system.FindImages(path); err != nil {
				return nil, err
			}
		}
		for _, file := range files {
			name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			refs = append(refs, scene.ReferenceImage{
				Path:             file,
				Type:             refType,
				Name:             name,
				ValidationStatus: scene.ValidationPending,
			})
		}
	}
	return refs, nil
}
