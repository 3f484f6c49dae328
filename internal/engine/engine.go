package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/storyboard/internal/batcher"
	"github.com/ivlev/storyboard/internal/config"
	"github.com/ivlev/storyboard/internal/continuity"
	"github.com/ivlev/storyboard/internal/director"
	"github.com/ivlev/storyboard/internal/generation"
	"github.com/ivlev/storyboard/internal/music"
	"github.com/ivlev/storyboard/internal/parser"
	"github.com/ivlev/storyboard/internal/refcheck"
	"github.com/ivlev/storyboard/internal/scene"
	"github.com/ivlev/storyboard/internal/snap"
	"github.com/ivlev/storyboard/internal/timing"
)

var ErrNoScenes = errors.New("input contains no scenes")

// Input is everything one build consumes. Only Text is required.
type Input struct {
	Text       string
	SourcePath string
	Music      *scene.MusicTiming
	Estimates  []float64
	References []scene.ReferenceImage
	// Warnings raised while loading the input, e.g. unusable music timing.
	Warnings scene.Warnings
}

type Result struct {
	ProjectID string
	// Scenes are the timed scenes before batching.
	Scenes    []scene.Scene
	Sources   []timing.Source
	Batches   []scene.Scene
	Decisions []continuity.Decision
	Requests  []generation.Request
	// References is the validated project-level set.
	References *scene.ReferenceSet
	Warnings   scene.Warnings
}

type StoryboardProject struct {
	Config    *config.Config
	Provider  config.ProviderSpec
	Policy    *continuity.Policy
	Validator *refcheck.Validator
	Logger    *slog.Logger
}

// NewStoryboardProject applies config overrides on top of the provider spec.
func NewStoryboardProject(cfg *config.Config, provider config.ProviderSpec, logger *slog.Logger) (*StoryboardProject, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	provider = provider.WithDefaults()
	if cfg.Tolerance > 0 {
		provider.Tolerance = cfg.Tolerance
	}
	if cfg.MaxReferences > 0 {
		provider.MaxReferences = cfg.MaxReferences
	}

	det, err := continuity.NewBreakDetector(cfg.Detector)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &StoryboardProject{
		Config:    cfg,
		Provider:  provider,
		Policy:    &continuity.Policy{Detector: det, MaxReferences: provider.MaxReferences},
		Validator: refcheck.NewValidator(),
		Logger:    logger,
	}, nil
}

// Build runs parse, timing, music alignment, batching, snapping, continuity
// and reference validation. A fixed-duration violation aborts the build
// before any request is produced.
func (p *StoryboardProject) Build(in Input) (*Result, error) {
	start := time.Now()
	res := &Result{ProjectID: uuid.NewString()}
	log := p.Logger.With(slog.String("project_id", res.ProjectID))

	res.Warnings.Merge(in.Warnings)

	// 1. Разбор текста
	parsed := parser.Parse(in.Text, parser.Options{
		Format:         parser.Format(p.Config.Format),
		TargetDuration: p.Config.TotalDuration,
	})
	res.Warnings.Merge(parsed.Warnings)
	if len(parsed.Scenes) == 0 {
		return nil, ErrNoScenes
	}
	log.Debug("parsed input", slog.Int("scenes", len(parsed.Scenes)), slog.String("format", p.Config.Format))

	// 2. Длительности
	pacing, err := timing.ParsePacing(p.Config.Pacing)
	if err != nil {
		return nil, err
	}
	est := timing.Estimate(parsed.Scenes, timing.Options{
		Music:          in.Music,
		Estimates:      in.Estimates,
		Pacing:         pacing,
		TargetDuration: parsed.TargetDuration,
		MatchTarget:    p.Config.MatchTarget,
		MinDuration:    p.Config.MinDuration,
	})
	res.Warnings.Merge(est.Warnings)
	res.Sources = est.Sources
	scenes := est.Scenes

	// 3. Привязка к музыке
	if in.Music != nil && in.Music.Validate() == nil {
		scenes, err = p.alignToMusic(scenes, est.Pending, in.Music, &res.Warnings)
		if err != nil {
			return nil, err
		}
		log.Debug("aligned to music",
			slog.String("granularity", p.Config.Granularity),
			slog.Float64("strength", p.Config.SnapStrength))
	}
	res.Scenes = scenes

	// 4. Пакетирование и подгонка под провайдера
	batches, err := batcher.Batch(scenes, batcher.Options{
		TargetSec: p.Provider.Target(),
		Tolerance: p.Provider.Tolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("batch scenes: %w", err)
	}
	snapper, err := snap.New(p.Provider.AllowedDurations, p.Provider.FixedDuration)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", p.Provider.Name, err)
	}
	w, err := snapper.Apply(batches)
	if err != nil {
		log.Error("provider constraint violated", slog.String("provider", p.Provider.Name), slog.String("error", err.Error()))
		return nil, err
	}
	res.Warnings.Merge(w)

	// 5. Референсы и непрерывность
	res.References = p.resolveReferences(in.References, batches, &res.Warnings)
	res.Batches = batches
	res.Requests, res.Decisions = generation.BuildRequests(res.ProjectID, batches, p.Policy, res.References)

	for _, msg := range res.Warnings {
		log.Warn(msg)
	}
	log.Info("storyboard built",
		slog.Int("scenes", len(res.Scenes)),
		slog.Int("batches", len(res.Batches)),
		slog.Float64("total_sec", scene.TotalDuration(res.Scenes)),
		slog.String("provider", p.Provider.Name),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

func (p *StoryboardProject) alignToMusic(scenes []scene.Scene, pending []int, m *scene.MusicTiming, warnings *scene.Warnings) ([]scene.Scene, error) {
	if len(pending) > 0 {
		var w scene.Warnings
		scenes, w = music.Distribute(scenes, pending, m, p.Config.MinDuration)
		warnings.Merge(w)
	} else {
		scene.Layout(scenes, 0)
	}

	g, err := music.ParseGranularity(p.Config.Granularity)
	if err != nil {
		return nil, err
	}
	aligned, w, err := music.NewAligner(g, p.Config.SnapStrength).Align(scenes, m)
	if err != nil {
		return nil, fmt.Errorf("align to music: %w", err)
	}
	warnings.Merge(w)
	return aligned, nil
}

// resolveReferences validates candidates, keeps the first ones that fit the
// provider cap as the global set and, in smart mode, links the best matching
// candidates to each batch.
func (p *StoryboardProject) resolveReferences(candidates []scene.ReferenceImage, batches []scene.Scene, warnings *scene.Warnings) *scene.ReferenceSet {
	valid, w := p.Validator.Filter(candidates)
	warnings.Merge(w)

	global := scene.NewReferenceSet(p.Provider.MaxReferences)
	for _, ref := range valid {
		if err := global.Add(ref); err != nil {
			if !p.Config.SmartRefs {
				warnings.Addf("reference %s not used: %v", ref.Path, err)
			}
		}
	}

	if p.Config.SmartRefs && len(valid) > 0 {
		for i := range batches {
			picked := continuity.SmartSelect(valid, batches[i].SourceText, p.Provider.MaxReferences)
			for j := range picked {
				picked[j].AutoLinked = true
			}
			batches[i].ReferenceImages = picked
			batches[i].UseGlobalReferences = false
		}
	}
	return global
}

// Storyboard converts the result into its persisted form.
func (r *Result) Storyboard(provider, source string, now time.Time) *director.Storyboard {
	return &director.Storyboard{
		Version:          director.StoryboardVersion,
		ProjectID:        r.ProjectID,
		CreatedAt:        now,
		Source:           source,
		Provider:         provider,
		TotalDurationSec: scene.TotalDuration(r.Scenes),
		References:       r.References,
		Scenes:           r.Scenes,
		Batches:          r.Batches,
		Chain:            r.Decisions,
		Warnings:         r.Warnings,
	}
}
