package refcheck

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/ivlev/storyboard/internal/scene"
)

// Result is the outcome of validating one reference asset.
type Result struct {
	Path     string   `json:"path"`
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Format   string   `json:"format,omitempty"`
	Width    int      `json:"width,omitempty"`
	Height   int      `json:"height,omitempty"`
}

// Status maps the result onto a reference validation status.
func (r Result) Status() scene.ValidationStatus {
	switch {
	case !r.IsValid:
		return scene.ValidationInvalid
	case len(r.Warnings) > 0:
		return scene.ValidationWarning
	default:
		return scene.ValidationValid
	}
}

// Validator checks reference images against format, resolution and size
// limits. It only reads files.
type Validator struct {
	MinShortSide   int
	AllowedFormats []string
	MaxBytes       int64
	// Aspect ratios (long/short side) above this are flagged, not rejected.
	MaxAspect float64
}

// NewValidator returns the default limits: 720p, png/jpeg/webp, 20 MB, 2.5:1.
func NewValidator() *Validator {
	return &Validator{
		MinShortSide:   720,
		AllowedFormats: []string{"png", "jpeg", "webp"},
		MaxBytes:       20 << 20,
		MaxAspect:      2.5,
	}
}

func (v *Validator) allowed(format string) bool {
	for _, f := range v.AllowedFormats {
		if strings.EqualFold(f, format) || (format == "jpeg" && strings.EqualFold(f, "jpg")) {
			return true
		}
	}
	return false
}

// Validate inspects the asset behind ref.Path.
func (v *Validator) Validate(ref scene.ReferenceImage) Result {
	res := Result{Path: ref.Path}
	fail := func(format string, args ...any) Result {
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
		res.IsValid = false
		return res
	}

	if ref.Path == "" {
		return fail("reference has no path")
	}
	info, err := os.Stat(ref.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return fail("file does not exist")
		}
		return fail("stat: %v", err)
	}
	if info.IsDir() {
		return fail("path is a directory")
	}
	if v.MaxBytes > 0 && info.Size() > v.MaxBytes {
		res.Errors = append(res.Errors, fmt.Sprintf("file is %d bytes, limit is %d", info.Size(), v.MaxBytes))
	}

	f, err := os.Open(ref.Path)
	if err != nil {
		return fail("open: %v", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return fail("unrecognised image data: %v", err)
	}
	res.Format, res.Width, res.Height = format, cfg.Width, cfg.Height

	if !v.allowed(format) {
		res.Errors = append(res.Errors, fmt.Sprintf("format %s not allowed (want %s)", format, strings.Join(v.AllowedFormats, ", ")))
	}

	short, long := cfg.Width, cfg.Height
	if short > long {
		short, long = long, short
	}
	if short < v.MinShortSide {
		res.Errors = append(res.Errors, fmt.Sprintf("resolution %dx%d below %dp", cfg.Width, cfg.Height, v.MinShortSide))
	}
	if short > 0 && v.MaxAspect > 0 {
		if ratio := float64(long) / float64(short); ratio > v.MaxAspect {
			res.Warnings = append(res.Warnings, fmt.Sprintf("unusual aspect ratio %.2f:1", ratio))
		}
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(ref.Path)), ".")
	if ext == "jpg" {
		ext = "jpeg"
	}
	if ext == "tif" {
		ext = "tiff"
	}
	if ext != "" && ext != format {
		res.Warnings = append(res.Warnings, fmt.Sprintf("extension .%s does not match %s data", ext, format))
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// Filter validates refs and keeps the valid ones in order, returning a
// warning per excluded or flagged reference.
func (v *Validator) Filter(refs []scene.ReferenceImage) ([]scene.ReferenceImage, scene.Warnings) {
	var warnings scene.Warnings
	out := make([]scene.ReferenceImage, 0, len(refs))
	for _, r := range refs {
		res := v.Validate(r)
		r.ValidationStatus = res.Status()
		if !res.IsValid {
			warnings.Addf("reference %s excluded: %s", r.Path, strings.Join(res.Errors, "; "))
			continue
		}
		for _, w := range res.Warnings {
			warnings.Addf("reference %s: %s", r.Path, w)
		}
		out = append(out, r)
	}
	return out, warnings
}
