package scene

import "fmt"

// Warnings collects non-fatal problems in the order they were found.
type Warnings []string

func (w *Warnings) Addf(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func (w *Warnings) Merge(other Warnings) {
	*w = append(*w, other...)
}

// Summary renders the count the way the CLI presents it ("3 warnings").
func (w Warnings) Summary() string {
	if len(w) == 1 {
		return "1 warning"
	}
	return fmt.Sprintf("%d warnings", len(w))
}
