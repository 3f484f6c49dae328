package continuity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ivlev/storyboard/internal/scene"
)

// SmartSelect orders refs by how many of their name/description words occur
// in text and keeps at most max of them. Best effort: equal scores keep
// their original order, and the type name counts as a word.
func SmartSelect(refs []scene.ReferenceImage, text string, max int) []scene.ReferenceImage {
	if max <= 0 {
		max = DefaultMaxReferences
	}
	words := tokenSet(text)

	type scored struct {
		ref   scene.ReferenceImage
		score int
	}
	list := make([]scored, len(refs))
	for i, r := range refs {
		score := 0
		for w := range tokenSet(r.Name + " " + r.Description + " " + string(r.Type)) {
			if words[w] {
				score++
			}
		}
		list[i] = scored{ref: r, score: score}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	if len(list) > max {
		list = list[:max]
	}
	out := make([]scene.ReferenceImage, len(list))
	for i, s := range list {
		out[i] = s.ref
	}
	return out
}

func tokenSet(s string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) > 2 {
			set[w] = true
		}
	}
	return set
}
