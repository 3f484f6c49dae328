package scene

import (
	"fmt"
	"strings"
)

// ReferenceType classifies what a reference image keeps consistent.
type ReferenceType string

const (
	ReferenceCharacter   ReferenceType = "character"
	ReferenceObject      ReferenceType = "object"
	ReferenceEnvironment ReferenceType = "environment"
	ReferenceStyle       ReferenceType = "style"
)

// ParseReferenceType accepts the four known types, case-insensitive.
func ParseReferenceType(s string) (ReferenceType, error) {
	switch t := ReferenceType(strings.ToLower(strings.TrimSpace(s))); t {
	case ReferenceCharacter, ReferenceObject, ReferenceEnvironment, ReferenceStyle:
		return t, nil
	default:
		return "", fmt.Errorf("unknown reference type: %q", s)
	}
}

// ValidationStatus is the last known validation outcome of a reference.
type ValidationStatus string

const (
	ValidationPending ValidationStatus = "pending"
	ValidationValid   ValidationStatus = "valid"
	ValidationWarning ValidationStatus = "warning"
	ValidationInvalid ValidationStatus = "invalid"
)

// ReferenceImage is a user- or system-supplied asset used to keep
// characters, objects, environments or style consistent across scenes.
type ReferenceImage struct {
	Path             string           `yaml:"path" json:"path"`
	Type             ReferenceType    `yaml:"type" json:"type"`
	Name             string           `yaml:"name,omitempty" json:"name,omitempty"`
	Description      string           `yaml:"description,omitempty" json:"description,omitempty"`
	AutoLinked       bool             `yaml:"auto_linked,omitempty" json:"auto_linked,omitempty"`
	ValidationStatus ValidationStatus `yaml:"validation_status,omitempty" json:"validation_status,omitempty"`
}

// ReferenceSet is the project-level list of global references, ordered by insertion.
type ReferenceSet struct {
	Images []ReferenceImage `yaml:"images" json:"images"`
	Max    int              `yaml:"max" json:"max"`
}

// NewReferenceSet returns an empty set holding at most max images.
func NewReferenceSet(max int) *ReferenceSet {
	return &ReferenceSet{Max: max}
}

// Add appends ref, failing once the set is full.
func (rs *ReferenceSet) Add(ref ReferenceImage) error {
	if rs.Max > 0 && len(rs.Images) >= rs.Max {
		return fmt.Errorf("reference set is full (%d images)", rs.Max)
	}
	rs.Images = append(rs.Images, ref)
	return nil
}

// Remove drops the reference with the given path, keeping order.
func (rs *ReferenceSet) Remove(path string) bool {
	for i, img := range rs.Images {
		if img.Path == path {
			rs.Images = append(rs.Images[:i], rs.Images[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the images in insertion order.
func (rs *ReferenceSet) List() []ReferenceImage {
	if rs == nil {
		return nil
	}
	return append([]ReferenceImage(nil), rs.Images...)
}
