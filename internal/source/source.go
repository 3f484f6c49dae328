package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

var ErrUnsupportedInput = errors.New("unsupported input")

// TextSource yields the raw script or lyric text for the parser.
type TextSource interface {
	Text() (string, error)
	Close() error
}

// TextExtensions lists the plain-text inputs Open accepts besides PDF.
var TextExtensions = []string{".txt", ".lrc", ".md", ".lyrics"}

type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Text() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *FileSource) Close() error { return nil }

// FitzPDFSource extracts page text from a PDF script.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// Text joins all pages, one blank line between pages.
func (f *FitzPDFSource) Text() (string, error) {
	var sb strings.Builder
	for i := 0; i < f.doc.NumPage(); i++ {
		page, err := f.doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i+1, err)
		}
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimRight(page, "\n"))
	}
	return sb.String(), nil
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}

// Open picks a source by file extension.
func Open(path string) (TextSource, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return NewFitzPDFSource(path)
	}
	if IsText(path) {
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return NewFileSource(path), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedInput, path)
}

// IsText reports whether path has a plain-text extension or none at all.
func IsText(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return true
	}
	for _, e := range TextExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadAll opens path, reads its text and closes it.
func ReadAll(path string) (string, error) {
	src, err := Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()
	return src.Text()
}
