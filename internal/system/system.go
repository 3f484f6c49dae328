package system

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// Каталоги по умолчанию
var DefaultDirs = []string{"input/text", "input/music", "input/refs", "output"}

// EnsureDirs создает рабочие каталоги, если их нет.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// DefaultWorkers returns the logical CPU count, falling back to the runtime's
// view when the host cannot be queried.
func DefaultWorkers() int {
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		return runtime.NumCPU()
	}
	return n
}

// FindLatest возвращает самый свежий файл в dir с одним из расширений.
// Пустое расширение ("") соответствует файлам без расширения.
func FindLatest(dir string, extensions ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
			continue
		}
		if !hasExtension(f.Name(), extensions) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if latestFile == "" || info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files found in %s", strings.Join(extensions, "/"), dir)
	}
	return latestFile, nil
}

func hasExtension(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FindLatestInput ищет самый свежий сценарий или текст песни.
func FindLatestInput(dir string) (string, error) {
	return FindLatest(dir, ".txt", ".lrc", ".md", ".lyrics", ".pdf", "")
}

// FindLatestMusic ищет самый свежий файл с разметкой музыки.
func FindLatestMusic(dir string) (string, error) {
	return FindLatest(dir, ".yaml", ".yml", ".json")
}

// FindImages lists image files in dir in name order.
func FindImages(dir string) ([]string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if hasExtension(f.Name(), []string{".png", ".jpg", ".jpeg", ".webp"}) {
			paths = append(paths, filepath.Join(dir, f.Name()))
		}
	}
	return paths, nil
}
