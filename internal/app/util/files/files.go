package files

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"audioscribe/internal/app/model"
)

// AudioExtensions are the container formats the batch converter picks up
// when no explicit extension filter is given.
var AudioExtensions = []string{".wav", ".mp3", ".m4a", ".flac", ".ogg", ".webm", ".mp4"}

// GetProjectRoot walks up from this source file to the directory holding
// go.mod.
func GetProjectRoot() (string, error) {
	_, filename, _, _ := runtime.Caller(0)
	return findGoModRoot(filename)
}

// GetDataDir returns <project root>/data/<sub>, creating it if needed.
func GetDataDir(sub string) (string, error) {
	root, err := GetProjectRoot()
	if err != nil {
		return "", fmt.Errorf("failed to locate project root: %w", err)
	}

	dir := filepath.Join(root, "data", sub)
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// EnsureDir creates dir and parents when absent.
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ListAudioFiles returns the audio files directly under inputDir, oldest
// first. ext narrows the scan to a single extension (".mp3"); empty means
// any known audio extension.
func ListAudioFiles(inputDir string, ext string) ([]model.FileInfo, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	wanted := func(name string) bool {
		fileExt := strings.ToLower(filepath.Ext(name))
		if ext != "" {
			return fileExt == strings.ToLower(ext)
		}
		for _, known := range AudioExtensions {
			if fileExt == known {
				return true
			}
		}
		return false
	}

	var fileInfos []model.FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !wanted(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", entry.Name(), err)
		}
		fileInfos = append(fileInfos, model.FileInfo{
			FullPath: filepath.Join(inputDir, entry.Name()),
			ModTime:  info.ModTime(),
			Name:     entry.Name(),
		})
	}

	sort.Slice(fileInfos, func(i, j int) bool {
		return fileInfos[i].ModTime.Before(fileInfos[j].ModTime)
	})

	return fileInfos, nil
}

// ReadOutputFile reads the specified output file and returns its trimmed
// text content.
func ReadOutputFile(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(content)), nil
}

func findGoModRoot(path string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			return path, nil
		}
		newPath := filepath.Dir(path)
		if newPath == path {
			return "", fmt.Errorf("go.mod not found")
		}
		path = newPath
	}
}
