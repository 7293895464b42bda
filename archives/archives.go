// Package archives inspects ROM archives found in watch folders. A bare
// archive name carries no platform, so the first recognizable entry inside it
// decides which system the archive belongs to.
package archives

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"

	"retro-arcade/platforms"
)

// IsArchive reports whether the file name is a supported archive container.
func IsArchive(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".7z", ".rar":
		return true
	}
	return false
}

// InferSystem returns the platform of the first recognizable ROM entry inside
// the archive at path, or "" when nothing inside matches a known extension.
func InferSystem(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return peekZip(path)
	case ".7z":
		return peekSevenZip(path)
	case ".rar":
		return peekRar(path)
	}
	return "", fmt.Errorf("not a supported archive: %s", filepath.Base(path))
}

func peekZip(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open zip archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if system := platforms.InferSystem(f.Name); system != "" {
			return system, nil
		}
	}
	return "", nil
}

func peekSevenZip(path string) (string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if system := platforms.InferSystem(f.Name); system != "" {
			return system, nil
		}
	}
	return "", nil
}

func peekRar(path string) (string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("failed to open rar archive: %w", err)
	}
	defer r.Close()

	for {
		hdr, err := r.Next()
		if err == io.EOF {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read rar archive: %w", err)
		}
		if hdr.IsDir {
			continue
		}
		if system := platforms.InferSystem(hdr.Name); system != "" {
			return system, nil
		}
	}
}
