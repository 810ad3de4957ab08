package site

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuild/internal/logfields"
)

// Discovery walks a documentation directory and assembles the file collection.
type Discovery struct {
	docsDir string
}

// NewDiscovery creates a discovery instance rooted at the given docs directory.
func NewDiscovery(docsDir string) *Discovery {
	return &Discovery{docsDir: docsDir}
}

// Discover finds all documentation files and assets beneath the docs directory.
func (d *Discovery) Discover() (*Collection, error) {
	absDocs, err := filepath.Abs(d.docsDir)
	if err != nil {
		return nil, fmt.Errorf("resolve docs dir: %w", err)
	}
	if st, statErr := os.Stat(absDocs); statErr != nil || !st.IsDir() {
		return nil, fmt.Errorf("docs dir not found or not a directory: %s", absDocs)
	}

	collection := NewCollection()

	err = filepath.Walk(absDocs, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories entirely
			if info.Name() != "." && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip hidden files
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}

		isMarkdown := IsMarkdownFile(path)
		isAssetFile := isAsset(path)

		// Skip files that are neither markdown nor assets
		if !isMarkdown && !isAssetFile {
			return nil
		}

		relPath, err := filepath.Rel(absDocs, path)
		if err != nil {
			return fmt.Errorf("invalid relative path for %s: %w", path, err)
		}
		destURI := filepath.ToSlash(relPath)

		section := filepath.ToSlash(filepath.Dir(relPath))
		if section == "." {
			section = "" // Root level
		}

		collection.Add(&File{
			SrcPath: path,
			DestURI: destURI,
			Section: section,
			IsAsset: isAssetFile,
		})

		fileType := "documentation"
		if isAssetFile {
			fileType = "asset"
		}
		slog.Debug("Discovered file",
			logfields.File(destURI),
			logfields.Section(section),
			slog.String("type", fileType))

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Documentation discovered", logfields.Path(absDocs), logfields.Count(collection.Len()))
	return collection, nil
}

// isAsset checks if a file is an asset (image, etc.)
func isAsset(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	assetExtensions := []string{
		// Images
		".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".bmp", ".ico",
		// Documents
		".pdf", ".txt",
		// Video
		".mp4", ".webm", ".ogv",
		// Styles and scripts referenced by pages
		".css", ".js",
	}
	for _, assetExt := range assetExtensions {
		if ext == assetExt {
			return true
		}
	}
	return false
}
