package extrafiles

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"git.home.luguber.info/inful/sitebuild/internal/config"
	"git.home.luguber.info/inful/sitebuild/internal/errors"
)

// mappingPair is one concrete resolved source-to-destination pair after glob
// expansion.
type mappingPair struct {
	srcPath string // absolute source path
	destURI string // forward-slash relative destination within the site
}

// isGlobPattern reports whether src should be treated as a glob.
func isGlobPattern(src string) bool {
	return strings.ContainsAny(src, "*?[")
}

// expandMappings resolves each configured mapping into concrete pairs.
// Relative sources resolve against baseDir (the configuration file's
// directory). The result is recomputed on every call; expansion performs no
// caching and never mutates anything, so both the staging and the watching
// consumers can invoke it independently.
//
// Literal sources are not checked for existence here: build-time staging
// treats a missing source as fatal while serve-time watching skips it, so the
// decision belongs to the consumer.
func expandMappings(mappings []config.FileMapping, baseDir string) ([]mappingPair, error) {
	var pairs []mappingPair

	for _, m := range mappings {
		if filepath.IsAbs(m.Dest) {
			return nil, errors.ValidationFailed("dest",
				fmt.Sprintf("destination must be relative, got %q", m.Dest))
		}

		if isGlobPattern(m.Src) {
			globPairs, err := expandGlob(m, baseDir)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, globPairs...)
			continue
		}

		src := m.Src
		if !filepath.IsAbs(src) {
			src = filepath.Join(baseDir, src)
		}
		pairs = append(pairs, mappingPair{
			srcPath: filepath.Clean(src),
			destURI: strings.ReplaceAll(m.Dest, `\`, "/"),
		})
	}

	return pairs, nil
}

// expandGlob expands one glob mapping into zero or more pairs, one per matched
// regular file. Destinations preserve each match's path relative to the glob's
// fixed root so recursive matches with colliding basenames land in distinct
// destinations.
func expandGlob(m config.FileMapping, baseDir string) ([]mappingPair, error) {
	if !strings.HasSuffix(m.Dest, "/") && !strings.HasSuffix(m.Dest, `\`) {
		return nil, errors.ValidationFailed("dest",
			fmt.Sprintf("when src %q is a glob, dest must be a directory (end with '/')", m.Src))
	}

	pattern := m.Src
	if !filepath.IsAbs(pattern) {
		pattern = filepath.Join(baseDir, pattern)
	}

	// Split into the fixed directory prefix and the glob remainder; matches
	// are reported relative to the fixed root.
	root, subPattern := doublestar.SplitPattern(filepath.ToSlash(pattern))
	matches, err := doublestar.Glob(os.DirFS(root), subPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "glob expansion failed").
			WithContext("pattern", m.Src)
	}

	destDir := strings.TrimRight(strings.ReplaceAll(m.Dest, `\`, "/"), "/")

	pairs := make([]mappingPair, 0, len(matches))
	for _, rel := range matches {
		pairs = append(pairs, mappingPair{
			srcPath: filepath.Join(root, filepath.FromSlash(rel)),
			destURI: path.Join(destDir, rel),
		})
	}
	return pairs, nil
}
