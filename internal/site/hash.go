package site

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
)

// ComputeCollectionHash computes a deterministic hash for a file collection.
// The hash covers destination URIs, source paths, and content hashes, so it
// changes whenever the set of files or any file's content changes. The dev
// server uses it to decide whether connected browsers should reload.
func ComputeCollectionHash(files []*File) string {
	if len(files) == 0 {
		h := sha256.Sum256([]byte("empty-file-set"))
		return hex.EncodeToString(h[:])
	}

	type entry struct {
		dest        string
		src         string
		contentHash string
	}

	entries := make([]entry, 0, len(files))
	for _, f := range files {
		contentHash := ""
		if len(f.Content) > 0 {
			h := sha256.Sum256(f.Content)
			contentHash = hex.EncodeToString(h[:])
		} else if sum, err := hashFileContent(f.SrcPath); err == nil {
			// Assets keep Content unloaded; hash them from disk so edits to
			// copied files still change the collection hash.
			contentHash = sum
		}
		entries = append(entries, entry{dest: f.DestURI, src: f.SrcPath, contentHash: contentHash})
	}

	// Sort for deterministic ordering
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].dest < entries[j].dest
	})

	h := sha256.New()
	for _, e := range entries {
		fmt.Fprintf(h, "%s|%s|%s\n", e.dest, e.src, e.contentHash)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashFileContent(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
