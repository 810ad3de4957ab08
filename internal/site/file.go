package site

import (
	"fmt"
	"os"
	"path"
	"strings"
)

// File represents one entry of the build-time file collection: a source file
// on disk bound to a destination inside the generated site.
type File struct {
	SrcPath   string // Absolute path to the source file
	DestURI   string // Forward-slash relative path within the generated site
	Section   string // Directory portion of the destination ("" at root)
	Content   []byte // File content (loaded on demand)
	IsAsset   bool   // True for images and other non-markdown files
	Generated bool   // True when contributed by a plugin rather than discovered
}

// NewGeneratedFile constructs a plugin-contributed entry bound to an absolute
// source path. The destination URI decides how the file is emitted: markdown
// renders, everything else copies verbatim.
func NewGeneratedFile(destURI, absSrcPath string) *File {
	section := path.Dir(destURI)
	if section == "." {
		section = ""
	}
	return &File{
		SrcPath:   absSrcPath,
		DestURI:   destURI,
		Section:   section,
		IsAsset:   !IsMarkdownFile(destURI),
		Generated: true,
	}
}

// LoadContent loads the content of the source file
func (f *File) LoadContent() error {
	if f.Content != nil {
		return nil // Already loaded
	}

	content, err := os.ReadFile(f.SrcPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.SrcPath, err)
	}

	f.Content = content
	return nil
}

// OutputRelPath returns the destination path within the output tree.
// Markdown destinations map to .html; all other files keep their URI.
func (f *File) OutputRelPath() string {
	if IsMarkdownFile(f.DestURI) {
		ext := path.Ext(f.DestURI)
		return strings.TrimSuffix(f.DestURI, ext) + ".html"
	}
	return f.DestURI
}

// IsMarkdownFile checks if a path names a markdown file
func IsMarkdownFile(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	return ext == ".md" || ext == ".markdown" || ext == ".mdown" || ext == ".mkd"
}

// Collection is an ordered set of files keyed by destination URI. The host
// build pipeline fills it during discovery; plugins may look up, remove, and
// insert entries before rendering.
type Collection struct {
	files  []*File
	byDest map[string]*File
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{byDest: make(map[string]*File)}
}

// Add appends a file to the collection. An entry already present at the same
// destination URI is replaced in place.
func (c *Collection) Add(f *File) {
	if existing, ok := c.byDest[f.DestURI]; ok {
		for i, cur := range c.files {
			if cur == existing {
				c.files[i] = f
				break
			}
		}
		c.byDest[f.DestURI] = f
		return
	}
	c.files = append(c.files, f)
	c.byDest[f.DestURI] = f
}

// Get returns the entry at the given destination URI, or nil.
func (c *Collection) Get(destURI string) *File {
	return c.byDest[destURI]
}

// Remove deletes the entry at the given destination URI.
// Returns true if an entry was removed.
func (c *Collection) Remove(destURI string) bool {
	existing, ok := c.byDest[destURI]
	if !ok {
		return false
	}
	delete(c.byDest, destURI)
	for i, cur := range c.files {
		if cur == existing {
			c.files = append(c.files[:i], c.files[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of entries.
func (c *Collection) Len() int { return len(c.files) }

// All returns the entries in insertion order. The returned slice is shared;
// callers must not mutate it.
func (c *Collection) All() []*File { return c.files }
