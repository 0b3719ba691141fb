package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Handit-AI/invoice-copilot/internal/fileutil"
	"github.com/Handit-AI/invoice-copilot/internal/logging"
	"github.com/Handit-AI/invoice-copilot/internal/security"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Client performs file operations confined to a workspace root directory.
// Every path is validated before use; paths that resolve outside the root
// are rejected with ErrAccessDenied.
type Client struct {
	root      string
	validator *security.PathValidator
}

// Entry describes a single directory listing entry.
type Entry struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// WriteResult describes the outcome of a write operation.
type WriteResult struct {
	Path    string `json:"path"`
	Created bool   `json:"created"`
	Bytes   int    `json:"bytes"`
	Diff    string `json:"diff,omitempty"`
}

// GrepMatch is a single line match from Grep.
type GrepMatch struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

// New creates a workspace client rooted at the given directory.
// The root is created if it does not exist.
func New(root string) (*Client, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("failed to create workspace root: %w", err)
	}
	// Resolve symlinks in the root itself so validated paths compare cleanly
	resolvedRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	return &Client{
		root:      resolvedRoot,
		validator: security.NewPathValidator([]string{resolvedRoot}, false),
	}, nil
}

// Root returns the absolute workspace root directory.
func (c *Client) Root() string {
	return c.root
}

// Scoped returns a client confined to a subdirectory of this workspace.
// The directory is validated against the sandbox and created if missing.
func (c *Client) Scoped(dir string) (*Client, error) {
	resolved, err := c.resolve(dir)
	if err != nil {
		return nil, err
	}
	return New(resolved)
}

// resolve validates a workspace-relative (or absolute) path against the sandbox.
func (c *Client) resolve(path string) (string, error) {
	if path == "" || path == "." {
		return c.root, nil
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, path)
	}

	resolved, err := c.validator.Validate(path)
	if err != nil {
		logging.Warn("workspace path rejected", "path", path, "error", err.Error())
		return "", fmt.Errorf("%w: %s", ErrAccessDenied, path)
	}
	return resolved, nil
}

// List returns the entries of a directory, directories first, sorted by name.
func (c *Client) List(dir string) ([]Entry, error) {
	resolved, err := c.resolve(dir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	dirEntries, err := os.ReadDir(resolved)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		fi, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:  de.Name(),
			IsDir: de.IsDir(),
			Size:  fi.Size(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Read returns the content of a file. Offset and limit select a line range;
// zero values read the whole file.
func (c *Client) Read(path string, offset, limit int) (string, error) {
	resolved, err := c.resolve(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", err
	}
	content := string(data)

	if offset <= 0 && limit <= 0 {
		return content, nil
	}

	lines := strings.Split(content, "\n")
	start := offset
	if start < 0 {
		start = 0
	}
	if start >= len(lines) {
		return "", nil
	}
	end := len(lines)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return strings.Join(lines[start:end], "\n"), nil
}

// Write writes content to a file, creating parent directories as needed.
// The write is atomic. When an existing file is replaced, the result carries
// a patch describing the change.
func (c *Client) Write(path, content string) (WriteResult, error) {
	resolved, err := c.resolve(path)
	if err != nil {
		return WriteResult{}, err
	}

	var oldContent string
	created := true
	if info, err := os.Stat(resolved); err == nil {
		if info.IsDir() {
			return WriteResult{}, fmt.Errorf("%w: %s", ErrIsDirectory, path)
		}
		created = false
		if data, err := os.ReadFile(resolved); err == nil {
			oldContent = string(data)
		}
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return WriteResult{}, fmt.Errorf("failed to create parent directory: %w", err)
	}

	if err := fileutil.AtomicWriteString(resolved, content, 0644); err != nil {
		return WriteResult{}, fmt.Errorf("failed to write file: %w", err)
	}

	result := WriteResult{
		Path:    path,
		Created: created,
		Bytes:   len(content),
	}
	if !created && oldContent != content {
		dmp := diffmatchpatch.New()
		patches := dmp.PatchMake(oldContent, content)
		result.Diff = dmp.PatchToText(patches)
	}

	logging.Info("workspace write", "path", path, "bytes", len(content), "created", created)
	return result, nil
}

// Delete removes a file from the workspace.
func (c *Client) Delete(path string) error {
	resolved, err := c.resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	if err := os.Remove(resolved); err != nil {
		return err
	}
	logging.Info("workspace delete", "path", path)
	return nil
}

// Grep searches file contents for a regular expression. An optional glob
// pattern (doublestar syntax, relative to the root) restricts the files
// searched. Results are capped to keep tool output bounded.
func (c *Client) Grep(pattern, glob string) ([]GrepMatch, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	if glob != "" {
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid glob pattern: %s", glob)
		}
	}

	const maxMatches = 200
	var matches []GrepMatch

	err = filepath.WalkDir(c.root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return nil
		}
		if glob != "" {
			ok, _ := doublestar.Match(glob, filepath.ToSlash(rel))
			if !ok {
				return nil
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		// Skip binary content
		if strings.ContainsRune(string(data[:min(len(data), 1024)]), '\x00') {
			return nil
		}

		for i, line := range strings.Split(string(data), "\n") {
			if re.MatchString(line) {
				matches = append(matches, GrepMatch{Path: rel, Line: i + 1, Text: line})
				if len(matches) >= maxMatches {
					return filepath.SkipAll
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}
