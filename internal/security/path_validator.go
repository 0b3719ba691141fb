package security

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// PathValidator validates file paths to prevent directory traversal attacks.
type PathValidator struct {
	allowedDirs   []string
	allowSymlinks bool
}

// NewPathValidator creates a new path validator.
func NewPathValidator(allowedDirs []string, allowSymlinks bool) *PathValidator {
	normalized := make([]string, len(allowedDirs))
	for i, dir := range allowedDirs {
		normalized[i] = filepath.Clean(dir)
	}
	return &PathValidator{
		allowedDirs:   normalized,
		allowSymlinks: allowSymlinks,
	}
}

// Validate validates that a path is safe and within allowed directories.
// Uses filepath.EvalSymlinks for atomic symlink resolution to prevent TOCTOU races.
func (v *PathValidator) Validate(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty path")
	}

	if strings.Contains(path, "\x00") {
		return "", fmt.Errorf("null byte in path")
	}

	cleanPath := filepath.Clean(path)

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	// Resolve all symlinks in the path atomically
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// Path doesn't exist yet - that's OK for new files, but we need to
		// check the parent directory to prevent symlink attacks
		if os.IsNotExist(err) {
			parentDir := filepath.Dir(absPath)
			resolvedParent, parentErr := filepath.EvalSymlinks(parentDir)
			if parentErr != nil && !os.IsNotExist(parentErr) {
				return "", fmt.Errorf("failed to resolve parent path: %w", parentErr)
			}
			if resolvedParent != "" {
				resolvedPath = filepath.Join(resolvedParent, filepath.Base(absPath))
			} else {
				resolvedPath = absPath
			}
		} else {
			return "", fmt.Errorf("failed to resolve symlinks: %w", err)
		}
	}

	if !v.allowSymlinks {
		if err := v.checkSymlink(resolvedPath); err != nil {
			return "", err
		}
	}

	if !v.isAllowed(resolvedPath) {
		return "", fmt.Errorf("path '%s' is outside allowed directories", path)
	}

	return resolvedPath, nil
}

// ValidateFile validates a file path for read/write operations.
func (v *PathValidator) ValidateFile(path string) (string, error) {
	absPath, err := v.Validate(path)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(absPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return "", fmt.Errorf("parent directory does not exist: %s", dir)
	}

	return absPath, nil
}

// ValidateDir validates a directory path.
func (v *PathValidator) ValidateDir(path string) (string, error) {
	absPath, err := v.Validate(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return "", fmt.Errorf("cannot access path: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", path)
	}

	return absPath, nil
}

// isAllowed checks if the path is within allowed directories.
func (v *PathValidator) isAllowed(absPath string) bool {
	if len(v.allowedDirs) == 0 {
		return true
	}

	for _, allowedDir := range v.allowedDirs {
		if v.isPathWithin(absPath, allowedDir) {
			return true
		}
	}
	return false
}

// isPathWithin checks if target is within base directory.
// Handles cross-drive paths on Windows and other edge cases.
func (v *PathValidator) isPathWithin(target, base string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.VolumeName(target) == filepath.VolumeName(base)
	}

	// If relative path starts with "..", target is outside base
	if strings.HasPrefix(rel, "..") {
		return false
	}

	joined := filepath.Join(base, rel)
	if runtime.GOOS == "windows" {
		return strings.HasPrefix(strings.ToLower(joined), strings.ToLower(base))
	}
	return strings.HasPrefix(joined, base)
}

// checkSymlink checks if any component of the path is a symlink.
func (v *PathValidator) checkSymlink(path string) error {
	sep := string(filepath.Separator)
	components := strings.Split(filepath.Clean(path), sep)

	current := ""
	if filepath.IsAbs(path) {
		if runtime.GOOS == "windows" {
			current = filepath.VolumeName(path) + sep
		} else {
			current = sep
		}
	}

	for _, comp := range components {
		if comp == "" {
			continue
		}
		current = filepath.Join(current, comp)

		info, err := os.Lstat(current)
		if err != nil {
			// Path doesn't exist yet, that's ok for new files
			if os.IsNotExist(err) {
				continue
			}
			return err
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("symlinks not allowed: %s", current)
		}
	}

	return nil
}
