package library

import (
	"regexp"
	"strings"

	"medialib/internal/model"
)

const keySep = "/"

var whitespaceRun = regexp.MustCompile(`\s+`)

// FolderKeyOf derives the virtual folder of a stored object.
// The leading "ownerPrefix/" is removed when present, then the final segment
// (the filename). Root is the empty string.
func FolderKeyOf(filePath, ownerPrefix string) string {
	p := filePath
	if ownerPrefix != "" {
		p = strings.TrimPrefix(p, ownerPrefix+keySep)
	}
	i := strings.LastIndex(p, keySep)
	if i < 0 {
		return ""
	}
	return CleanKey(p[:i])
}

// ItemFolderKey is FolderKeyOf applied to an item's own path and owner.
func ItemFolderKey(it model.MediaItem) string {
	return FolderKeyOf(it.FilePath, it.OwnerID)
}

// ChildFolderOf returns the segment of candidateKey directly below ancestorKey.
// ok is false unless candidateKey is a strict descendant of ancestorKey.
func ChildFolderOf(ancestorKey, candidateKey string) (string, bool) {
	ancestor := CleanKey(ancestorKey)
	candidate := CleanKey(candidateKey)
	if candidate == "" || candidate == ancestor {
		return "", false
	}

	rest := candidate
	if ancestor != "" {
		if !strings.HasPrefix(candidate, ancestor+keySep) {
			return "", false
		}
		rest = candidate[len(ancestor)+1:]
	}
	if i := strings.Index(rest, keySep); i >= 0 {
		rest = rest[:i]
	}
	return rest, rest != ""
}

// JoinKey joins non-empty segments with "/".
func JoinKey(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s = CleanKey(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, keySep)
}

// SplitKey splits a folder key into its segments. Root yields no segments.
func SplitKey(key string) []string {
	key = CleanKey(key)
	if key == "" {
		return nil
	}
	return strings.Split(key, keySep)
}

// CleanKey trims surrounding slashes and drops empty segments.
func CleanKey(key string) string {
	if !strings.Contains(key, keySep) {
		return key
	}
	raw := strings.Split(key, keySep)
	parts := raw[:0]
	for _, s := range raw {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, keySep)
}

// Sanitize lower-cases name and replaces whitespace runs with "-".
// Slashes are preserved so relative paths keep their structure.
func Sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return whitespaceRun.ReplaceAllString(name, "-")
}
