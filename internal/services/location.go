package services

import (
	"strings"
)

// ResolveLocation derives the object-store container and object key from a
// stored file path of the form <prefix>/<container>/<object key...>.
//
// The container is path segment 1 and must be the first place its name
// occurs in the path. Paths like "assets-x/assets/a.mp4" would otherwise
// resolve to the wrong key, so they are rejected.
func ResolveLocation(filePath string) (container, key string, err error) {
	segments := strings.Split(filePath, "/")
	if len(segments) < 2 {
		return "", "", &MalformedPathError{Path: filePath, Reason: "expected at least two path segments"}
	}

	container = segments[1]
	if container == "" {
		return "", "", &MalformedPathError{Path: filePath, Reason: "empty container segment"}
	}

	idx := strings.Index(filePath, container)
	segmentStart := len(segments[0]) + 1
	if idx < 0 {
		return "", "", &MalformedPathError{Path: filePath, Reason: "container name not found in path"}
	}
	if idx != segmentStart {
		return "", "", &MalformedPathError{Path: filePath, Reason: "container name " + container + " occurs before its path segment"}
	}

	start := idx + len(container) + 1
	if start > len(filePath) {
		return "", "", &MalformedPathError{Path: filePath, Reason: "missing object key"}
	}
	key = filePath[start:]
	if key == "" {
		return "", "", &MalformedPathError{Path: filePath, Reason: "missing object key"}
	}
	return container, key, nil
}
