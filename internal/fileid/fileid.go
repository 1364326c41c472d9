// Package fileid generates document IDs for the catalog.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	filePrefix   = "file:"
	uploadPrefix = "upload:"
)

// PathID returns a stable ID for the given absolute path. Same path always yields the same ID.
func PathID(absolutePath string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(absolutePath)))
	return filePrefix + hex.EncodeToString(hash[:8])
}

// VersionID identifies one version of a watched file: the path ID plus its modification time and size.
// The index is append-only, so a modified file is ingested as a new document.
func VersionID(absolutePath string, mtimeNano, size int64) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%d:%d", mtimeNano, size)))
	return PathID(absolutePath) + "@" + hex.EncodeToString(hash[:4])
}

// UploadID returns a fresh random ID for an uploaded or raw-text document.
func UploadID() string {
	return uploadPrefix + uuid.New().String()
}
