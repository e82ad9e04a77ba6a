// Package object stores uploaded resume files.
package object

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// ErrInvalidKey is returned for storage keys that escape the store root.
var ErrInvalidKey = errors.New("invalid storage key")

// Object describes a stored file.
type Object struct {
	Key      string
	Size     int64
	MimeType string
}

// Store saves, reads and removes binary objects.
type Store interface {
	Put(ctx context.Context, ownerID, fileName string, data []byte) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// OwnerPrefix hashes an owner ID into a path-safe directory name.
func OwnerPrefix(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return hex.EncodeToString(sum[:])
}

// NewKey builds "<owner hash>/<random>_<file name>".
func NewKey(ownerID, fileName string) (string, error) {
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join(OwnerPrefix(ownerID), randomID()+"_"+name), nil
}

// CleanKey rejects absolute keys and keys that climb out of the root.
func CleanKey(key string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if clean == "." || strings.HasPrefix(clean, "..") || strings.HasPrefix(clean, "/") {
		return "", ErrInvalidKey
	}
	return clean, nil
}

// DetectMimeType sniffs data and trusts the extension for the zip and
// text formats the sniffer cannot tell apart.
func DetectMimeType(fileName string, data []byte) string {
	sniffed := http.DetectContentType(data)
	ext := strings.ToLower(path.Ext(fileName))
	switch {
	case ext == ".docx" && (sniffed == "application/zip" || sniffed == "application/octet-stream"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ext == ".pdf" && sniffed == "application/pdf":
		return "application/pdf"
	case (ext == ".txt" || ext == ".md") && strings.HasPrefix(sniffed, "text/plain"):
		return "text/plain"
	}
	if i := strings.Index(sniffed, ";"); i >= 0 {
		return sniffed[:i]
	}
	return sniffed
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
