package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"server/config"
	"server/internal/logger"
)

// ArtifactStore persists generated report PDFs under a local artifact
// root. Blobs live at
// users/{userID}/pdfResults/{fileName}-{timestamp}/result.pdf so every
// export of the same report gets its own directory and nothing is ever
// overwritten.
type ArtifactStore struct {
	root string
	log  logger.Logger
}

func NewArtifactStore(config config.Config) (*ArtifactStore, error) {
	root := config.ArtifactRoot
	if root == "" {
		return nil, fmt.Errorf("artifact root is empty")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}

	return &ArtifactStore{
		root: root,
		log:  logger.New("artifactStore"),
	}, nil
}

// SaveReportBlob writes the PDF bytes and returns the blob's path
// relative to the artifact root.
func (s *ArtifactStore) SaveReportBlob(userID, fileName string, generatedAt time.Time, data []byte) (string, error) {
	log := s.log.Function("SaveReportBlob")

	if userID == "" {
		return "", log.ErrMsg("user id is empty")
	}
	if len(data) == 0 {
		return "", log.ErrMsg("report blob is empty")
	}

	dirName := fmt.Sprintf("%s-%d", sanitizeName(fileName), generatedAt.UnixMilli())
	relPath := filepath.Join("users", userID, "pdfResults", dirName, "result.pdf")
	fullPath := filepath.Join(s.root, relPath)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", log.Err("failed to create blob directory", err, "path", relPath)
	}

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", log.Err("failed to write report blob", err, "path", relPath)
	}

	log.Info("saved report blob", "userID", userID, "path", relPath, "bytes", len(data))
	return relPath, nil
}

// LoadReportBlob reads a previously saved blob by its relative path.
// Paths are confined to the artifact root.
func (s *ArtifactStore) LoadReportBlob(relPath string) ([]byte, error) {
	log := s.log.Function("LoadReportBlob")

	cleaned := filepath.Clean(relPath)
	if cleaned == "" || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return nil, log.Error("invalid blob path", "path", relPath)
	}

	data, err := os.ReadFile(filepath.Join(s.root, cleaned))
	if err != nil {
		return nil, log.Err("failed to read report blob", err, "path", cleaned)
	}
	return data, nil
}

// BlobURL returns the route path clients use to download a blob.
func (s *ArtifactStore) BlobURL(relPath string) string {
	return "/api/reports/blob/" + filepath.ToSlash(relPath)
}

// sanitizeName strips path separators and other characters that do not
// belong in a directory name derived from an uploaded file name.
func sanitizeName(fileName string) string {
	base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if base == "" {
		base = "report"
	}

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
