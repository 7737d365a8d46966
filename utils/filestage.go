package utils

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"keyterm-chat-client/api"
)

// MaxStagedFileSize is the largest file that can be attached to a message
const MaxStagedFileSize = 10 * 1024 * 1024 // 10MB

// StageFile reads a file from disk and prepares it for attachment to the
// next chat message. The size cap is checked before reading.
func StageFile(filePath string) (*api.FileUpload, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}

	if info.Size() > MaxStagedFileSize {
		return nil, fmt.Errorf("file too large: %s (max %s)",
			FormatFileSize(info.Size()), FormatFileSize(MaxStagedFileSize))
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return &api.FileUpload{
		Filename: filepath.Base(filePath),
		MimeType: detectMimeType(filePath, data),
		Data:     data,
	}, nil
}

// detectMimeType detects the MIME type by extension first, falling back
// to content sniffing
func detectMimeType(filePath string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(filePath))
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		// Strip charset if present
		if idx := strings.Index(mimeType, ";"); idx > 0 {
			mimeType = mimeType[:idx]
		}
		return mimeType
	}

	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	return http.DetectContentType(data[:sniffLen])
}

// FormatFileSize formats a byte count in human-readable form
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
