package security

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strings"
)

// FileClass selects which allow-list applies to an upload: images for
// avatars, documents for resumes and cover letters.
type FileClass int

const (
	ClassImage FileClass = iota
	ClassDocument
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Valid        bool   // Whether the file passed all validation checks
	Extension    string // Detected file extension
	DetectedMIME string // Detected MIME type
	Error        string // Error message if validation failed
}

// Magic byte signatures for allowed file types
// Maps lowercase extension to possible magic byte prefixes
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".gif":  {{0x47, 0x49, 0x46, 0x38, 0x37, 0x61}, {0x47, 0x49, 0x46, 0x38, 0x39, 0x61}}, // GIF87a & GIF89a
	".pdf":  {{0x25, 0x50, 0x44, 0x46}},                                                   // %PDF
	".doc":  {{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},                           // OLE Compound Document
	".docx": {{0x50, 0x4B, 0x03, 0x04}},                                                   // ZIP (PK..)
}

var classExtensions = map[FileClass]map[string]bool{
	ClassImage: {
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".gif":  true,
	},
	ClassDocument: {
		".pdf":  true,
		".doc":  true,
		".docx": true,
	},
}

// Strict MIME types per class - DO NOT include application/octet-stream
var classMIMETypes = map[FileClass]map[string]bool{
	ClassImage: {
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
	},
	ClassDocument: {
		"application/pdf":    true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
		// ZIP-based documents (DOCX detection fallback)
		"application/zip": true,
	},
}

// ValidateFile performs 3-layer file validation against the class allow-list:
// 1. Extension whitelist check
// 2. Magic byte verification (content matches extension)
// 3. MIME type whitelist (application/octet-stream REJECTED except doc/docx)
func ValidateFile(class FileClass, filename string, data []byte) FileValidationResult {
	detectedMIME := http.DetectContentType(data)
	result := FileValidationResult{
		DetectedMIME: detectedMIME,
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext

	// Layer 1: Extension whitelist
	if !classExtensions[class][ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	// Layer 2: Magic byte validation
	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension (potential file spoofing detected)"
		return result
	}

	// Layer 3: MIME type whitelist
	// application/octet-stream would allow arbitrary binary uploads
	if detectedMIME == "application/octet-stream" {
		// .doc/.docx are often detected as octet-stream; magic bytes already
		// verified the container above
		if ext != ".docx" && ext != ".doc" {
			result.Error = "binary files not allowed; file type could not be determined"
			return result
		}
	} else if !classMIMETypes[class][normalizeMIME(detectedMIME)] {
		result.Error = "MIME type not allowed: " + detectedMIME
		return result
	}

	result.Valid = true
	return result
}

// validateMagicBytes checks if file content starts with expected magic bytes
func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 4 {
		return false // File too small to validate
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}

	for _, sig := range signatures {
		if len(data) >= len(sig) && bytes.HasPrefix(data, sig) {
			return true
		}
	}

	return false
}

// normalizeMIME strips parameters like "; charset=utf-8" that
// http.DetectContentType appends to some types.
func normalizeMIME(mime string) string {
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		return strings.TrimSpace(mime[:i])
	}
	return mime
}

// AllowedExtensions returns the allow-listed extensions for a class, for
// error messages.
func AllowedExtensions(class FileClass) []string {
	extensions := make([]string, 0, len(classExtensions[class]))
	for ext := range classExtensions[class] {
		extensions = append(extensions, ext)
	}
	return extensions
}
