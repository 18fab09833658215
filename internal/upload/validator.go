package upload

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// RejectReason discriminates why an upload was refused.
type RejectReason string

const (
	ReasonTooLarge          RejectReason = "too_large"
	ReasonUnsupportedFormat RejectReason = "unsupported_format"
	ReasonEmpty             RejectReason = "empty"
	ReasonCorrupt           RejectReason = "corrupt"
)

// RawUpload is an uploaded file candidate before it enters the pipeline.
// The buffer is only inspected, never mutated.
type RawUpload struct {
	Data     []byte
	Filename string
	MIMEType string
}

// ValidationResult is the per-attempt outcome. Rejections carry one
// discriminated reason plus the offending value for a specific message.
type ValidationResult struct {
	OK     bool         `json:"ok"`
	Reason RejectReason `json:"reason,omitempty"`
	Detail string       `json:"detail,omitempty"`
}

// Validator screens raw uploads against size and format constraints and
// confirms the buffer actually decodes before anything downstream sees it.
type Validator struct {
	maxBytes    int64
	allowedMIME map[string]bool
	allowedExt  map[string]bool
}

// NewValidator creates a validator accepting JPEG and PNG radiograph
// exports up to maxBytes.
func NewValidator(maxBytes int64) *Validator {
	return &Validator{
		maxBytes: maxBytes,
		allowedMIME: map[string]bool{
			"image/jpeg": true,
			"image/jpg":  true,
			"image/png":  true,
		},
		allowedExt: map[string]bool{
			".jpg":  true,
			".jpeg": true,
			".png":  true,
		},
	}
}

// Validate applies all rules in order. A malformed buffer is converted into
// a Corrupt result, never a panic or propagated decode fault.
func (v *Validator) Validate(u RawUpload) ValidationResult {
	if int64(len(u.Data)) > v.maxBytes {
		return reject(ReasonTooLarge,
			fmt.Sprintf("file is %d bytes, limit is %d", len(u.Data), v.maxBytes))
	}

	if len(u.Data) == 0 {
		return reject(ReasonEmpty, "uploaded file is empty")
	}

	if !v.formatAllowed(u) {
		return reject(ReasonUnsupportedFormat,
			fmt.Sprintf("type %q (file %q) is not an accepted radiograph format", u.MIMEType, u.Filename))
	}

	// Full decode: a truncated buffer with a valid extension must be caught
	// here, not deep in the pipeline.
	if _, err := imaging.Decode(bytes.NewReader(u.Data)); err != nil {
		return reject(ReasonCorrupt,
			fmt.Sprintf("buffer does not decode as %q: %v", u.MIMEType, err))
	}

	return ValidationResult{OK: true}
}

// MaxBytes reports the configured upload ceiling.
func (v *Validator) MaxBytes() int64 {
	return v.maxBytes
}

// formatAllowed trusts the declared MIME type when present and falls back
// to the filename extension when the client sent none or a generic one.
func (v *Validator) formatAllowed(u RawUpload) bool {
	mime := strings.ToLower(strings.TrimSpace(u.MIMEType))
	if mime != "" && mime != "application/octet-stream" {
		return v.allowedMIME[mime]
	}
	ext := strings.ToLower(filepath.Ext(u.Filename))
	return v.allowedExt[ext]
}

func reject(reason RejectReason, detail string) ValidationResult {
	return ValidationResult{OK: false, Reason: reason, Detail: detail}
}
