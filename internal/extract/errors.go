package extract

import (
	"errors"
	"fmt"
)

// Kind tags an extraction failure so callers can branch on cause without
// parsing messages.
type Kind string

const (
	// KindNotFound means the source does not exist or is not a regular file.
	KindNotFound Kind = "not_found"
	// KindUnreadable means the source exists but cannot be read
	// (permissions, size limit).
	KindUnreadable Kind = "unreadable"
	// KindEmptyFile means the source has zero length.
	KindEmptyFile Kind = "empty_file"
	// KindCorrupt means the PDF structure could not be parsed.
	KindCorrupt Kind = "corrupt"
	// KindEncrypted means the PDF is password-protected and the empty
	// password did not open it.
	KindEncrypted Kind = "encrypted"
	// KindNoText means the PDF parsed but no page yielded text
	// (scanned or image-only document).
	KindNoText Kind = "no_text"
)

// Error is a tagged extraction failure. All extraction failures are
// recoverable at the pipeline boundary: callers treat them as "no text
// available", not as a hard abort.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Path, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var xerr *Error
	if errors.As(err, &xerr) {
		return xerr.Kind, true
	}
	return "", false
}

// Reason returns a short human-readable description of a failure kind,
// suitable for warning fields and logs.
func (k Kind) Reason() string {
	switch k {
	case KindNotFound:
		return "file not found or not a regular file"
	case KindUnreadable:
		return "file could not be read"
	case KindEmptyFile:
		return "file is empty"
	case KindCorrupt:
		return "PDF is corrupted or not a valid PDF"
	case KindEncrypted:
		return "PDF is password-protected"
	case KindNoText:
		return "no extractable text (possibly scanned or image-only)"
	default:
		return string(k)
	}
}
