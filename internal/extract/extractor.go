package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Document is the output of one extraction run. It is created fresh per
// call and never retained by the extractor.
type Document struct {
	// PageTexts holds the raw text of each page in order; the slot of a
	// page that failed or yielded nothing stays empty.
	PageTexts []string
	// Text is the cleaned concatenation of all productive pages.
	Text string
	// PageCount is the total number of pages in the document.
	PageCount int
	// PagesWithText counts pages that yielded non-empty text.
	PagesWithText int
	// Encrypted reports whether the document declared encryption, even when
	// the empty password opened it.
	Encrypted bool
}

// Extractor reads PDF sources and produces cleaned text. Page failures are
// isolated: one bad page never invalidates the document.
type Extractor struct {
	maxFileSize int64
	logger      *log.Logger
}

// NewExtractor creates an extractor. maxFileSize of 0 disables the size
// limit.
func NewExtractor(maxFileSize int64) *Extractor {
	return &Extractor{
		maxFileSize: maxFileSize,
		logger:      log.Default(),
	}
}

// SetLogger redirects per-page skip logging. A nil logger is ignored.
func (e *Extractor) SetLogger(logger *log.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

type readerAtSeeker interface {
	io.ReaderAt
	io.ReadSeeker
}

// ExtractFile extracts text from the PDF at path. Failures are reported as
// *Error with a Kind from the fixed taxonomy; callers should treat them as
// "no text available" rather than aborting their own flow.
func (e *Extractor) ExtractFile(path string) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		return nil, &Error{Kind: KindNotFound, Path: path, Err: err}
	case os.IsPermission(err):
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: err}
	case err != nil:
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: err}
	}

	if !fileInfo.Mode().IsRegular() {
		return nil, &Error{Kind: KindNotFound, Path: path, Err: fmt.Errorf("not a regular file")}
	}
	if fileInfo.Size() == 0 {
		return nil, &Error{Kind: KindEmptyFile, Path: path}
	}
	if e.maxFileSize > 0 && fileInfo.Size() > e.maxFileSize {
		return nil, &Error{
			Kind: KindUnreadable,
			Path: path,
			Err:  fmt.Errorf("file too large: %d bytes (max: %d bytes)", fileInfo.Size(), e.maxFileSize),
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Kind: KindUnreadable, Path: path, Err: err}
	}
	defer f.Close()

	return e.extract(f, fileInfo.Size(), path)
}

// ExtractBytes extracts text from an in-memory PDF.
func (e *Extractor) ExtractBytes(data []byte) (*Document, error) {
	const name = "(bytes)"
	if len(data) == 0 {
		return nil, &Error{Kind: KindEmptyFile, Path: name}
	}
	if e.maxFileSize > 0 && int64(len(data)) > e.maxFileSize {
		return nil, &Error{
			Kind: KindUnreadable,
			Path: name,
			Err:  fmt.Errorf("buffer too large: %d bytes (max: %d bytes)", len(data), e.maxFileSize),
		}
	}
	return e.extract(bytes.NewReader(data), int64(len(data)), name)
}

func (e *Extractor) extract(src readerAtSeeker, size int64, name string) (*Document, error) {
	doc := &Document{}

	// Structural inspection is best-effort: a file pdfcpu rejects may still
	// be readable for text below.
	if info, err := Inspect(src); err == nil {
		doc.Encrypted = info.Encrypted
	} else {
		e.logger.Printf("inspect %s: %v", name, err)
	}

	// The reader tries the empty user password on encrypted files before
	// failing, so a truly passworded document surfaces here.
	reader, err := pdf.NewReader(src, size)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, &Error{Kind: KindEncrypted, Path: name, Err: err}
		}
		return nil, &Error{Kind: KindCorrupt, Path: name, Err: err}
	}

	doc.PageCount = reader.NumPage()
	doc.PageTexts = make([]string, doc.PageCount)

	for pageNum := 1; pageNum <= doc.PageCount; pageNum++ {
		text, err := extractPage(reader, pageNum)
		if err != nil {
			e.logger.Printf("extract %s: page %d skipped: %v", name, pageNum, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			e.logger.Printf("extract %s: page %d has no extractable text", name, pageNum)
			continue
		}
		doc.PageTexts[pageNum-1] = text
		doc.PagesWithText++
	}

	if doc.PagesWithText == 0 {
		return nil, &Error{Kind: KindNoText, Path: name}
	}

	parts := make([]string, 0, doc.PagesWithText)
	for _, text := range doc.PageTexts {
		if text != "" {
			parts = append(parts, text)
		}
	}
	doc.Text = Clean(strings.Join(parts, "\n"))
	if doc.Text == "" {
		return nil, &Error{Kind: KindNoText, Path: name}
	}

	return doc, nil
}

// extractPage pulls plain text from one page, converting panics inside the
// PDF library into errors so a malformed page cannot take down the run.
func extractPage(reader *pdf.Reader, pageNum int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during text extraction: %v", r)
		}
	}()

	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
