// Package analysis wires the extraction and classification stages into one
// pipeline and optionally persists the outcome.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/clauselens/contract-analyzer/internal/contract"
	"github.com/clauselens/contract-analyzer/internal/extract"
	"github.com/clauselens/contract-analyzer/internal/store"
)

// Analysis is the outcome of running the pipeline over one document.
type Analysis struct {
	ID         string
	Filename   string
	Path       string
	UploadedAt time.Time
	PageCount  int
	Encrypted  bool

	// Text is the cleaned extracted text; empty when extraction failed.
	Text string
	// TextMissing marks an analysis whose extraction failed; Warning then
	// carries the reason.
	TextMissing bool
	Warning     string

	Clauses map[string][]string
	Summary contract.Summary
}

// Service runs the document analysis pipeline. A single Service may be
// shared across goroutines; the pipeline itself is synchronous per call.
type Service struct {
	extractor      *extract.Extractor
	classifier     *contract.Classifier
	store          *store.Store
	highlightLimit int
	logger         *log.Logger
}

// NewService creates a pipeline service. The store may be nil, in which
// case analyses are not persisted. A non-positive highlight limit falls
// back to the classifier default.
func NewService(extractor *extract.Extractor, classifier *contract.Classifier, st *store.Store, highlightLimit int) *Service {
	if highlightLimit <= 0 {
		highlightLimit = contract.DefaultHighlightLimit
	}
	return &Service{
		extractor:      extractor,
		classifier:     classifier,
		store:          st,
		highlightLimit: highlightLimit,
		logger:         log.Default(),
	}
}

// SetLogger redirects pipeline logging. A nil logger is ignored.
func (s *Service) SetLogger(logger *log.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Classifier returns the classifier the service runs with.
func (s *Service) Classifier() *contract.Classifier {
	return s.classifier
}

// AnalyzeFile runs extract → classify → summarize over the PDF at path and
// persists the result when a store is attached. An extraction failure does
// not fail the analysis: the document is recorded with empty text and a
// warning naming the cause, and the classification is complete but empty.
func (s *Service) AnalyzeFile(ctx context.Context, path string) (*Analysis, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}

	a := &Analysis{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(path),
		Path:       path,
		UploadedAt: time.Now().UTC(),
	}

	doc, err := s.extractor.ExtractFile(path)
	if err != nil {
		var xerr *extract.Error
		if !errors.As(err, &xerr) {
			return nil, err
		}
		a.TextMissing = true
		a.Warning = xerr.Kind.Reason()
		if xerr.Kind == extract.KindEncrypted {
			a.Encrypted = true
		}
		s.logger.Printf("analyze %s: extraction failed (%s), storing without text", path, xerr.Kind)
	} else {
		a.Text = doc.Text
		a.PageCount = doc.PageCount
		a.Encrypted = doc.Encrypted
	}

	result := s.classifier.Classify(a.Text)
	a.Clauses = result.Clauses
	a.Summary = s.classifier.Summarize(result)

	if s.store != nil {
		if err := s.store.Save(ctx, recordFromAnalysis(a)); err != nil {
			return nil, fmt.Errorf("persist analysis: %w", err)
		}
	}

	return a, nil
}

// ExtractText runs only the extraction stage.
func (s *Service) ExtractText(path string) (*extract.Document, error) {
	return s.extractor.ExtractFile(path)
}

// Classify runs only the classification stage over already-extracted text.
func (s *Service) Classify(text string) (*contract.Result, contract.Summary) {
	result := s.classifier.Classify(text)
	return result, s.classifier.Summarize(result)
}

// Highlights condenses an analysis to the first few sentences per category.
func (s *Service) Highlights(a *Analysis) map[string][]string {
	return s.classifier.Highlights(&contract.Result{Clauses: a.Clauses}, s.highlightLimit)
}

// SearchFile extracts the PDF at path and returns the sentences matching
// any of the given keywords. Unlike AnalyzeFile, an extraction failure is
// returned to the caller: there is nothing useful to search.
func (s *Service) SearchFile(path string, keywords []string) ([]string, error) {
	doc, err := s.extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	return contract.SearchKeywords(doc.Text, keywords), nil
}

// SearchStored runs a keyword search over the text of a stored analysis.
func (s *Service) SearchStored(ctx context.Context, id string, keywords []string) ([]string, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return contract.SearchKeywords(a.Text, keywords), nil
}

// Get loads a stored analysis by id.
func (s *Service) Get(ctx context.Context, id string) (*Analysis, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return analysisFromRecord(rec, s.classifier), nil
}

// List loads all stored analyses, newest first.
func (s *Service) List(ctx context.Context) ([]*Analysis, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	analyses := make([]*Analysis, len(records))
	for i, rec := range records {
		analyses[i] = analysisFromRecord(rec, s.classifier)
	}
	return analyses, nil
}

// Delete removes a stored analysis, reporting whether it existed.
func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	if s.store == nil {
		return false, fmt.Errorf("no store configured")
	}
	return s.store.Delete(ctx, id)
}

// StoreStats aggregates the store for dashboard views.
func (s *Service) StoreStats(ctx context.Context) (*store.Stats, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no store configured")
	}
	return s.store.AggregateStats(ctx)
}

func recordFromAnalysis(a *Analysis) *store.Record {
	return &store.Record{
		ID:           a.ID,
		Filename:     a.Filename,
		UploadedAt:   a.UploadedAt,
		PageCount:    a.PageCount,
		Encrypted:    a.Encrypted,
		TextMissing:  a.TextMissing,
		Warning:      a.Warning,
		Text:         a.Text,
		Clauses:      a.Clauses,
		TotalClauses: a.Summary.TotalClauses,
		Coverage:     a.Summary.CoveragePercentage,
	}
}

func analysisFromRecord(rec *store.Record, classifier *contract.Classifier) *Analysis {
	a := &Analysis{
		ID:          rec.ID,
		Filename:    rec.Filename,
		UploadedAt:  rec.UploadedAt,
		PageCount:   rec.PageCount,
		Encrypted:   rec.Encrypted,
		Text:        rec.Text,
		TextMissing: rec.TextMissing,
		Warning:     rec.Warning,
		Clauses:     rec.Clauses,
	}
	a.Summary = classifier.Summarize(&contract.Result{Clauses: rec.Clauses})
	return a
}
