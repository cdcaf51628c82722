// Package extract turns a local PDF into a structured Document: page text,
// embedded metadata, and heuristically recovered title and abstract.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pdiddy/paper-ingest/internal/textutil"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Extraction failure modes. Callers classify with errors.Is; the messages
// carry the remediation the operator needs.
var (
	ErrNotFound          = errors.New("pdf not found")
	ErrUnreadable        = errors.New("cannot open pdf")
	ErrPasswordProtected = errors.New("pdf is password-protected: unlock it before processing")
	ErrLikelyScanned     = errors.New("pdf is likely scanned and needs OCR: run it through an OCR tool first")
)

// minTextChars is the minimum non-whitespace character count below which a
// document with at least one page is rejected as scanned.
const minTextChars = 100

// RawDocument is what a document source yields for one PDF before any
// cleaning or heuristics run.
type RawDocument struct {
	// Pages holds the extracted text of each page, in page order.
	Pages []string

	// PageCount is the total page count, including empty pages.
	PageCount int

	// Meta carries document-level metadata entries such as Title and Author.
	Meta map[string]string
}

// Reader is the document source collaborator: it must provide page-indexed
// text and document metadata for a PDF on disk, attempting empty-password
// decryption for encrypted files.
type Reader interface {
	Read(path string) (*RawDocument, error)
}

// Extractor produces Documents from PDF paths.
type Extractor struct {
	reader Reader
}

// New returns an Extractor backed by the built-in pdfcpu reader.
func New() *Extractor {
	return &Extractor{reader: pdfReader{}}
}

// NewWithReader returns an Extractor using a custom document source.
func NewWithReader(r Reader) *Extractor {
	return &Extractor{reader: r}
}

// Extract reads the PDF at path and returns a structured Document.
//
// It fails with ErrNotFound when the path does not reference an existing
// file, ErrUnreadable when the document cannot be opened,
// ErrPasswordProtected when empty-password decryption does not succeed, and
// ErrLikelyScanned when the extracted non-whitespace text is shorter than
// the scanned-PDF threshold while the page count is positive.
func (e *Extractor) Extract(path string) (*types.Document, error) {
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	raw, err := e.reader.Read(path)
	if err != nil {
		return nil, err
	}

	// Concatenate non-blank pages with blank-line separation.
	var pages []string
	for _, p := range raw.Pages {
		if strings.TrimSpace(p) != "" {
			pages = append(pages, p)
		}
	}
	body := strings.Join(pages, "\n\n")

	if countNonSpace(body) < minTextChars && raw.PageCount > 0 {
		return nil, fmt.Errorf("%w: only %d characters extracted from %d pages",
			ErrLikelyScanned, countNonSpace(body), raw.PageCount)
	}

	cleaned := textutil.Clean(body)

	return &types.Document{
		Title:      DetectTitle(cleaned, raw.Meta["Title"]),
		Authors:    raw.Meta["Author"],
		Abstract:   DetectAbstract(cleaned),
		BodyText:   cleaned,
		PageCount:  raw.PageCount,
		SourcePath: path,
		Metadata:   raw.Meta,
	}, nil
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
