// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdftext exposes the plain text of a PDF one page at a time.
// Pages are decoded on demand, so callers that stop early never pay for the
// rest of the document.
package pdftext

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/spf13/afero"
)

func init() {
	// pdfcpu otherwise writes a config directory under the user's home.
	api.DisableConfigDir()
}

// Info is the document information dictionary, used for diagnostics only.
type Info struct {
	Title     string
	Author    string
	Producer  string
	Creator   string
	PageCount int
}

// Document is an open PDF whose pages can be read in any order and any
// number of times.
type Document interface {
	// NumPages returns the page count.
	NumPages() int
	// PageText returns the plain text of page i (0-based).
	PageText(i int) (string, error)
	// Info returns the document information dictionary.
	Info() (Info, error)
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// FileOpener opens PDFs from an afero filesystem, extracting page text with
// ledongthuc/pdf and the info dictionary with pdfcpu.
type FileOpener struct {
	fs afero.Fs
}

// NewFileOpener returns an Opener reading from fs.
func NewFileOpener(fs afero.Fs) *FileOpener {
	return &FileOpener{fs: fs}
}

// Open parses the cross-reference table of the PDF at path. Page content is
// not decoded until PageText is called.
func (o *FileOpener) Open(path string) (Document, error) {
	f, err := o.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	r, err := pdf.NewReader(f, st.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading PDF %s: %w", path, err)
	}

	return &fileDocument{file: f, reader: r, path: path}, nil
}

type fileDocument struct {
	file   afero.File
	reader *pdf.Reader
	path   string
}

func (d *fileDocument) NumPages() int {
	return d.reader.NumPage()
}

func (d *fileDocument) PageText(i int) (text string, err error) {
	if i < 0 || i >= d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range [0,%d)", i, d.reader.NumPage())
	}

	// ledongthuc/pdf panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extracting page %d of %s: %v", i, d.path, r)
		}
	}()

	page := d.reader.Page(i + 1)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extracting page %d of %s: %w", i, d.path, err)
	}
	return text, nil
}

func (d *fileDocument) Info() (Info, error) {
	if _, err := d.file.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("rewinding %s: %w", d.path, err)
	}
	ctx, err := api.ReadContext(d.file, model.NewDefaultConfiguration())
	if err != nil {
		return Info{}, fmt.Errorf("reading info of %s: %w", d.path, err)
	}
	// The info dictionary fields are only populated during validation.
	if err := api.ValidateContext(ctx); err != nil {
		return Info{}, fmt.Errorf("validating %s: %w", d.path, err)
	}
	count := ctx.PageCount
	if count == 0 {
		count = d.reader.NumPage()
	}
	return Info{
		Title:     strings.TrimSpace(ctx.Title),
		Author:    strings.TrimSpace(ctx.Author),
		Producer:  strings.TrimSpace(ctx.Producer),
		Creator:   strings.TrimSpace(ctx.Creator),
		PageCount: count,
	}, nil
}

func (d *fileDocument) Close() error {
	return d.file.Close()
}
