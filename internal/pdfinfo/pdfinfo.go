// Package pdfinfo reads summary facts from rendered PDF files.
package pdfinfo

import (
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrUnreadablePDF indicates the file could not be parsed as a PDF.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// PageCount opens the PDF at path and returns its number of pages.
func PageCount(path string) (count int, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("%w: %s: %v", ErrUnreadablePDF, path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnreadablePDF, path, err)
	}
	defer f.Close()

	return r.NumPage(), nil
}
