package conversion

import "errors"

var (
	// ErrUnsupportedFile is returned for uploads that are not PDF documents.
	ErrUnsupportedFile = errors.New("only PDF files are supported")

	// ErrEmptyUpload is returned for uploads without content.
	ErrEmptyUpload = errors.New("uploaded file is empty")
)
