package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrRunNotFound         = errors.New("extraction run not found")
	ErrRunNotCompleted     = errors.New("extraction run has not completed")
	ErrInvalidResult       = errors.New("stored result does not match expected format")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptyFile           = errors.New("file is empty")
	ErrPDFDecode           = errors.New("pdf decode failed")
	ErrUnknownBackend      = errors.New("unknown extraction backend")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrInvalidExportFormat = errors.New("unsupported export format")
)
