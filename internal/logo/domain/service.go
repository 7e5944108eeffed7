package domain

import (
	"context"
	"errors"
)

type UploadLogoRequest struct {
	FileName    string
	ContentType string
	Data        []byte
}

type Service interface {
	Upload(context.Context, UploadLogoRequest) (Logo, error)
	// Latest returns the most recently uploaded logo.
	Latest(context.Context) (Logo, error)
}

var (
	ErrInvalidFile = errors.New("invalid_file")
	ErrNotFound    = errors.New("not_found")
)
