package repository

import "errors"

var (
	// ErrInvalidSlideURL indicates an invalid slide URL
	ErrInvalidSlideURL = errors.New("invalid slide URL")

	// ErrSlideNotFound indicates the slide was not found
	ErrSlideNotFound = errors.New("slide not found")

	// ErrNoBlobStorage indicates a blob URL was given without blob credentials configured
	ErrNoBlobStorage = errors.New("blob storage not configured")
)
