package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the stores, the glossary service and the HTTP layer.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUpstream     = errors.New("upstream error")
	ErrUnauthorized = errors.New("unauthorized")
)

// ParseError describes a CSV row that was skipped during decode.
type ParseError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}
