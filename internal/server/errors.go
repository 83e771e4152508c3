package server

import (
	"fmt"
	"net/http"
)

// ErrInvalidUpload indicates an uploaded file that cannot be accepted
type ErrInvalidUpload struct {
	Field   string
	Message string
}

func (e *ErrInvalidUpload) Error() string {
	return fmt.Sprintf("invalid upload: %s - %s", e.Field, e.Message)
}

// ErrInvalidDocumentType indicates an unsupported document_type value
type ErrInvalidDocumentType struct {
	Value string
}

func (e *ErrInvalidDocumentType) Error() string {
	return fmt.Sprintf("unsupported document type: %s", e.Value)
}

// ErrArtifactNotFound indicates a missing or expired annotated document
type ErrArtifactNotFound struct {
	ID string
}

func (e *ErrArtifactNotFound) Error() string {
	return fmt.Sprintf("document not found: %s", e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidUpload, *ErrInvalidDocumentType:
		return http.StatusBadRequest
	case *ErrArtifactNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
