package server

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/huyxdang/doc-tracker-backend/internal/pipeline"
	"github.com/huyxdang/doc-tracker-backend/internal/types"
)

// maxUploadBytes caps the total multipart form size for a compare request.
const maxUploadBytes = 32 << 20

// docxContentType is the MIME type of an annotated document download.
const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleCompare compares two uploaded documents and classifies the impact of
// every change. The response always carries the complete, id-ordered change
// list, even when the reasoning service is down.
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	bytesV1, nameV1, err := readUpload(r, "file_v1")
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	bytesV2, nameV2, err := readUpload(r, "file_v2")
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	documentType := r.FormValue("document_type")
	if documentType == "" {
		documentType = "general"
	}
	req := types.CompareRequest{DocumentType: documentType}
	if err := req.Validate(); err != nil {
		typeErr := &ErrInvalidDocumentType{Value: documentType}
		s.errorResponse(w, HTTPStatus(typeErr), typeErr.Error())
		return
	}

	result, err := pipeline.Compare(r.Context(), pipeline.CompareOptions{
		BytesV1:      bytesV1,
		BytesV2:      bytesV2,
		FilenameV1:   nameV1,
		FilenameV2:   nameV2,
		DocumentType: documentType,
		Client:       s.client,
	})
	if err != nil {
		log.Printf("Compare failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, fmt.Sprintf("processing error: %v", err))
		return
	}

	annotatedDocID := ""
	if result.AnnotatedBytes != nil {
		annotatedDocID = s.store.Put(result.AnnotatedBytes, "annotated_"+nameV2)
	}

	s.jsonResponse(w, http.StatusOK, types.CompareResponse{
		Success:          true,
		Summary:          result.Summary,
		Changes:          result.Changes,
		ProcessingTimeMS: result.Timing.TotalMS,
		Timing:           &result.Timing,
		Metadata:         result.Metadata,
		AnnotatedDocID:   annotatedDocID,
	})
}

// handleDownload serves a stored annotated document.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, ok := s.store.Get(id)
	if !ok {
		notFound := &ErrArtifactNotFound{ID: id}
		s.errorResponse(w, HTTPStatus(notFound), "document not found, it may have expired")
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", doc.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Bytes); err != nil {
		log.Printf("Error writing download response: %v", err)
	}
}

// readUpload reads one uploaded file field, enforcing the .docx extension.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", &ErrInvalidUpload{Field: field, Message: "file is required"}
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".docx") {
		return nil, "", &ErrInvalidUpload{
			Field:   field,
			Message: fmt.Sprintf("must be .docx, got: %s", header.Filename),
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", &ErrInvalidUpload{Field: field, Message: "failed to read file"}
	}

	return data, header.Filename, nil
}
