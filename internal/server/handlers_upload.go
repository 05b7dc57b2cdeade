package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/cv-admin/internal/media"
	"github.com/jonathan/cv-admin/internal/types"
	"github.com/jonathan/cv-admin/internal/workspace"
	"go.uber.org/zap"
)

// multipartOverhead is the allowance for form boundaries and headers on top of the image itself
const multipartOverhead = 64 << 10

// handleUpload streams the "file" part of a multipart form into the image pipeline.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, media.MaxUploadSize+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		s.errorResponse(w, r, &media.ValidationError{Message: "expected multipart form data"})
		return
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			s.errorResponse(w, r, &media.ValidationError{Message: "no file provided"})
			return
		}
		if err != nil {
			s.errorResponse(w, r, uploadReadError(err))
			return
		}
		if part.FormName() != "file" || part.FileName() == "" {
			_ = part.Close()
			continue
		}

		result, err := s.media.Ingest(r.Context(), media.Upload{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
			Size:        -1,
			Body:        part,
		})
		_ = part.Close()
		if err != nil {
			s.errorResponse(w, r, err)
			return
		}

		body := map[string]any{
			"success": true,
			"webUrl":  result.WebURL,
			"pdfUrl":  result.PDFURL,
			"message": "Image uploaded and optimized successfully",
		}
		if r.URL.Query().Get("attach") == "profile" {
			profile, err := s.attachProfileImages(r, result)
			if err != nil {
				s.errorResponse(w, r, err)
				return
			}
			body["profileImageUrl"] = types.ProfileImageURL(profile, types.ImageContextWeb)
			body["profileImagePdfUrl"] = types.ProfileImageURL(profile, types.ImageContextPDF)
		}
		s.jsonResponse(w, r, http.StatusOK, body)
		return
	}
}

// attachProfileImages records a fresh upload on the stored profile. When the
// save fails the derivatives are removed again.
func (s *Server) attachProfileImages(r *http.Request, result *media.Result) (types.UserProfile, error) {
	ws, err := s.mutate(r.Context(), types.ResourceProfile, func(ws workspace.Workspace) (workspace.Workspace, error) {
		return ws.SetProfileImages(result.WebURL, result.PDFURL), nil
	})
	if err != nil {
		removed := s.media.Delete(result.WebURL, result.PDFURL)
		s.logger.Warn("discarded upload after profile save failed",
			zap.String("request_id", RequestID(r)),
			zap.Strings("removed", removed),
			zap.Error(err))
		return types.UserProfile{}, err
	}
	return ws.Profile(), nil
}

func uploadReadError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &media.ValidationError{Message: fmt.Sprintf("file size must be less than %dMB", media.MaxUploadSize>>20)}
	}
	return &media.ValidationError{Message: "malformed multipart form"}
}

// handleDeleteUpload removes previously uploaded derivatives. It always reports success.
func (s *Server) handleDeleteUpload(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	removed := s.media.Delete(q.Get("webUrl"), q.Get("pdfUrl"))
	s.logger.Debug("deleted uploads",
		zap.String("request_id", RequestID(r)),
		zap.Strings("removed", removed))

	s.jsonResponse(w, r, http.StatusOK, map[string]any{
		"success": true,
		"message": "Images deleted successfully",
	})
}
