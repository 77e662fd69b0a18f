package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/regioninvest/portal/internal/domain"
	"github.com/regioninvest/portal/internal/service"
)

const maxFilesPerKind = 10

// FileStorage is the upload collaborator: it stores a file and returns
// its stable path. Remove undoes a stored upload when the submission
// it belongs to never materializes.
type FileStorage interface {
	Save(ctx context.Context, category, originalName string, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, path string) error
}

// CompletionHandler handles completion submission and review.
type CompletionHandler struct {
	completions *service.CompletionService
	storage     FileStorage
	maxBytes    int64
}

// NewCompletionHandler creates a new CompletionHandler.
func NewCompletionHandler(completions *service.CompletionService, storage FileStorage, maxBytes int64) *CompletionHandler {
	return &CompletionHandler{completions: completions, storage: storage, maxBytes: maxBytes}
}

// Submit accepts a multipart completion: an optional comment plus up to
// ten documents and ten photos.
func (h *CompletionHandler) Submit(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fmt.Errorf("%w: invalid multipart form", domain.ErrInvalidInput)
	}

	documents := form.File["documents"]
	photos := form.File["photos"]
	if len(documents) > maxFilesPerKind {
		return &domain.ValidationError{Field: "documents", Message: fmt.Sprintf("at most %d files allowed", maxFilesPerKind)}
	}
	if len(photos) > maxFilesPerKind {
		return &domain.ValidationError{Field: "photos", Message: fmt.Sprintf("at most %d files allowed", maxFilesPerKind)}
	}

	ctx := c.Request().Context()
	files := make([]domain.CompletionFile, 0, len(documents)+len(photos))
	for _, fh := range documents {
		file, err := h.storeUpload(ctx, fh, domain.FileKindDocument)
		if err != nil {
			h.discardUploads(ctx, files)
			return err
		}
		files = append(files, file)
	}
	for _, fh := range photos {
		file, err := h.storeUpload(ctx, fh, domain.FileKindPhoto)
		if err != nil {
			h.discardUploads(ctx, files)
			return err
		}
		files = append(files, file)
	}

	var comment *string
	if v := c.FormValue("comment"); v != "" {
		comment = &v
	}

	completion, err := h.completions.Submit(ctx, service.SubmitInput{
		TaskID:      taskID,
		SubmitterID: userID,
		Comment:     comment,
		Files:       files,
	})
	if err != nil {
		h.discardUploads(ctx, files)
		return err
	}

	return JSON(c, http.StatusCreated, completion)
}

// discardUploads removes objects stored for a submission that failed.
// Best effort: a leftover object is logged, not surfaced.
func (h *CompletionHandler) discardUploads(ctx context.Context, files []domain.CompletionFile) {
	for _, f := range files {
		if err := h.storage.Remove(ctx, f.Path); err != nil {
			slog.Warn("orphaned upload not removed", "path", f.Path, "error", err)
		}
	}
}

type reviewRequest struct {
	Decision string  `json:"decision" validate:"required,oneof=approved rejected"`
	Comment  *string `json:"comment"`
}

// Review records the caller's decision on a pending completion.
func (h *CompletionHandler) Review(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	taskID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	completionID, err := pathID(c, "cid")
	if err != nil {
		return err
	}

	var req reviewRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	completion, err := h.completions.Review(c.Request().Context(), service.ReviewInput{
		TaskID:       taskID,
		CompletionID: completionID,
		ReviewerID:   userID,
		Decision:     domain.CompletionStatus(req.Decision),
		Comment:      req.Comment,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusOK, completion)
}

func (h *CompletionHandler) storeUpload(ctx context.Context, fh *multipart.FileHeader, kind domain.FileKind) (domain.CompletionFile, error) {
	if fh.Size > h.maxBytes {
		return domain.CompletionFile{}, &domain.ValidationError{
			Field:   fh.Filename,
			Message: fmt.Sprintf("exceeds the %d byte size limit", h.maxBytes),
		}
	}

	contentType := fh.Header.Get("Content-Type")
	if kind == domain.FileKindPhoto && !strings.HasPrefix(contentType, "image/") {
		return domain.CompletionFile{}, &domain.ValidationError{
			Field:   fh.Filename,
			Message: "photos must be image files",
		}
	}

	src, err := fh.Open()
	if err != nil {
		return domain.CompletionFile{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	path, err := h.storage.Save(ctx, string(kind)+"s", fh.Filename, src, fh.Size, contentType)
	if err != nil {
		return domain.CompletionFile{}, fmt.Errorf("store upload %q: %w", fh.Filename, err)
	}

	return domain.CompletionFile{
		Path:         path,
		OriginalName: fh.Filename,
		Kind:         kind,
	}, nil
}
