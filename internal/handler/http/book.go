package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/asset"
	"github.com/Riiturii/oc-monvieuxgrimoire/internal/service"
	"github.com/Riiturii/oc-monvieuxgrimoire/pkg/httputil"
	"github.com/Riiturii/oc-monvieuxgrimoire/pkg/middleware"
	"github.com/Riiturii/oc-monvieuxgrimoire/pkg/validator"
)

// BookHandler handles HTTP requests for book endpoints.
type BookHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewBookHandler creates a new book HTTP handler.
func NewBookHandler(svc *service.CatalogService, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// BookRequest carries the descriptive fields of a book. Identity,
// ownership, and the rating tally never come from the client.
type BookRequest struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Year   int    `json:"year" validate:"required,gt=0"`
	Genre  string `json:"genre" validate:"required"`
}

// CreateBookRequest is the JSON part of a book creation upload. Grade
// is a pointer so that a missing grade and a legitimate grade of 0 are
// distinguishable; non-integer values fail at decode time.
type CreateBookRequest struct {
	BookRequest
	Grade *int `json:"grade" validate:"required,min=0,max=5"`
}

// RateBookRequest is the JSON request body for rating a book.
type RateBookRequest struct {
	Grade *int `json:"grade" validate:"required,min=0,max=5"`
}

// --- Handlers ---

// CreateBook handles POST /api/books (multipart/form-data with a
// "book" JSON part and an "image" file part).
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	imageData, req, err := h.parseBookUpload(w, r, &CreateBookRequest{})
	if err != nil {
		httputil.WriteValidationError(w, err)
		return
	}
	createReq := req.(*CreateBookRequest)

	book, err := h.service.CreateBook(r.Context(), &service.CreateBookInput{
		UserID:    middleware.UserIDFromContext(r.Context()),
		Title:     createReq.Title,
		Author:    createReq.Author,
		Year:      createReq.Year,
		Genre:     createReq.Genre,
		Grade:     *createReq.Grade,
		ImageData: imageData,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: book})
}

// ListBooks handles GET /api/books.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.ListBooks(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: books})
}

// BestRatedBooks handles GET /api/books/bestrating.
func (h *BookHandler) BestRatedBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.BestRatedBooks(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: books})
}

// GetBook handles GET /api/books/{id}.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	book, err := h.service.GetBook(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// UpdateBook handles PUT /api/books/{id}. Two payload shapes are
// accepted: multipart/form-data when the cover is being replaced, and
// plain JSON for a field-only edit.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var (
		req       = &BookRequest{}
		imageData []byte
	)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data, parsed, err := h.parseBookUpload(w, r, req)
		if err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
		req = parsed.(*BookRequest)
		imageData = data
	} else {
		if err := validator.DecodeAndValidate(r, req); err != nil {
			httputil.WriteValidationError(w, err)
			return
		}
	}

	book, err := h.service.UpdateBook(r.Context(), id, &service.UpdateBookInput{
		UserID:    middleware.UserIDFromContext(r.Context()),
		Title:     req.Title,
		Author:    req.Author,
		Year:      req.Year,
		Genre:     req.Genre,
		ImageData: imageData,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// DeleteBook handles DELETE /api/books/{id}.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteBook(r.Context(), id, middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"message": "book deleted"}})
}

// RateBook handles POST /api/books/{id}/rating.
func (h *BookHandler) RateBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req := &RateBookRequest{}
	if err := validator.DecodeAndValidate(r, req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	book, err := h.service.RateBook(r.Context(), id, middleware.UserIDFromContext(r.Context()), *req.Grade)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: book})
}

// parseBookUpload reads a multipart book payload: the "book" field
// holds the JSON document, the "image" field the cover file. The image
// part is optional; validation of the JSON part happens against dst.
func (h *BookHandler) parseBookUpload(w http.ResponseWriter, r *http.Request, dst any) ([]byte, any, error) {
	maxSize := asset.MaxUploadSize + (1 << 20) // headroom for the form fields
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxSize))

	if err := r.ParseMultipartForm(asset.MaxUploadSize); err != nil {
		return nil, nil, err
	}

	bookJSON := r.FormValue("book")
	if bookJSON == "" {
		return nil, nil, &missingPartError{part: "book"}
	}
	if err := validator.DecodeAndValidateBytes([]byte(bookJSON), dst); err != nil {
		return nil, nil, err
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, dst, nil
		}
		return nil, nil, err
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, err
	}

	return imageData, dst, nil
}

type missingPartError struct {
	part string
}

func (e *missingPartError) Error() string {
	return e.part + " form field is required"
}
