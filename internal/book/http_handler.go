package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"bookstore/internal/httpx"
	"bookstore/internal/pagination"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxMultipartMemory = 1 << 20

func init() {
	if err := httpx.RegisterValidation("genre", validateGenre, "%s must be a known genre"); err != nil {
		panic(fmt.Sprintf("register genre validation: %v", err))
	}
}

func validateGenre(fl validator.FieldLevel) bool {
	return Genre(fl.Field().String()).Valid()
}

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

// List handles GET /v1/books
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	f := NewFilter()
	var details []httpx.ErrorDetail
	q := r.URL.Query()
	f.Index, details = intParam(q, "index", f.Index, details)
	f.Size, details = intParam(q, "size", f.Size, details)
	if len(details) == 0 {
		details = httpx.ValidateStruct(f)
	}
	if len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return
	}

	page, err := h.service.List(r.Context(), f.Index, f.Size)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, page, page.Meta())
}

// Search handles POST /v1/books/search. The filter is read from a JSON body
// or from multipart and urlencoded forms.
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	f, details, err := decodeFilter(r)
	if err != nil {
		httpx.BadRequest(w, r, "Invalid search body")
		return
	}
	if len(details) == 0 {
		details = httpx.ValidateStruct(f)
	}
	if len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return
	}

	page, err := h.service.Search(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, page, page.Meta())
}

// Get handles GET /v1/books/{id}
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	b, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Create handles POST /v1/books
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.BadRequest(w, r, "Invalid JSON body")
		return
	}
	details := append(in.missingForCreate(), httpx.ValidateStruct(in)...)
	if len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return
	}

	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, fmt.Sprintf("/v1/books/%d", b.ID), b)
}

// Update handles PATCH /v1/books/{id}
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.BadRequest(w, r, "Invalid JSON body")
		return
	}
	if details := httpx.ValidateStruct(in); len(details) > 0 {
		httpx.ValidationFailed(w, r, details)
		return
	}

	b, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /v1/books/{id}
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, pagination.ErrNoMatch):
		httpx.NotFound(w, r, "No books found")
	case errors.Is(err, ErrNotFound):
		httpx.NotFound(w, r, "Book not found")
	case errors.Is(err, ErrDuplicate):
		httpx.JSONError(w, r, http.StatusConflict, "CONFLICT",
			"A book with the same author, name, genre and edition already exists", nil)
	default:
		h.logger.Error("book request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", httpx.RequestIDFrom(r)),
			zap.Error(err),
		)
		httpx.InternalError(w, r)
	}
}

func bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id < 1 {
		httpx.BadRequest(w, r, "Invalid book id")
		return 0, false
	}
	return id, true
}

// decodeFilter reads a search filter. A request without a body yields the
// default filter. Malformed JSON is an error; malformed form numbers are
// reported as validation details.
func decodeFilter(r *http.Request) (Filter, []httpx.ErrorDetail, error) {
	f := NewFilter()

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
			return Filter{}, nil, fmt.Errorf("decode json: %w", err)
		}
		f.dropEmpty()
		return f, nil, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			return Filter{}, nil, fmt.Errorf("parse multipart: %w", err)
		}
	default:
		if err := r.ParseForm(); err != nil {
			return Filter{}, nil, fmt.Errorf("parse form: %w", err)
		}
	}

	values := r.Form
	var details []httpx.ErrorDetail
	f.Index, details = intParam(values, "index", f.Index, details)
	f.Size, details = intParam(values, "size", f.Size, details)
	f.Name = stringParam(values, FieldName)
	f.AuthorName = stringParam(values, FieldAuthorName)
	f.Publisher = stringParam(values, FieldPublisher)
	if g := stringParam(values, FieldGenre); g != nil {
		genre := Genre(*g)
		f.Genre = &genre
	}
	f.Edition, details = optionalIntParam(values, FieldEdition, details)
	f.PublicationYear, details = optionalIntParam(values, FieldPublicationYear, details)
	return f, details, nil
}

func stringParam(values url.Values, key string) *string {
	v := values.Get(key)
	if v == "" {
		return nil
	}
	return &v
}

func intParam(values url.Values, key string, def int, details []httpx.ErrorDetail) (int, []httpx.ErrorDetail) {
	raw := values.Get(key)
	if raw == "" {
		return def, details
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, append(details, httpx.ErrorDetail{Field: key, Message: key + " must be an integer"})
	}
	return n, details
}

func optionalIntParam(values url.Values, key string, details []httpx.ErrorDetail) (*int, []httpx.ErrorDetail) {
	if values.Get(key) == "" {
		return nil, details
	}
	n, details := intParam(values, key, 0, details)
	return &n, details
}
