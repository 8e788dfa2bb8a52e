package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/school-directory/internal/application/school"
	"github.com/school-directory/internal/domain"
	"github.com/school-directory/internal/pkg/validate"
)

const maxUploadBytes = 10 << 20

type createSchoolForm struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	EmailID string `json:"email_id" validate:"required,emailshape"`
	Contact string `json:"contact" validate:"required,contact"`
}

// SchoolHandler handles school catalogue endpoints.
type SchoolHandler struct {
	svc school.Service
}

func NewSchoolHandler(svc school.Service) *SchoolHandler { return &SchoolHandler{svc: svc} }

func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	schools, err := h.svc.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list schools failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch schools")
		return
	}
	if schools == nil {
		schools = []domain.School{}
	}
	writeJSON(w, http.StatusOK, SchoolsEnvelope{Schools: schools})
}

func (h *SchoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.ErrorContext(r.Context(), "get school failed", "err", err)
		}
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// ListMine returns the schools registered by the caller.
func (h *SchoolHandler) ListMine(w http.ResponseWriter, r *http.Request, id domain.Identity) {
	schools, err := h.svc.ListByCreator(r.Context(), id.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "list own schools failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch schools")
		return
	}
	if schools == nil {
		schools = []domain.School{}
	}
	writeJSON(w, http.StatusOK, SchoolsEnvelope{Schools: schools})
}

// Create registers a school from a multipart form. The caller becomes its creator.
func (h *SchoolHandler) Create(w http.ResponseWriter, r *http.Request, id domain.Identity) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	form := createSchoolForm{
		Name:    r.FormValue("name"),
		Address: r.FormValue("address"),
		City:    r.FormValue("city"),
		State:   r.FormValue("state"),
		EmailID: r.FormValue("email_id"),
		Contact: r.FormValue("contact"),
	}
	f, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	defer f.Close()

	if err := validate.Struct(&form); err != nil {
		writeError(w, http.StatusBadRequest, fieldMessage(err, "All fields are required"))
		return
	}

	contentType, err := sniffImage(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read image")
		return
	}

	sc, err := h.svc.Create(r.Context(), school.CreateInput{
		Name:             form.Name,
		Address:          form.Address,
		City:             form.City,
		State:            form.State,
		Contact:          form.Contact,
		EmailID:          form.EmailID,
		Image:            f,
		ImageName:        header.Filename,
		ImageContentType: contentType,
		CreatedBy:        id,
	})
	if err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeError(w, http.StatusBadRequest, "Image must be a JPEG, PNG, GIF or WebP file")
			return
		}
		slog.ErrorContext(r.Context(), "create school failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to add school. Please try again.")
		return
	}
	writeJSON(w, http.StatusCreated, SchoolCreatedEnvelope{
		Message:  "School added successfully",
		ImageURL: sc.Image,
		School:   sc,
	})
}

// sniffImage detects the content type from the leading bytes rather than
// trusting the client-declared header, then rewinds f.
func sniffImage(f io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
