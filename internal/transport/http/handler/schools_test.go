package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/school-directory/internal/application/school"
	"github.com/school-directory/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// --- mock ---

type mockSchoolSvc struct{ mock.Mock }

func (m *mockSchoolSvc) Create(ctx context.Context, in school.CreateInput) (*domain.School, error) {
	args := m.Called(ctx, in)
	if s, _ := args.Get(0).(*domain.School); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSchoolSvc) Get(ctx context.Context, schoolID string) (*domain.School, error) {
	args := m.Called(ctx, schoolID)
	if s, _ := args.Get(0).(*domain.School); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSchoolSvc) List(ctx context.Context) ([]domain.School, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]domain.School)
	return list, args.Error(1)
}

func (m *mockSchoolSvc) ListByCreator(ctx context.Context, email string) ([]domain.School, error) {
	args := m.Called(ctx, email)
	list, _ := args.Get(0).([]domain.School)
	return list, args.Error(1)
}

// --- helpers ---

func validFields() map[string]string {
	return map[string]string{
		"name":     "Springfield Elementary",
		"address":  "19 Plympton St",
		"city":     "Springfield",
		"state":    "OR",
		"contact":  "5551234567",
		"email_id": "office@springfield.edu",
	}
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/schools", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var caller = domain.Identity{Email: "admin@springfield.edu"}

// --- List / Get ---

func TestListSchools_EmptyIsArray(t *testing.T) {
	svc := &mockSchoolSvc{}
	svc.On("List", mock.Anything).Return(nil, nil)

	rec := httptest.NewRecorder()
	NewSchoolHandler(svc).List(rec, httptest.NewRequest(http.MethodGet, "/schools", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"schools":[]}`, rec.Body.String())
}

func TestListSchools_StoreError(t *testing.T) {
	svc := &mockSchoolSvc{}
	svc.On("List", mock.Anything).Return(nil, errors.New("scan: throttled"))

	rec := httptest.NewRecorder()
	NewSchoolHandler(svc).List(rec, httptest.NewRequest(http.MethodGet, "/schools", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch schools", decodeBody(t, rec)["error"])
}

func TestGetSchool(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := &mockSchoolSvc{}
	svc.On("Get", mock.Anything, "01HX").Return(&domain.School{SchoolID: "01HX", Name: "Shelbyville High", ImageKey: "schools/01HX/a.png", CreatedAt: created}, nil)
	svc.On("Get", mock.Anything, "missing").Return(nil, fmt.Errorf("school missing: %w", domain.ErrNotFound))

	r := chi.NewRouter()
	r.Get("/schools/{id}", NewSchoolHandler(svc).Get)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schools/01HX", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "01HX", body["id"])
	assert.Equal(t, "Shelbyville High", body["name"])
	assert.NotContains(t, rec.Body.String(), "image_key")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/schools/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListMine_UsesCallerEmail(t *testing.T) {
	svc := &mockSchoolSvc{}
	svc.On("ListByCreator", mock.Anything, caller.Email).Return([]domain.School{{SchoolID: "a"}, {SchoolID: "b"}}, nil)

	rec := httptest.NewRecorder()
	NewSchoolHandler(svc).ListMine(rec, httptest.NewRequest(http.MethodGet, "/schools/mine", nil), caller)

	assert.Equal(t, http.StatusOK, rec.Code)
	schools, ok := decodeBody(t, rec)["schools"].([]interface{})
	require.True(t, ok)
	assert.Len(t, schools, 2)
	svc.AssertExpectations(t)
}

// --- Create ---

func TestCreateSchool_OK(t *testing.T) {
	svc := &mockSchoolSvc{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in school.CreateInput) bool {
		img, err := io.ReadAll(in.Image)
		return err == nil &&
			bytes.Equal(img, pngHeader) &&
			in.ImageContentType == "image/png" &&
			in.ImageName == "front.png" &&
			in.Name == "Springfield Elementary" &&
			in.Contact == "5551234567" &&
			in.CreatedBy == caller
	})).Return(&domain.School{SchoolID: "01HX", Image: "https://cdn.example.com/schools/01HX/front.png"}, nil)

	rec := httptest.NewRecorder()
	NewSchoolHandler(svc).Create(rec, multipartRequest(t, validFields(), "front.png", pngHeader), caller)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "School added successfully", body["message"])
	assert.Equal(t, "https://cdn.example.com/schools/01HX/front.png", body["imageUrl"])
	svc.AssertExpectations(t)
}

func TestCreateSchool_BadInput(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(map[string]string)
		image  []byte
		want   string
	}{
		{"missing name", func(f map[string]string) { delete(f, "name") }, pngHeader, "All fields are required"},
		{"missing image", func(map[string]string) {}, nil, "All fields are required"},
		{"bad email", func(f map[string]string) { f["email_id"] = "office" }, pngHeader, "Invalid email format"},
		{"short contact", func(f map[string]string) { f["contact"] = "555123456" }, pngHeader, "Contact must be 10 digits"},
		{"contact with dashes", func(f map[string]string) { f["contact"] = "555-123-4567" }, pngHeader, "Contact must be 10 digits"},
		{"email checked before contact", func(f map[string]string) {
			f["email_id"] = "office"
			f["contact"] = "1"
		}, pngHeader, "Invalid email format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := validFields()
			tc.mutate(fields)
			svc := &mockSchoolSvc{}

			rec := httptest.NewRecorder()
			NewSchoolHandler(svc).Create(rec, multipartRequest(t, fields, "front.png", tc.image), caller)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decodeBody(t, rec)["error"])
			svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateSchool_RejectedImageType(t *testing.T) {
	svc := &mockSchoolSvc{}
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in school.CreateInput) bool {
		return in.ImageContentType == "text/plain; charset=utf-8"
	})).Return(nil, fmt.Errorf("unsupported image type: %w", domain.ErrBadRequest))

	rec := httptest.NewRecorder()
	NewSchoolHandler(svc).Create(rec, multipartRequest(t, validFields(), "front.png", []byte("definitely not an image")), caller)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Image must be a JPEG, PNG, GIF or WebP file", decodeBody(t, rec)["error"])
}

func TestCreateSchool_StoreFailure(t *testing.T) {
	svc := &mockSchoolSvc{}
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("put item: conditional check failed"))

	rec := httptest.NewRecorder()
	NewSchoolHandler(svc).Create(rec, multipartRequest(t, validFields(), "front.png", pngHeader), caller)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to add school. Please try again.", decodeBody(t, rec)["error"])
}

func TestSniffImage_Rewinds(t *testing.T) {
	payload := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0xAB}, 2048)...)
	r := bytes.NewReader(payload)

	ct, err := sniffImage(r)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSniffImage_ShortFile(t *testing.T) {
	ct, err := sniffImage(bytes.NewReader([]byte("GIF89a")))
	require.NoError(t, err)
	assert.Equal(t, "image/gif", ct)
}
