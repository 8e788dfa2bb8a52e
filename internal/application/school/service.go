package school

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/school-directory/internal/domain"
	"github.com/school-directory/internal/pkg/id"
)

// allowedImageTypes maps accepted image content types to the extension used in the object key.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Repository persists school rows.
type Repository interface {
	Put(ctx context.Context, s *domain.School) error
	Get(ctx context.Context, schoolID string) (*domain.School, error)
	List(ctx context.Context) ([]domain.School, error)
	ListByCreator(ctx context.Context, email string) ([]domain.School, error)
}

// ObjectStore holds uploaded images.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type CreateInput struct {
	Name    string
	Address string
	City    string
	State   string
	Contact string
	EmailID string

	Image            io.Reader
	ImageName        string
	ImageContentType string

	CreatedBy domain.Identity
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*domain.School, error)
	Get(ctx context.Context, schoolID string) (*domain.School, error)
	List(ctx context.Context) ([]domain.School, error)
	ListByCreator(ctx context.Context, email string) ([]domain.School, error)
}

type service struct {
	repo  Repository
	store ObjectStore
	now   func() time.Time
}

func NewService(repo Repository, store ObjectStore) Service {
	return &service{repo: repo, store: store, now: time.Now}
}

// Create uploads the image then stores the row. If the row cannot be
// stored the uploaded image is removed again.
func (s *service) Create(ctx context.Context, in CreateInput) (*domain.School, error) {
	if in.CreatedBy.Email == "" {
		return nil, fmt.Errorf("missing creator: %w", domain.ErrUnauthorized)
	}
	ext, ok := allowedImageTypes[strings.ToLower(in.ImageContentType)]
	if !ok {
		return nil, fmt.Errorf("unsupported image type %q: %w", in.ImageContentType, domain.ErrBadRequest)
	}

	schoolID := id.New()
	key := fmt.Sprintf("schools/%s/%s", schoolID, imageFilename(in.ImageName, ext))
	url, err := s.store.Upload(ctx, key, in.Image, in.ImageContentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	sc := &domain.School{
		SchoolID:  schoolID,
		Name:      strings.TrimSpace(in.Name),
		Address:   strings.TrimSpace(in.Address),
		City:      strings.TrimSpace(in.City),
		State:     strings.TrimSpace(in.State),
		Contact:   in.Contact,
		Image:     url,
		ImageKey:  key,
		EmailID:   in.EmailID,
		CreatedBy: in.CreatedBy.Email,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Put(ctx, sc); err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to remove orphaned school image", "key", key, "err", delErr)
		}
		return nil, err
	}
	slog.InfoContext(ctx, "school created", "school_id", schoolID, "created_by", sc.CreatedBy)
	return sc, nil
}

func (s *service) Get(ctx context.Context, schoolID string) (*domain.School, error) {
	return s.repo.Get(ctx, schoolID)
}

func (s *service) List(ctx context.Context) ([]domain.School, error) {
	return s.repo.List(ctx)
}

func (s *service) ListByCreator(ctx context.Context, email string) ([]domain.School, error) {
	return s.repo.ListByCreator(ctx, email)
}

// imageFilename strips directory components and keeps only safe characters
// (alphanumeric, dot, dash, underscore) so the object key cannot be steered.
// The extension always matches the declared content type.
func imageFilename(name, ext string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 || base == "." || base == "/" {
		return "image" + ext
	}
	return b.String() + ext
}
