package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkpress/inkpress/domains/blogs/be/repo"
	"github.com/inkpress/inkpress/platform/go/persistence"
)

// FieldErrors maps request fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the input payload is invalid.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	return "validation error"
}

// Domain sentinel errors.
var (
	ErrNotFound = errors.New("blog not found")
	ErrConflict = errors.New("blog conflict")
)

// Slug disambiguation gives up after this many candidates so a pathological
// collision storm cannot loop forever.
const maxSlugCandidates = 10000

// Concurrent writers can still race the existence pre-check; the unique index
// catches that, and the write is re-resolved this many times before failing.
const maxConflictRetries = 3

// Blog represents the domain view of a blog record.
type Blog struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Tags      []string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PublicBlog is the projection served on the public list surface: the body
// content and owner are omitted.
type PublicBlog struct {
	Title     string
	Slug      string
	Excerpt   string
	Tags      []string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput represents the payload required to create a new blog.
type CreateInput struct {
	Title     string
	Slug      *string
	Excerpt   string
	Content   string
	Tags      persistence.TagInput
	Published bool
}

// UpdateInput encapsulates the owner-editable fields. A nil field was absent
// from the request and leaves the stored value untouched; a present Slug (even
// empty, meaning "regenerate from the title") or a changed Title triggers slug
// re-resolution.
type UpdateInput struct {
	Title     *string
	Slug      *string
	Excerpt   *string
	Content   *string
	Tags      *persistence.TagInput
	Published *bool
}

// Service defines the business operations for the blogs domain. Owner-scoped
// operations take the authenticated caller id; the two published-read
// operations serve anonymous visitors.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateInput) (Blog, error)
	List(ctx context.Context, callerID uuid.UUID) ([]Blog, error)
	Get(ctx context.Context, callerID, id uuid.UUID) (Blog, error)
	Update(ctx context.Context, callerID, id uuid.UUID, input UpdateInput) (Blog, error)
	Delete(ctx context.Context, callerID, id uuid.UUID) error
	ListPublished(ctx context.Context) ([]PublicBlog, error)
	GetPublishedBySlug(ctx context.Context, slug string) (Blog, error)
}

type service struct {
	repo repo.Repository
	now  func() time.Time
}

// New constructs a blogs Service instance backed by the provided repository.
func New(r repo.Repository) Service {
	if r == nil {
		panic("blogs repository is required")
	}
	return &service{repo: r, now: time.Now}
}

func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateInput) (Blog, error) {
	if callerID == uuid.Nil {
		return Blog{}, ErrNotFound
	}

	fieldErrors := FieldErrors{}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		fieldErrors.add("title", "title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		fieldErrors.add("content", "content is required")
	}

	if len(fieldErrors) > 0 {
		return Blog{}, &ValidationError{Fields: fieldErrors}
	}

	desired := slugSource(input.Slug, title)

	var record persistence.Blog
	for attempt := 0; ; attempt++ {
		slug, err := s.resolveUniqueSlug(ctx, desired, uuid.Nil)
		if err != nil {
			return Blog{}, err
		}

		record, err = s.repo.Create(ctx, persistence.CreateBlogParams{
			BlogID:    uuid.New(),
			OwnerID:   callerID,
			Title:     title,
			Slug:      slug,
			Excerpt:   strings.TrimSpace(input.Excerpt),
			Content:   input.Content,
			Tags:      persistence.NormalizeTags(input.Tags),
			Published: input.Published,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, persistence.ErrBlogConflict) || attempt >= maxConflictRetries {
			return Blog{}, mapPersistenceError(err)
		}
	}

	return mapBlog(record), nil
}

func (s *service) List(ctx context.Context, callerID uuid.UUID) ([]Blog, error) {
	if callerID == uuid.Nil {
		return nil, ErrNotFound
	}

	records, err := s.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, err
	}

	blogs := make([]Blog, 0, len(records))
	for _, record := range records {
		blogs = append(blogs, mapBlog(record))
	}
	return blogs, nil
}

func (s *service) Get(ctx context.Context, callerID, id uuid.UUID) (Blog, error) {
	if callerID == uuid.Nil || id == uuid.Nil {
		return Blog{}, ErrNotFound
	}

	record, err := s.repo.GetOwned(ctx, callerID, id)
	if err != nil {
		return Blog{}, mapPersistenceError(err)
	}
	return mapBlog(record), nil
}

func (s *service) Update(ctx context.Context, callerID, id uuid.UUID, input UpdateInput) (Blog, error) {
	if callerID == uuid.Nil || id == uuid.Nil {
		return Blog{}, ErrNotFound
	}

	current, err := s.repo.GetOwned(ctx, callerID, id)
	if err != nil {
		return Blog{}, mapPersistenceError(err)
	}

	params, validationErr := buildUpdateParams(input)
	if validationErr != nil {
		return Blog{}, validationErr
	}

	// The slug is re-resolved only when the request names it explicitly (even
	// empty, meaning "regenerate from the title") or changes the title.
	// Regenerating on every update would silently rewrite stable URLs.
	resolveSlug := input.Slug != nil || params.Title != nil
	if resolveSlug {
		title := current.Title
		if params.Title != nil {
			title = *params.Title
		}
		desired := slugSource(input.Slug, title)

		slug, slugErr := s.resolveUniqueSlug(ctx, desired, id)
		if slugErr != nil {
			return Blog{}, slugErr
		}
		params.Slug = &slug
	}

	var record persistence.Blog
	for attempt := 0; ; attempt++ {
		record, err = s.repo.Update(ctx, callerID, id, params)
		if err == nil {
			break
		}
		if !errors.Is(err, persistence.ErrBlogConflict) || !resolveSlug || attempt >= maxConflictRetries {
			return Blog{}, mapPersistenceError(err)
		}

		title := current.Title
		if params.Title != nil {
			title = *params.Title
		}
		slug, slugErr := s.resolveUniqueSlug(ctx, slugSource(input.Slug, title), id)
		if slugErr != nil {
			return Blog{}, slugErr
		}
		params.Slug = &slug
	}

	return mapBlog(record), nil
}

func (s *service) Delete(ctx context.Context, callerID, id uuid.UUID) error {
	if callerID == uuid.Nil || id == uuid.Nil {
		return ErrNotFound
	}

	if err := s.repo.DeleteOwned(ctx, callerID, id); err != nil {
		return mapPersistenceError(err)
	}
	return nil
}

func (s *service) ListPublished(ctx context.Context) ([]PublicBlog, error) {
	summaries, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	blogs := make([]PublicBlog, 0, len(summaries))
	for _, summary := range summaries {
		blogs = append(blogs, PublicBlog{
			Title:     summary.Title,
			Slug:      summary.Slug,
			Excerpt:   summary.Excerpt,
			Tags:      summary.Tags,
			Published: summary.Published,
			CreatedAt: summary.CreatedAt,
			UpdatedAt: summary.UpdatedAt,
		})
	}
	return blogs, nil
}

func (s *service) GetPublishedBySlug(ctx context.Context, slug string) (Blog, error) {
	if strings.TrimSpace(slug) == "" {
		return Blog{}, ErrNotFound
	}

	record, err := s.repo.GetPublishedBySlug(ctx, slug)
	if err != nil {
		return Blog{}, mapPersistenceError(err)
	}
	return mapBlog(record), nil
}

// resolveUniqueSlug finds the first unused slug derived from desired,
// appending -1, -2, ... on collisions. Blogs identified by excludeID are
// ignored so edits never collide with the record being edited. An empty
// desired slug falls back to a time-based token.
func (s *service) resolveUniqueSlug(ctx context.Context, desired string, excludeID uuid.UUID) (string, error) {
	base := desired
	if base == "" {
		base = fmt.Sprintf("blog-%d", s.now().UnixMilli())
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		exists, err := s.repo.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		if suffix > maxSlugCandidates {
			return "", ErrConflict
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

// slugSource picks the base text for slug derivation: an explicitly supplied
// non-empty slug wins, otherwise the title is used.
func slugSource(slug *string, title string) string {
	if slug != nil {
		if normalized := persistence.NormalizeSlug(*slug); normalized != "" {
			return normalized
		}
	}
	return persistence.NormalizeSlug(title)
}

func buildUpdateParams(input UpdateInput) (persistence.UpdateBlogParams, error) {
	fieldErrors := FieldErrors{}
	params := persistence.UpdateBlogParams{}
	fieldsSet := 0

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			fieldErrors.add("title", "title cannot be empty")
		} else {
			params.Title = &title
			fieldsSet++
		}
	}

	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			fieldErrors.add("content", "content cannot be empty")
		} else {
			params.Content = input.Content
			fieldsSet++
		}
	}

	if input.Excerpt != nil {
		excerpt := strings.TrimSpace(*input.Excerpt)
		params.Excerpt = &excerpt
		fieldsSet++
	}

	if input.Tags != nil {
		tags := persistence.NormalizeTags(*input.Tags)
		params.Tags = &tags
		fieldsSet++
	}

	if input.Published != nil {
		params.Published = input.Published
		fieldsSet++
	}

	if input.Slug != nil {
		fieldsSet++
	}

	if fieldsSet == 0 {
		fieldErrors.add("payload", "at least one field must be provided")
	}

	if len(fieldErrors) > 0 {
		return persistence.UpdateBlogParams{}, &ValidationError{Fields: fieldErrors}
	}

	return params, nil
}

func mapBlog(record persistence.Blog) Blog {
	return Blog{
		ID:        record.BlogID,
		OwnerID:   record.OwnerID,
		Title:     record.Title,
		Slug:      record.Slug,
		Excerpt:   record.Excerpt,
		Content:   record.Content,
		Tags:      record.Tags,
		Published: record.Published,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func mapPersistenceError(err error) error {
	switch {
	case errors.Is(err, persistence.ErrBlogNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrBlogConflict):
		return ErrConflict
	default:
		return err
	}
}

func (f FieldErrors) add(field, message string) {
	if f == nil {
		return
	}
	f[field] = append(f[field], message)
}
