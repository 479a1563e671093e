package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/inkpress/inkpress/platform/go/persistence"
)

// Repository defines the persistence operations required by the blogs service.
// Owner-scoped reads and writes never reveal whether a blog exists under a
// different owner.
type Repository interface {
	SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, params persistence.CreateBlogParams) (persistence.Blog, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]persistence.Blog, error)
	GetOwned(ctx context.Context, ownerID, id uuid.UUID) (persistence.Blog, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, params persistence.UpdateBlogParams) (persistence.Blog, error)
	DeleteOwned(ctx context.Context, ownerID, id uuid.UUID) error
	ListPublished(ctx context.Context) ([]persistence.BlogSummary, error)
	GetPublishedBySlug(ctx context.Context, slug string) (persistence.Blog, error)
}

type postgresRepository struct {
	store *persistence.BlogStore
}

// NewPostgresRepository constructs a repository backed by the shared persistence layer.
func NewPostgresRepository(store *persistence.BlogStore) Repository {
	if store == nil {
		panic("blog store is required")
	}
	return &postgresRepository{store: store}
}

func (r *postgresRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	return r.store.SlugExists(ctx, slug, excludeID)
}

func (r *postgresRepository) Create(ctx context.Context, params persistence.CreateBlogParams) (persistence.Blog, error) {
	return r.store.CreateBlog(ctx, params)
}

func (r *postgresRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]persistence.Blog, error) {
	return r.store.ListBlogsByOwner(ctx, ownerID)
}

func (r *postgresRepository) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (persistence.Blog, error) {
	return r.store.GetBlogOwned(ctx, ownerID, id)
}

func (r *postgresRepository) Update(ctx context.Context, ownerID, id uuid.UUID, params persistence.UpdateBlogParams) (persistence.Blog, error) {
	return r.store.UpdateBlog(ctx, ownerID, id, params)
}

func (r *postgresRepository) DeleteOwned(ctx context.Context, ownerID, id uuid.UUID) error {
	return r.store.DeleteBlogOwned(ctx, ownerID, id)
}

func (r *postgresRepository) ListPublished(ctx context.Context) ([]persistence.BlogSummary, error) {
	return r.store.ListPublished(ctx)
}

func (r *postgresRepository) GetPublishedBySlug(ctx context.Context, slug string) (persistence.Blog, error) {
	return r.store.GetPublishedBySlug(ctx, slug)
}
