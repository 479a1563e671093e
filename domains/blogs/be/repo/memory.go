package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkpress/inkpress/platform/go/persistence"
)

// MemoryRepository is a simple in-memory implementation suitable for tests
// and early development. It enforces the same slug uniqueness the postgres
// unique index provides.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]memoryRecord
	seq  int
}

type memoryRecord struct {
	blog persistence.Blog
	seq  int
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[uuid.UUID]memoryRecord)}
}

func (r *MemoryRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, record := range r.byID {
		if record.blog.Slug == slug && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryRepository) Create(ctx context.Context, params persistence.CreateBlogParams) (persistence.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, record := range r.byID {
		if record.blog.Slug == params.Slug {
			return persistence.Blog{}, persistence.ErrBlogConflict
		}
	}

	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now().UTC()
	blog := persistence.Blog{
		BlogID:    params.BlogID,
		OwnerID:   params.OwnerID,
		Title:     params.Title,
		Slug:      params.Slug,
		Excerpt:   params.Excerpt,
		Content:   params.Content,
		Tags:      tags,
		Published: params.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}

	r.seq++
	r.byID[blog.BlogID] = memoryRecord{blog: blog, seq: r.seq}
	return blog, nil
}

func (r *MemoryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]persistence.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]memoryRecord, 0, len(r.byID))
	for _, record := range r.byID {
		if record.blog.OwnerID == ownerID {
			records = append(records, record)
		}
	}

	sortNewestFirst(records)

	blogs := make([]persistence.Blog, 0, len(records))
	for _, record := range records {
		blogs = append(blogs, record.blog)
	}
	return blogs, nil
}

func (r *MemoryRepository) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (persistence.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byID[id]
	if !ok || record.blog.OwnerID != ownerID {
		return persistence.Blog{}, persistence.ErrBlogNotFound
	}
	return record.blog, nil
}

func (r *MemoryRepository) Update(ctx context.Context, ownerID, id uuid.UUID, params persistence.UpdateBlogParams) (persistence.Blog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok || record.blog.OwnerID != ownerID {
		return persistence.Blog{}, persistence.ErrBlogNotFound
	}

	blog := record.blog

	if params.Slug != nil && *params.Slug != blog.Slug {
		for otherID, other := range r.byID {
			if other.blog.Slug == *params.Slug && otherID != id {
				return persistence.Blog{}, persistence.ErrBlogConflict
			}
		}
	}

	if params.Title != nil {
		blog.Title = *params.Title
	}
	if params.Slug != nil {
		blog.Slug = *params.Slug
	}
	if params.Excerpt != nil {
		blog.Excerpt = *params.Excerpt
	}
	if params.Content != nil {
		blog.Content = *params.Content
	}
	if params.Tags != nil {
		tags := *params.Tags
		if tags == nil {
			tags = []string{}
		}
		blog.Tags = tags
	}
	if params.Published != nil {
		blog.Published = *params.Published
	}

	blog.UpdatedAt = time.Now().UTC()
	record.blog = blog
	r.byID[id] = record
	return blog, nil
}

func (r *MemoryRepository) DeleteOwned(ctx context.Context, ownerID, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.byID[id]
	if !ok || record.blog.OwnerID != ownerID {
		return persistence.ErrBlogNotFound
	}

	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) ListPublished(ctx context.Context) ([]persistence.BlogSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]memoryRecord, 0, len(r.byID))
	for _, record := range r.byID {
		if record.blog.Published {
			records = append(records, record)
		}
	}

	sortNewestFirst(records)

	summaries := make([]persistence.BlogSummary, 0, len(records))
	for _, record := range records {
		blog := record.blog
		summaries = append(summaries, persistence.BlogSummary{
			Title:     blog.Title,
			Slug:      blog.Slug,
			Excerpt:   blog.Excerpt,
			Tags:      blog.Tags,
			Published: blog.Published,
			CreatedAt: blog.CreatedAt,
			UpdatedAt: blog.UpdatedAt,
		})
	}
	return summaries, nil
}

func (r *MemoryRepository) GetPublishedBySlug(ctx context.Context, slug string) (persistence.Blog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.byID {
		if record.blog.Slug == slug && record.blog.Published {
			return record.blog, nil
		}
	}
	return persistence.Blog{}, persistence.ErrBlogNotFound
}

// sortNewestFirst orders by creation time descending, breaking ties with the
// insertion sequence so rapid inserts keep a stable order.
func sortNewestFirst(records []memoryRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].blog.CreatedAt.Equal(records[j].blog.CreatedAt) {
			return records[i].seq > records[j].seq
		}
		return records[i].blog.CreatedAt.After(records[j].blog.CreatedAt)
	})
}
