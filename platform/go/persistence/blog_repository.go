package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const BlogsTable = "blogs"

// Blog represents a row in the blogs table.
type Blog struct {
	BlogID    uuid.UUID `db:"blog_id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"ownerId"`
	Title     string    `db:"title" json:"title"`
	Slug      string    `db:"slug" json:"slug"`
	Excerpt   string    `db:"excerpt" json:"excerpt"`
	Content   string    `db:"content" json:"content"`
	Tags      []string  `db:"tags" json:"tags"`
	Published bool      `db:"published" json:"published"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// BlogSummary is the public projection of a published blog: everything except
// the body content and the owner.
type BlogSummary struct {
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Excerpt   string    `json:"excerpt"`
	Tags      []string  `json:"tags"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	// ErrBlogNotFound indicates a missing blog record (or one owned by someone else).
	ErrBlogNotFound = errors.New("blog not found")
	// ErrBlogConflict indicates the unique slug index rejected a write.
	ErrBlogConflict = errors.New("blog conflict")
)

// BlogStore exposes persistence helpers for the blogs table.
type BlogStore struct {
	pool *pgxpool.Pool
}

// NewBlogStore returns a store instance bound to the provided pool.
func NewBlogStore(pool *pgxpool.Pool) (*BlogStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &BlogStore{pool: pool}, nil
}

// CreateBlogParams captures the fields required to insert a new blog record.
type CreateBlogParams struct {
	BlogID    uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Slug      string
	Excerpt   string
	Content   string
	Tags      []string
	Published bool
}

// CreateBlog inserts a new blog and returns the persisted record.
func (s *BlogStore) CreateBlog(ctx context.Context, params CreateBlogParams) (Blog, error) {
	if params.BlogID == uuid.Nil {
		return Blog{}, errors.New("blog id is required")
	}
	if params.OwnerID == uuid.Nil {
		return Blog{}, errors.New("owner id is required")
	}

	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        INSERT INTO %s (blog_id, owner_id, title, slug, excerpt, content, tags, published)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING blog_id, owner_id, title, slug, excerpt, content, tags, published, created_at, updated_at
    `, BlogsTable),
		params.BlogID,
		params.OwnerID,
		params.Title,
		params.Slug,
		params.Excerpt,
		params.Content,
		tags,
		params.Published,
	)

	blog, err := scanBlog(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Blog{}, ErrBlogConflict
		}
		return Blog{}, err
	}

	return blog, nil
}

// SlugExists reports whether any blog other than excludeID already uses the
// given slug. Pass uuid.Nil to check against every blog.
func (s *BlogStore) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1)`, BlogsTable)
	args := []any{slug}

	if excludeID != uuid.Nil {
		query = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE slug = $1 AND blog_id <> $2)`, BlogsTable)
		args = append(args, excludeID)
	}

	var exists bool
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}

	return exists, nil
}

// ListBlogsByOwner returns every blog owned by the given user, newest first.
func (s *BlogStore) ListBlogsByOwner(ctx context.Context, ownerID uuid.UUID) ([]Blog, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT blog_id, owner_id, title, slug, excerpt, content, tags, published, created_at, updated_at
        FROM %s
        WHERE owner_id = $1
        ORDER BY created_at DESC
    `, BlogsTable), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	return collectBlogs(rows)
}

// GetBlogOwned returns a single blog iff it belongs to the given owner.
func (s *BlogStore) GetBlogOwned(ctx context.Context, ownerID, id uuid.UUID) (Blog, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT blog_id, owner_id, title, slug, excerpt, content, tags, published, created_at, updated_at
        FROM %s WHERE blog_id = $1 AND owner_id = $2
    `, BlogsTable), id, ownerID)

	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrBlogNotFound
		}
		return Blog{}, err
	}

	return blog, nil
}

// UpdateBlogParams represents the owner-editable fields; nil means untouched.
type UpdateBlogParams struct {
	Title     *string
	Slug      *string
	Excerpt   *string
	Content   *string
	Tags      *[]string
	Published *bool
}

// UpdateBlog applies the provided fields to an owned blog and returns the
// updated record.
func (s *BlogStore) UpdateBlog(ctx context.Context, ownerID, id uuid.UUID, params UpdateBlogParams) (Blog, error) {
	setParts := []string{}
	var args []any

	appendSet := func(column string, value any) {
		args = append(args, value)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Title != nil {
		appendSet("title", *params.Title)
	}
	if params.Slug != nil {
		appendSet("slug", *params.Slug)
	}
	if params.Excerpt != nil {
		appendSet("excerpt", *params.Excerpt)
	}
	if params.Content != nil {
		appendSet("content", *params.Content)
	}
	if params.Tags != nil {
		tags := *params.Tags
		if tags == nil {
			tags = []string{}
		}
		appendSet("tags", tags)
	}
	if params.Published != nil {
		appendSet("published", *params.Published)
	}

	if len(setParts) == 0 {
		return Blog{}, errors.New("no fields to update")
	}

	args = append(args, id, ownerID)

	query := fmt.Sprintf(`
        UPDATE %s
        SET %s, updated_at = NOW()
        WHERE blog_id = $%d AND owner_id = $%d
        RETURNING blog_id, owner_id, title, slug, excerpt, content, tags, published, created_at, updated_at
    `, BlogsTable, strings.Join(setParts, ", "), len(args)-1, len(args))

	row := s.pool.QueryRow(ctx, query, args...)

	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrBlogNotFound
		}
		if isUniqueViolation(err) {
			return Blog{}, ErrBlogConflict
		}
		return Blog{}, err
	}

	return blog, nil
}

// DeleteBlogOwned removes a blog iff it belongs to the given owner.
func (s *BlogStore) DeleteBlogOwned(ctx context.Context, ownerID, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrBlogNotFound
	}

	tag, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE blog_id = $1 AND owner_id = $2`, BlogsTable), id, ownerID)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrBlogNotFound
	}

	return nil
}

// ListPublished returns every published blog projected to its public fields,
// newest first.
func (s *BlogStore) ListPublished(ctx context.Context) ([]BlogSummary, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
        SELECT title, slug, excerpt, tags, published, created_at, updated_at
        FROM %s
        WHERE published = TRUE
        ORDER BY created_at DESC
    `, BlogsTable))
	if err != nil {
		return nil, fmt.Errorf("list published blogs: %w", err)
	}
	defer rows.Close()

	summaries := make([]BlogSummary, 0)
	for rows.Next() {
		var summary BlogSummary
		if err := rows.Scan(
			&summary.Title,
			&summary.Slug,
			&summary.Excerpt,
			&summary.Tags,
			&summary.Published,
			&summary.CreatedAt,
			&summary.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan published blog: %w", err)
		}
		if summary.Tags == nil {
			summary.Tags = []string{}
		}
		summaries = append(summaries, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate published blogs: %w", err)
	}

	return summaries, nil
}

// GetPublishedBySlug returns the full record of a published blog.
func (s *BlogStore) GetPublishedBySlug(ctx context.Context, slug string) (Blog, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
        SELECT blog_id, owner_id, title, slug, excerpt, content, tags, published, created_at, updated_at
        FROM %s WHERE slug = $1 AND published = TRUE
    `, BlogsTable), slug)

	blog, err := scanBlog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Blog{}, ErrBlogNotFound
		}
		return Blog{}, err
	}

	return blog, nil
}

func collectBlogs(rows pgx.Rows) ([]Blog, error) {
	blogs := make([]Blog, 0)
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blogs: %w", err)
	}

	return blogs, nil
}

func scanBlog(row pgx.Row) (Blog, error) {
	var blog Blog

	if err := row.Scan(
		&blog.BlogID,
		&blog.OwnerID,
		&blog.Title,
		&blog.Slug,
		&blog.Excerpt,
		&blog.Content,
		&blog.Tags,
		&blog.Published,
		&blog.CreatedAt,
		&blog.UpdatedAt,
	); err != nil {
		return Blog{}, err
	}

	if blog.Tags == nil {
		blog.Tags = []string{}
	}

	return blog, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
