package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/domains/blogs/be/repo"
	"github.com/inkpress/inkpress/platform/go/persistence"
)

type mockRepository struct {
	slugExistsFn         func(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	createFn             func(ctx context.Context, params persistence.CreateBlogParams) (persistence.Blog, error)
	listByOwnerFn        func(ctx context.Context, ownerID uuid.UUID) ([]persistence.Blog, error)
	getOwnedFn           func(ctx context.Context, ownerID, id uuid.UUID) (persistence.Blog, error)
	updateFn             func(ctx context.Context, ownerID, id uuid.UUID, params persistence.UpdateBlogParams) (persistence.Blog, error)
	deleteOwnedFn        func(ctx context.Context, ownerID, id uuid.UUID) error
	listPublishedFn      func(ctx context.Context) ([]persistence.BlogSummary, error)
	getPublishedBySlugFn func(ctx context.Context, slug string) (persistence.Blog, error)
}

func (m *mockRepository) SlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	if m.slugExistsFn == nil {
		panic("slugExistsFn not configured")
	}
	return m.slugExistsFn(ctx, slug, excludeID)
}

func (m *mockRepository) Create(ctx context.Context, params persistence.CreateBlogParams) (persistence.Blog, error) {
	if m.createFn == nil {
		panic("createFn not configured")
	}
	return m.createFn(ctx, params)
}

func (m *mockRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]persistence.Blog, error) {
	if m.listByOwnerFn == nil {
		panic("listByOwnerFn not configured")
	}
	return m.listByOwnerFn(ctx, ownerID)
}

func (m *mockRepository) GetOwned(ctx context.Context, ownerID, id uuid.UUID) (persistence.Blog, error) {
	if m.getOwnedFn == nil {
		panic("getOwnedFn not configured")
	}
	return m.getOwnedFn(ctx, ownerID, id)
}

func (m *mockRepository) Update(ctx context.Context, ownerID, id uuid.UUID, params persistence.UpdateBlogParams) (persistence.Blog, error) {
	if m.updateFn == nil {
		panic("updateFn not configured")
	}
	return m.updateFn(ctx, ownerID, id, params)
}

func (m *mockRepository) DeleteOwned(ctx context.Context, ownerID, id uuid.UUID) error {
	if m.deleteOwnedFn == nil {
		panic("deleteOwnedFn not configured")
	}
	return m.deleteOwnedFn(ctx, ownerID, id)
}

func (m *mockRepository) ListPublished(ctx context.Context) ([]persistence.BlogSummary, error) {
	if m.listPublishedFn == nil {
		panic("listPublishedFn not configured")
	}
	return m.listPublishedFn(ctx)
}

func (m *mockRepository) GetPublishedBySlug(ctx context.Context, slug string) (persistence.Blog, error) {
	if m.getPublishedBySlugFn == nil {
		panic("getPublishedBySlugFn not configured")
	}
	return m.getPublishedBySlugFn(ctx, slug)
}

func ptrString(s string) *string { return &s }

func ptrBool(b bool) *bool { return &b }

func TestCreateValidation(t *testing.T) {
	t.Parallel()

	svc := New(&mockRepository{})
	caller := uuid.New()

	_, err := svc.Create(context.Background(), caller, CreateInput{Content: "body"})
	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "title")

	_, err = svc.Create(context.Background(), caller, CreateInput{Title: "A title"})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "content")

	_, err = svc.Create(context.Background(), caller, CreateInput{Title: "   ", Content: "  "})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "title")
	require.Contains(t, validationErr.Fields, "content")
}

func TestCreateSuccess(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{
		Title:     "  Hello, World!  ",
		Excerpt:   " a short intro ",
		Content:   "full body",
		Tags:      persistence.TagText("React, JavaScript , backend"),
		Published: false,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, blog.ID)
	require.Equal(t, caller, blog.OwnerID)
	require.Equal(t, "Hello, World!", blog.Title)
	require.Equal(t, "hello-world", blog.Slug)
	require.Equal(t, "a short intro", blog.Excerpt)
	require.Equal(t, []string{"react", "javascript", "backend"}, blog.Tags)
	require.False(t, blog.Published)

	got, err := svc.Get(context.Background(), caller, blog.ID)
	require.NoError(t, err)
	require.Equal(t, blog.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), blog.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateExplicitSlugWins(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)

	blog, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Title:   "Some Long Title",
		Slug:    ptrString("Custom URL"),
		Content: "body",
	})
	require.NoError(t, err)
	require.Equal(t, "custom-url", blog.Slug)
}

func TestCreateSlugDisambiguation(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	first, err := svc.Create(context.Background(), caller, CreateInput{Title: "My Post", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, "my-post", first.Slug)

	second, err := svc.Create(context.Background(), caller, CreateInput{Title: "My Post", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, "my-post-1", second.Slug)

	third, err := svc.Create(context.Background(), caller, CreateInput{Title: "My Post", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, "my-post-2", third.Slug)
}

func TestCreateEmptySlugFallsBackToTimestamp(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)

	blog, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		Title:   "!!!",
		Content: "body",
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(blog.Slug, "blog-"), "slug %q", blog.Slug)
}

func TestCreateRetryCapExceeded(t *testing.T) {
	t.Parallel()

	repository := &mockRepository{
		slugExistsFn: func(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
			return true, nil
		},
	}
	svc := New(repository)

	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{Title: "Hot Title", Content: "body"})
	require.ErrorIs(t, err, ErrConflict)
}

func TestCreateRetriesOnInsertConflict(t *testing.T) {
	t.Parallel()

	attempts := 0
	repository := &mockRepository{
		slugExistsFn: func(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
			return false, nil
		},
		createFn: func(ctx context.Context, params persistence.CreateBlogParams) (persistence.Blog, error) {
			attempts++
			if attempts == 1 {
				// A concurrent writer won the race between check and insert.
				return persistence.Blog{}, persistence.ErrBlogConflict
			}
			return persistence.Blog{BlogID: params.BlogID, OwnerID: params.OwnerID, Title: params.Title, Slug: params.Slug, Content: params.Content, Tags: params.Tags}, nil
		},
	}
	svc := New(repository)

	blog, err := svc.Create(context.Background(), uuid.New(), CreateInput{Title: "Raced", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, 2, attempts)
	require.Equal(t, "raced", blog.Slug)
}

func TestListOwnedNewestFirst(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()
	other := uuid.New()

	oldest, err := svc.Create(context.Background(), caller, CreateInput{Title: "Oldest", Content: "body"})
	require.NoError(t, err)
	newest, err := svc.Create(context.Background(), caller, CreateInput{Title: "Newest", Content: "body"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), other, CreateInput{Title: "Foreign", Content: "body"})
	require.NoError(t, err)

	blogs, err := svc.List(context.Background(), caller)
	require.NoError(t, err)
	require.Len(t, blogs, 2)
	require.Equal(t, newest.ID, blogs[0].ID)
	require.Equal(t, oldest.ID, blogs[1].ID)
}

func TestUpdatePublishedOnlyFlipsPublished(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{
		Title:   "Stable Post",
		Content: "body",
		Tags:    persistence.TagList([]string{"go"}),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), caller, blog.ID, UpdateInput{Published: ptrBool(true)})
	require.NoError(t, err)
	require.True(t, updated.Published)
	require.Equal(t, blog.Title, updated.Title)
	require.Equal(t, blog.Slug, updated.Slug)
	require.Equal(t, blog.Content, updated.Content)
	require.Equal(t, blog.Tags, updated.Tags)
}

func TestUpdateTitleRederivesSlug(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{Title: "Old Title", Content: "body"})
	require.NoError(t, err)
	require.Equal(t, "old-title", blog.Slug)

	updated, err := svc.Update(context.Background(), caller, blog.ID, UpdateInput{Title: ptrString("New Title")})
	require.NoError(t, err)
	require.Equal(t, "New Title", updated.Title)
	require.Equal(t, "new-title", updated.Slug)
}

func TestUpdateWithoutSlugOrTitleKeepsSlug(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{Title: "Keep Me", Content: "body"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), caller, blog.ID, UpdateInput{Content: ptrString("rewritten body")})
	require.NoError(t, err)
	require.Equal(t, "keep-me", updated.Slug)
	require.Equal(t, "rewritten body", updated.Content)
}

func TestUpdateUnchangedTitleDoesNotCollideWithSelf(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{Title: "Same Title", Content: "body"})
	require.NoError(t, err)

	// Re-sending the same title must not grow a -1 suffix.
	updated, err := svc.Update(context.Background(), caller, blog.ID, UpdateInput{Title: ptrString("Same Title")})
	require.NoError(t, err)
	require.Equal(t, "same-title", updated.Slug)
}

func TestUpdateEmptySlugRegeneratesFromTitle(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{
		Title:   "Readable Title",
		Slug:    ptrString("opaque-handle"),
		Content: "body",
	})
	require.NoError(t, err)
	require.Equal(t, "opaque-handle", blog.Slug)

	updated, err := svc.Update(context.Background(), caller, blog.ID, UpdateInput{Slug: ptrString("")})
	require.NoError(t, err)
	require.Equal(t, "readable-title", updated.Slug)
}

func TestUpdateSlugCollisionDisambiguates(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	_, err := svc.Create(context.Background(), caller, CreateInput{Title: "Taken", Content: "body"})
	require.NoError(t, err)

	blog, err := svc.Create(context.Background(), caller, CreateInput{Title: "Different", Content: "body"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), caller, blog.ID, UpdateInput{Slug: ptrString("Taken")})
	require.NoError(t, err)
	require.Equal(t, "taken-1", updated.Slug)
}

func TestUpdateNotOwned(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{Title: "Mine", Content: "body"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), uuid.New(), blog.ID, UpdateInput{Published: ptrBool(true)})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateValidation(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{Title: "Valid", Content: "body"})
	require.NoError(t, err)

	var validationErr *ValidationError

	_, err = svc.Update(context.Background(), caller, blog.ID, UpdateInput{})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "payload")

	_, err = svc.Update(context.Background(), caller, blog.ID, UpdateInput{Title: ptrString("   ")})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "title")

	_, err = svc.Update(context.Background(), caller, blog.ID, UpdateInput{Content: ptrString("")})
	require.True(t, errors.As(err, &validationErr))
	require.Contains(t, validationErr.Fields, "content")
}

func TestDeleteScopedToOwner(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	blog, err := svc.Create(context.Background(), caller, CreateInput{Title: "Removable", Content: "body"})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), blog.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), caller, blog.ID))

	_, err = svc.Get(context.Background(), caller, blog.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListPublishedVisibility(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	_, err := svc.Create(context.Background(), caller, CreateInput{Title: "Draft", Content: "secret"})
	require.NoError(t, err)
	live, err := svc.Create(context.Background(), caller, CreateInput{Title: "Live", Content: "visible", Published: true})
	require.NoError(t, err)

	blogs, err := svc.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, blogs, 1)
	require.Equal(t, live.Slug, blogs[0].Slug)
}

func TestGetPublishedBySlug(t *testing.T) {
	t.Parallel()

	memory := repo.NewMemoryRepository()
	svc := New(memory)
	caller := uuid.New()

	draft, err := svc.Create(context.Background(), caller, CreateInput{Title: "Hidden", Content: "body"})
	require.NoError(t, err)
	live, err := svc.Create(context.Background(), caller, CreateInput{Title: "Shown", Content: "body", Published: true})
	require.NoError(t, err)

	blog, err := svc.GetPublishedBySlug(context.Background(), live.Slug)
	require.NoError(t, err)
	require.Equal(t, live.ID, blog.ID)
	require.Equal(t, "body", blog.Content)

	_, err = svc.GetPublishedBySlug(context.Background(), draft.Slug)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetPublishedBySlug(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRepositoryErrorsPassThrough(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection reset")
	repository := &mockRepository{
		listByOwnerFn: func(ctx context.Context, ownerID uuid.UUID) ([]persistence.Blog, error) {
			return nil, storeErr
		},
	}
	svc := New(repository)

	_, err := svc.List(context.Background(), uuid.New())
	require.ErrorIs(t, err, storeErr)
}
