package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyyield/skyyield/internal/domain"
	"github.com/skyyield/skyyield/internal/domain/mocks"
)

func newBlogService(ctrl *gomock.Controller) (*BlogService, *mocks.MockBlogRepository) {
	repo := mocks.NewMockBlogRepository(ctrl)
	return NewBlogService(repo, newTestLogger(ctrl)), repo
}

func TestBlogServiceCreate(t *testing.T) {
	t.Run("SlugDerivedFromTitle", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, repo := newBlogService(ctrl)

		repo.EXPECT().GetBySlug(gomock.Any(), "rooftop-coverage-in-2026").
			Return(nil, &domain.ErrBlogPostNotFound{Slug: "rooftop-coverage-in-2026"})
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, post *domain.BlogPost) error {
				post.ID = "post-1"
				assert.Equal(t, domain.BlogStatusDraft, post.Status)
				assert.Equal(t, "rooftop-coverage-in-2026", post.Slug)
				assert.Equal(t, "u-1", post.AuthorID)
				return nil
			})

		post, err := svc.Create(context.Background(), "u-1", &domain.CreateBlogPostRequest{
			Title:   "Rooftop Coverage in 2026!",
			Content: "Wireless coverage economics for venue owners.",
		})
		require.NoError(t, err)
		assert.Equal(t, "post-1", post.ID)
		assert.Nil(t, post.PublishedAt)
	})

	t.Run("DuplicateSlugRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, repo := newBlogService(ctrl)

		repo.EXPECT().GetBySlug(gomock.Any(), "welcome").
			Return(&domain.BlogPost{ID: "post-1", Slug: "welcome"}, nil)

		_, err := svc.Create(context.Background(), "u-1", &domain.CreateBlogPostRequest{
			Slug:    "welcome",
			Title:   "Welcome",
			Content: "Hello.",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("MissingContentRejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, _ := newBlogService(ctrl)

		_, err := svc.Create(context.Background(), "u-1", &domain.CreateBlogPostRequest{Title: "No Body"})
		assert.Error(t, err)
	})
}

func TestBlogServiceGetPublishedBySlug(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, repo := newBlogService(ctrl)

	t.Run("PublishedPost", func(t *testing.T) {
		repo.EXPECT().GetBySlug(gomock.Any(), "welcome").
			Return(&domain.BlogPost{ID: "post-1", Slug: "welcome", Status: domain.BlogStatusPublished}, nil)

		post, err := svc.GetPublishedBySlug(context.Background(), "welcome")
		require.NoError(t, err)
		assert.Equal(t, "post-1", post.ID)
	})

	t.Run("DraftBehavesAsNotFound", func(t *testing.T) {
		repo.EXPECT().GetBySlug(gomock.Any(), "draft-post").
			Return(&domain.BlogPost{ID: "post-2", Slug: "draft-post", Status: domain.BlogStatusDraft}, nil)

		_, err := svc.GetPublishedBySlug(context.Background(), "draft-post")
		var notFound *domain.ErrBlogPostNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "draft-post", notFound.Slug)
	})
}

func TestBlogServiceUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, repo := newBlogService(ctrl)

	title := "Updated Title"
	repo.EXPECT().GetByID(gomock.Any(), "post-1").Return(&domain.BlogPost{
		ID:      "post-1",
		Slug:    "welcome",
		Title:   "Welcome",
		Content: "Hello.",
	}, nil)
	repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, post *domain.BlogPost) error {
			assert.Equal(t, "Updated Title", post.Title)
			assert.Equal(t, "Hello.", post.Content)
			assert.Equal(t, "welcome", post.Slug)
			return nil
		})

	post, err := svc.Update(context.Background(), &domain.UpdateBlogPostRequest{ID: "post-1", Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Updated Title", post.Title)
}

func TestBlogServicePublish(t *testing.T) {
	t.Run("StampsPublicationTime", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, repo := newBlogService(ctrl)

		repo.EXPECT().GetByID(gomock.Any(), "post-1").
			Return(&domain.BlogPost{ID: "post-1", Status: domain.BlogStatusDraft}, nil)
		repo.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, post *domain.BlogPost) error {
				assert.Equal(t, domain.BlogStatusPublished, post.Status)
				require.NotNil(t, post.PublishedAt)
				assert.WithinDuration(t, time.Now().UTC(), *post.PublishedAt, time.Minute)
				return nil
			})

		post, err := svc.Publish(context.Background(), "post-1")
		require.NoError(t, err)
		assert.Equal(t, domain.BlogStatusPublished, post.Status)
	})

	t.Run("IdempotentOnPublishedPost", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		svc, repo := newBlogService(ctrl)

		publishedAt := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
		repo.EXPECT().GetByID(gomock.Any(), "post-1").Return(&domain.BlogPost{
			ID:          "post-1",
			Status:      domain.BlogStatusPublished,
			PublishedAt: &publishedAt,
		}, nil)

		post, err := svc.Publish(context.Background(), "post-1")
		require.NoError(t, err)
		assert.Equal(t, publishedAt, *post.PublishedAt)
	})
}

func TestBlogServiceList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, repo := newBlogService(ctrl)

	repo.EXPECT().List(gomock.Any(), domain.BlogStatusPublished, 20, 0).
		Return([]*domain.BlogPost{{ID: "post-1"}}, nil)

	posts, err := svc.ListPublished(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = svc.List(context.Background(), "archived", 10, 0)
	assert.Error(t, err)
}

func TestBlogServiceStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	svc, repo := newBlogService(ctrl)

	svc.Stop()
	assert.NotPanics(t, svc.Stop)

	// stopping the sweep does not disable the cache itself
	repo.EXPECT().GetBySlug(gomock.Any(), "after-stop").Return(&domain.BlogPost{
		ID:     "post-9",
		Slug:   "after-stop",
		Status: domain.BlogStatusPublished,
	}, nil)

	post, err := svc.GetPublishedBySlug(context.Background(), "after-stop")
	require.NoError(t, err)
	assert.Equal(t, "post-9", post.ID)
}
