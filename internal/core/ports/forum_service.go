package ports

import (
	"context"

	"github.com/damiancxliew/web-forum/internal/core/domain"
)

// CreateThreadInput carries all data needed to open a new thread.
type CreateThreadInput struct {
	Title      string
	Content    string
	CategoryID int64
	AuthorID   int64
}

// CreateCommentInput carries all data needed to comment on a thread.
type CreateCommentInput struct {
	Content  string
	ThreadID int64
	AuthorID int64
}

// ForumService keeps local category/thread/comment collections consistent
// with the remote store and supports hierarchical browsing.
//
// Load* calls replace the matching collection wholesale; on failure the
// prior collection is left untouched. Create/Delete calls mutate local state
// only after the remote operation succeeds.
type ForumService interface {
	LoadCategories(ctx context.Context) error
	LoadThreads(ctx context.Context) error
	LoadComments(ctx context.Context) error
	LoadUserDirectory(ctx context.Context) error

	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	CreateThread(ctx context.Context, input CreateThreadInput) (*domain.Thread, error)
	CreateComment(ctx context.Context, input CreateCommentInput) (*domain.Comment, error)
	DeleteThread(ctx context.Context, threadID int64) error
	DeleteComment(ctx context.Context, commentID int64) error

	SelectCategory(categoryID int64)
	SelectThread(threadID int64)
	SelectedCategory() int64
	SelectedThread() int64
	Categories() []domain.Category
	SelectedThreads() []domain.Thread
	SelectedComments() []domain.Comment
	AuthorName(userID int64) string
}
