package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/damiancxliew/web-forum/internal/core/domain"
	"github.com/damiancxliew/web-forum/internal/core/ports"
	"github.com/damiancxliew/web-forum/internal/metrics"
)

// ForumSync keeps local category/thread/comment collections consistent with
// the remote store.
//
// Ordering contract: collections hold entities in the order the server
// returned them, and newly created entities are appended at the end. The
// local order can therefore diverge from server order until the next full
// reload; that divergence is accepted, not masked.
//
// Every remote operation is tagged with the session identity id at issue
// time. If the id differs when the response resolves (say, the user logged
// out mid-flight), the result is discarded instead of written into state.
type ForumSync struct {
	gateway ports.Gateway
	epoch   func() int64
	log     zerolog.Logger

	mu               sync.Mutex
	categories       []domain.Category
	threads          []domain.Thread
	comments         []domain.Comment
	directory        map[int64]string
	selectedCategory int64
	selectedThread   int64
}

var _ ports.ForumService = (*ForumSync)(nil)

// NewForumSync builds a synchronizer. epoch supplies the current session
// identity id (0 when anonymous) and may be nil to disable the stale-response
// guard.
func NewForumSync(gateway ports.Gateway, epoch func() int64, log zerolog.Logger) *ForumSync {
	if epoch == nil {
		epoch = func() int64 { return 0 }
	}
	return &ForumSync{
		gateway:   gateway,
		epoch:     epoch,
		log:       log,
		directory: make(map[int64]string),
	}
}

// LoadCategories replaces the category collection with the server's. On any
// failure the prior collection is left untouched.
func (s *ForumSync) LoadCategories(ctx context.Context) error {
	issued := s.epoch()
	resp := s.gateway.Do(ctx, "get_categories", http.MethodGet, "", nil)
	if !resp.Success {
		s.log.Warn().Str("message", resp.Message).Msg("could not load categories")
		return remoteErr(resp)
	}
	var categories []domain.Category
	if err := json.Unmarshal(resp.Data, &categories); err != nil {
		s.log.Warn().Err(err).Msg("malformed category list")
		return decodeErr("categories")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return domain.ErrStaleResponse
	}
	s.categories = categories
	return nil
}

// LoadThreads replaces the thread collection with the server's.
func (s *ForumSync) LoadThreads(ctx context.Context) error {
	issued := s.epoch()
	resp := s.gateway.Do(ctx, "get_threads", http.MethodGet, "", nil)
	if !resp.Success {
		s.log.Warn().Str("message", resp.Message).Msg("could not load threads")
		return remoteErr(resp)
	}
	var threads []domain.Thread
	if err := json.Unmarshal(resp.Data, &threads); err != nil {
		s.log.Warn().Err(err).Msg("malformed thread list")
		return decodeErr("threads")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return domain.ErrStaleResponse
	}
	s.threads = threads
	return nil
}

// LoadComments replaces the comment collection with the server's.
func (s *ForumSync) LoadComments(ctx context.Context) error {
	issued := s.epoch()
	resp := s.gateway.Do(ctx, "get_comments", http.MethodGet, "", nil)
	if !resp.Success {
		s.log.Warn().Str("message", resp.Message).Msg("could not load comments")
		return remoteErr(resp)
	}
	var comments []domain.Comment
	if err := json.Unmarshal(resp.Data, &comments); err != nil {
		s.log.Warn().Err(err).Msg("malformed comment list")
		return decodeErr("comments")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return domain.ErrStaleResponse
	}
	s.comments = comments
	return nil
}

// LoadUserDirectory rebuilds the userId -> displayName cache wholesale.
func (s *ForumSync) LoadUserDirectory(ctx context.Context) error {
	issued := s.epoch()
	resp := s.gateway.Do(ctx, "get_users", http.MethodGet, "", nil)
	if !resp.Success {
		s.log.Warn().Str("message", resp.Message).Msg("could not load user directory")
		return remoteErr(resp)
	}
	var entries []domain.DirectoryEntry
	if err := json.Unmarshal(resp.Data, &entries); err != nil {
		s.log.Warn().Err(err).Msg("malformed user list")
		return decodeErr("users")
	}

	directory := make(map[int64]string, len(entries))
	for _, entry := range entries {
		directory[entry.ID] = entry.Username
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return domain.ErrStaleResponse
	}
	s.directory = directory
	return nil
}

// CreateCategory creates a category and appends the server-returned record.
// The new category is not selected automatically.
func (s *ForumSync) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrEmptyCategoryName
	}

	issued := s.epoch()
	payload := map[string]any{
		"name":       name,
		"created_at": time.Now().UTC(),
	}
	resp := s.gateway.Do(ctx, "create_category", http.MethodPost, "", payload)
	if !resp.Success {
		return nil, remoteErr(resp)
	}
	var category domain.Category
	if err := json.Unmarshal(resp.Data, &category); err != nil {
		s.log.Warn().Err(err).Msg("malformed created category")
		return nil, decodeErr("category")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return nil, domain.ErrStaleResponse
	}
	s.categories = append(s.categories, category)
	s.log.Info().Int64("category_id", category.ID).Str("name", category.Name).Msg("category created")
	return &category, nil
}

// CreateThread opens a thread in the given category. A zero CategoryID is
// rejected before any remote call: the caller must select a category first.
func (s *ForumSync) CreateThread(ctx context.Context, input ports.CreateThreadInput) (*domain.Thread, error) {
	if input.CategoryID == 0 {
		return nil, domain.ErrNoCategorySelected
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, domain.ErrEmptyContent
	}

	issued := s.epoch()
	now := time.Now().UTC()
	payload := map[string]any{
		"title":       input.Title,
		"content":     input.Content,
		"user_id":     input.AuthorID,
		"category_id": input.CategoryID,
		"created_at":  now,
		"updated_at":  now,
	}
	resp := s.gateway.Do(ctx, "create_thread", http.MethodPost, "", payload)
	if !resp.Success {
		return nil, remoteErr(resp)
	}
	var thread domain.Thread
	if err := json.Unmarshal(resp.Data, &thread); err != nil {
		s.log.Warn().Err(err).Msg("malformed created thread")
		return nil, decodeErr("thread")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return nil, domain.ErrStaleResponse
	}
	s.threads = append(s.threads, thread)
	s.log.Info().Int64("thread_id", thread.ID).Int64("category_id", thread.CategoryID).Msg("thread created")
	return &thread, nil
}

// CreateComment comments on the given thread. A zero ThreadID is rejected
// before any remote call: the caller must select a thread first.
func (s *ForumSync) CreateComment(ctx context.Context, input ports.CreateCommentInput) (*domain.Comment, error) {
	if input.ThreadID == 0 {
		return nil, domain.ErrNoThreadSelected
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, domain.ErrEmptyContent
	}

	issued := s.epoch()
	now := time.Now().UTC()
	payload := map[string]any{
		"content":    input.Content,
		"thread_id":  input.ThreadID,
		"user_id":    input.AuthorID,
		"created_at": now,
		"updated_at": now,
	}
	resp := s.gateway.Do(ctx, "create_comment", http.MethodPost, "", payload)
	if !resp.Success {
		return nil, remoteErr(resp)
	}
	var comment domain.Comment
	if err := json.Unmarshal(resp.Data, &comment); err != nil {
		s.log.Warn().Err(err).Msg("malformed created comment")
		return nil, decodeErr("comment")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return nil, domain.ErrStaleResponse
	}
	s.comments = append(s.comments, comment)
	s.log.Info().Int64("comment_id", comment.ID).Int64("thread_id", comment.ThreadID).Msg("comment created")
	return &comment, nil
}

// DeleteThread removes a thread locally only after the remote delete
// succeeds. Comments referencing the thread are left in place until the next
// reload; the server is responsible for cascading.
func (s *ForumSync) DeleteThread(ctx context.Context, threadID int64) error {
	issued := s.epoch()
	resp := s.gateway.Do(ctx, "delete_thread", http.MethodDelete, strconv.FormatInt(threadID, 10), nil)
	if !resp.Success {
		s.log.Warn().Int64("thread_id", threadID).Str("message", resp.Message).Msg("thread delete refused")
		return remoteErr(resp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return domain.ErrStaleResponse
	}
	kept := s.threads[:0]
	for _, thread := range s.threads {
		if thread.ID != threadID {
			kept = append(kept, thread)
		}
	}
	s.threads = kept
	if s.selectedThread == threadID {
		s.selectedThread = 0
	}
	s.log.Info().Int64("thread_id", threadID).Msg("thread deleted")
	return nil
}

// DeleteComment removes a comment locally only after the remote delete
// succeeds.
func (s *ForumSync) DeleteComment(ctx context.Context, commentID int64) error {
	issued := s.epoch()
	resp := s.gateway.Do(ctx, "delete_comment", http.MethodDelete, strconv.FormatInt(commentID, 10), nil)
	if !resp.Success {
		s.log.Warn().Int64("comment_id", commentID).Str("message", resp.Message).Msg("comment delete refused")
		return remoteErr(resp)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(issued) {
		return domain.ErrStaleResponse
	}
	kept := s.comments[:0]
	for _, comment := range s.comments {
		if comment.ID != commentID {
			kept = append(kept, comment)
		}
	}
	s.comments = kept
	s.log.Info().Int64("comment_id", commentID).Msg("comment deleted")
	return nil
}

// SelectCategory sets the browsing focus. Selecting a category resets the
// thread selection.
func (s *ForumSync) SelectCategory(categoryID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedCategory = categoryID
	s.selectedThread = 0
}

// SelectThread sets the open thread within the selected category.
func (s *ForumSync) SelectThread(threadID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedThread = threadID
}

// SelectedCategory returns the selected category id, or 0 when none.
func (s *ForumSync) SelectedCategory() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedCategory
}

// SelectedThread returns the open thread id, or 0 when none.
func (s *ForumSync) SelectedThread() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedThread
}

// Categories returns a copy of the category collection in server order.
func (s *ForumSync) Categories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// SelectedThreads returns the threads belonging to the selected category,
// in collection order. Nil when no category is selected.
func (s *ForumSync) SelectedThreads() []domain.Thread {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedCategory == 0 {
		return nil
	}
	var out []domain.Thread
	for _, thread := range s.threads {
		if thread.CategoryID == s.selectedCategory {
			out = append(out, thread)
		}
	}
	return out
}

// SelectedComments returns the comments belonging to the open thread, in
// collection order. Nil when no thread is selected.
func (s *ForumSync) SelectedComments() []domain.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selectedThread == 0 {
		return nil
	}
	var out []domain.Comment
	for _, comment := range s.comments {
		if comment.ThreadID == s.selectedThread {
			out = append(out, comment)
		}
	}
	return out
}

// AuthorName resolves a user id through the directory cache. The directory
// may lag behind newly created entities; a miss resolves to "".
func (s *ForumSync) AuthorName(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directory[userID]
}

// stale reports whether the session identity changed since the request was
// issued. Called with s.mu held.
func (s *ForumSync) stale(issued int64) bool {
	if s.epoch() == issued {
		return false
	}
	metrics.StaleResponsesTotal.Inc()
	s.log.Warn().Int64("issued_as", issued).Msg("discarding stale response")
	return true
}

func remoteErr(resp ports.Response) error {
	return fmt.Errorf("%w: %s", domain.ErrRemote, resp.Message)
}

func decodeErr(what string) error {
	return fmt.Errorf("%w: unexpected %s payload", domain.ErrRemote, what)
}
