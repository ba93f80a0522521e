package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/policy"
	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
)

// PostRepository defines the post storage operations
type PostRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Search(ctx context.Context, phrase string, filter repositories.SearchFilter, limit, offset int) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, id int64, title string, text *string) (*models.Post, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepository defines the comment storage operations
type CommentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// MarkdownRenderer converts Markdown submissions to sanitized HTML for
// storage, and stored HTML back to Markdown for the edit form.
type MarkdownRenderer interface {
	ToHTML(source string) (string, error)
	ToMarkdown(htmlSource string) (string, error)
}

// PostWithComments bundles a post and its comment thread for the view page.
type PostWithComments struct {
	Post     *models.Post
	Comments []*models.Comment
}

// PostService handles post and comment lifecycle plus content moderation
type PostService struct {
	posts    PostRepository
	comments CommentRepository
	events   ModerationEventRepository
	renderer MarkdownRenderer
	logger   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(posts PostRepository, comments CommentRepository, events ModerationEventRepository, renderer MarkdownRenderer, logger *slog.Logger) *PostService {
	return &PostService{
		posts:    posts,
		comments: comments,
		events:   events,
		renderer: renderer,
		logger:   logger,
	}
}

// CreatePost renders the Markdown body and stores the sanitized result.
// An empty body is allowed; the post is then title-only.
func (s *PostService) CreatePost(ctx context.Context, author, title, markdownText string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if len(title) < models.PostTitleMinLen || len(title) > models.PostTitleMaxLen {
		return nil, models.ErrInvalidLength
	}
	if len(markdownText) > models.PostTextMaxLen {
		return nil, models.ErrInvalidLength
	}

	var text *string
	if strings.TrimSpace(markdownText) != "" {
		rendered, err := s.renderer.ToHTML(markdownText)
		if err != nil {
			s.logger.Error("failed to render post body", slog.Any("error", err))
			return nil, models.ErrBadRequest
		}
		text = &rendered
	}

	post, err := s.posts.Create(ctx, &models.Post{
		Title:  title,
		Text:   text,
		Author: author,
	})
	if err != nil {
		s.logger.Error("failed to create post", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return post, nil
}

// GetPost returns a post together with its comment thread.
func (s *PostService) GetPost(ctx context.Context, id int64) (*PostWithComments, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get post", slog.Int64("post_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	comments, err := s.comments.ListByPost(ctx, id)
	if err != nil {
		s.logger.Error("failed to list comments", slog.Int64("post_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &PostWithComments{Post: post, Comments: comments}, nil
}

func (s *PostService) ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.posts.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list posts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return posts, nil
}

// SearchPosts matches the phrase as a substring against the chosen fields.
func (s *PostService) SearchPosts(ctx context.Context, phrase string, filter repositories.SearchFilter, limit, offset int) ([]*models.Post, error) {
	phrase = strings.TrimSpace(phrase)
	if phrase == "" {
		return nil, models.ErrBadRequest
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.posts.Search(ctx, phrase, filter, limit, offset)
	if err != nil {
		s.logger.Error("failed to search posts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return posts, nil
}

// GetPostForEdit converts the stored HTML back to Markdown so the edit form
// shows roughly what the author originally typed. The round trip is lossy for
// anything the sanitizer stripped.
func (s *PostService) GetPostForEdit(ctx context.Context, actorUsername string, actorRoles []string, id int64) (*models.Post, string, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", models.ErrNotFound
		}
		s.logger.Error("failed to get post", slog.Int64("post_id", id), slog.Any("error", err))
		return nil, "", models.ErrInternalServer
	}

	if !policy.CanEditOrDelete(actorUsername, actorRoles, post.Author) {
		return nil, "", models.ErrForbidden
	}

	markdown := ""
	if post.Text != nil {
		markdown, err = s.renderer.ToMarkdown(*post.Text)
		if err != nil {
			s.logger.Error("failed to convert post body", slog.Int64("post_id", id), slog.Any("error", err))
			return nil, "", models.ErrInternalServer
		}
	}

	return post, markdown, nil
}

// EditPost rewrites title and body. Allowed for the author and for staff;
// staff edits of someone else's post land in the audit trail.
func (s *PostService) EditPost(ctx context.Context, actorUsername string, actorRoles []string, id int64, title, markdownText string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	if len(title) < models.PostTitleMinLen || len(title) > models.PostTitleMaxLen {
		return nil, models.ErrInvalidLength
	}
	if len(markdownText) > models.PostTextMaxLen {
		return nil, models.ErrInvalidLength
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get post", slog.Int64("post_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !policy.CanEditOrDelete(actorUsername, actorRoles, post.Author) {
		return nil, models.ErrForbidden
	}

	var text *string
	if strings.TrimSpace(markdownText) != "" {
		rendered, err := s.renderer.ToHTML(markdownText)
		if err != nil {
			s.logger.Error("failed to render post body", slog.Any("error", err))
			return nil, models.ErrBadRequest
		}
		text = &rendered
	}

	updated, err := s.posts.Update(ctx, id, title, text)
	if err != nil {
		s.logger.Error("failed to update post", slog.Int64("post_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if actorUsername != post.Author {
		s.recordEvent(ctx, models.EventContentEdited, actorUsername, post.Author,
			fmt.Sprintf("post %d edited", id))
	}

	return updated, nil
}

// DeletePost removes a post and, via the schema, its comments. Returns the
// author's username captured before the delete so the caller can follow up
// with a warning.
func (s *PostService) DeletePost(ctx context.Context, actorUsername string, actorRoles []string, id int64) (string, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		s.logger.Error("failed to get post", slog.Int64("post_id", id), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if !policy.CanEditOrDelete(actorUsername, actorRoles, post.Author) {
		return "", models.ErrForbidden
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete post", slog.Int64("post_id", id), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if actorUsername != post.Author {
		s.recordEvent(ctx, models.EventContentDeleted, actorUsername, post.Author,
			fmt.Sprintf("post %d deleted", id))
	}

	return post.Author, nil
}

// CreateComment appends a plain-text comment to an existing post.
func (s *PostService) CreateComment(ctx context.Context, author string, postID int64, text string) (*models.Comment, error) {
	if len(strings.TrimSpace(author)) < models.AuthorMinLen {
		return nil, models.ErrInvalidLength
	}

	text = strings.TrimSpace(text)
	if text == "" || len(text) > models.CommentTextMaxLen {
		return nil, models.ErrInvalidLength
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get post for comment", slog.Int64("post_id", postID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	comment, err := s.comments.Create(ctx, &models.Comment{
		PostID: postID,
		Text:   text,
		Author: author,
	})
	if err != nil {
		s.logger.Error("failed to create comment", slog.Int64("post_id", postID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return comment, nil
}

// DeleteComment removes a comment under the same ownership rules as posts.
// Returns the comment author's username captured before the delete.
func (s *PostService) DeleteComment(ctx context.Context, actorUsername string, actorRoles []string, id string) (string, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return "", models.ErrNotFound
		}
		s.logger.Error("failed to get comment", slog.String("comment_id", id), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if !policy.CanEditOrDelete(actorUsername, actorRoles, comment.Author) {
		return "", models.ErrForbidden
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete comment", slog.String("comment_id", id), slog.Any("error", err))
		return "", models.ErrInternalServer
	}

	if actorUsername != comment.Author {
		s.recordEvent(ctx, models.EventContentDeleted, actorUsername, comment.Author, "comment deleted")
	}

	return comment.Author, nil
}

func (s *PostService) recordEvent(ctx context.Context, eventType, actor, target, detail string) {
	_, err := s.events.Create(ctx, &models.ModerationEvent{
		EventType: eventType,
		Actor:     actor,
		Target:    target,
		Detail:    detail,
	})
	if err != nil {
		s.logger.Error("failed to record moderation event",
			slog.String("event_type", eventType), slog.Any("error", err))
	}
}
