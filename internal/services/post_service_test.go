package services

import (
	"context"
	"strings"
	"testing"

	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/stretchr/testify/assert"
)

// fakeRenderer marks conversions instead of really rendering so tests can see
// which direction ran.
type fakeRenderer struct{}

func (fakeRenderer) ToHTML(source string) (string, error) { return "<p>" + source + "</p>", nil }

func (fakeRenderer) ToMarkdown(html string) (string, error) {
	out := strings.TrimPrefix(html, "<p>")
	return strings.TrimSuffix(out, "</p>"), nil
}

func newPostService(posts *MockPostRepository, comments *MockCommentRepository, events *MockModerationEventRepository) *PostService {
	return NewPostService(posts, comments, events, fakeRenderer{}, testLogger())
}

func TestPostService_CreatePost_RendersBody(t *testing.T) {
	var stored *models.Post
	mockPosts := &MockPostRepository{
		CreateFunc: func(ctx context.Context, post *models.Post) (*models.Post, error) {
			stored = post
			post.ID = 42
			return post, nil
		},
	}

	svc := newPostService(mockPosts, &MockCommentRepository{}, &MockModerationEventRepository{})

	post, err := svc.CreatePost(context.Background(), "alice", "Hello world", "some *markdown*")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), post.ID)
	assert.NotNil(t, stored.Text)
	assert.Equal(t, "<p>some *markdown*</p>", *stored.Text)
}

func TestPostService_CreatePost_TitleOnly(t *testing.T) {
	mockPosts := &MockPostRepository{
		CreateFunc: func(ctx context.Context, post *models.Post) (*models.Post, error) {
			assert.Nil(t, post.Text)
			return post, nil
		},
	}

	svc := newPostService(mockPosts, &MockCommentRepository{}, &MockModerationEventRepository{})

	_, err := svc.CreatePost(context.Background(), "alice", "Just a title", "   ")

	assert.NoError(t, err)
}

func TestPostService_CreatePost_TitleBounds(t *testing.T) {
	svc := newPostService(&MockPostRepository{}, &MockCommentRepository{}, &MockModerationEventRepository{})

	_, err := svc.CreatePost(context.Background(), "alice", "abc", "")
	assert.Equal(t, models.ErrInvalidLength, err)

	_, err = svc.CreatePost(context.Background(), "alice", strings.Repeat("x", models.PostTitleMaxLen+1), "")
	assert.Equal(t, models.ErrInvalidLength, err)
}

func TestPostService_EditPost_AuthorAllowed(t *testing.T) {
	body := "<p>old</p>"
	mockPosts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Old title", Text: &body, Author: "alice"}, nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newPostService(mockPosts, &MockCommentRepository{}, events)

	updated, err := svc.EditPost(context.Background(), "alice", []string{models.RoleUser}, 1, "New title", "new body")

	assert.NoError(t, err)
	assert.Equal(t, "New title", updated.Title)
	// Self-edits are not moderation actions.
	assert.Empty(t, events.Created)
}

func TestPostService_EditPost_StrangerForbidden(t *testing.T) {
	mockPosts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Title here", Author: "alice"}, nil
		},
	}

	svc := newPostService(mockPosts, &MockCommentRepository{}, &MockModerationEventRepository{})

	_, err := svc.EditPost(context.Background(), "mallory", []string{models.RoleUser}, 1, "Defaced", "")

	assert.Equal(t, models.ErrForbidden, err)
}

func TestPostService_EditPost_ModeratorEditRecordsEvent(t *testing.T) {
	mockPosts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Title here", Author: "alice"}, nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newPostService(mockPosts, &MockCommentRepository{}, events)

	_, err := svc.EditPost(context.Background(), "mod", []string{models.RoleModerator}, 1, "Cleaned title", "")

	assert.NoError(t, err)
	if assert.Len(t, events.Created, 1) {
		assert.Equal(t, models.EventContentEdited, events.Created[0].EventType)
		assert.Equal(t, "alice", events.Created[0].Target)
	}
}

func TestPostService_DeletePost_ReturnsAuthor(t *testing.T) {
	mockPosts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Title here", Author: "alice"}, nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newPostService(mockPosts, &MockCommentRepository{}, events)

	author, err := svc.DeletePost(context.Background(), "admin", []string{models.RoleAdmin}, 1)

	assert.NoError(t, err)
	assert.Equal(t, "alice", author)
	if assert.Len(t, events.Created, 1) {
		assert.Equal(t, models.EventContentDeleted, events.Created[0].EventType)
	}
}

func TestPostService_DeletePost_NotFound(t *testing.T) {
	svc := newPostService(&MockPostRepository{}, &MockCommentRepository{}, &MockModerationEventRepository{})

	_, err := svc.DeletePost(context.Background(), "admin", []string{models.RoleAdmin}, 404)

	assert.Equal(t, models.ErrNotFound, err)
}

func TestPostService_GetPost_WithComments(t *testing.T) {
	mockPosts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Title here", Author: "alice"}, nil
		},
	}
	mockComments := &MockCommentRepository{
		ListByPostFunc: func(ctx context.Context, postID int64) ([]*models.Comment, error) {
			return []*models.Comment{
				{ID: "c1", PostID: postID, Text: "first", Author: "bob"},
				{ID: "c2", PostID: postID, Text: "second", Author: "carol"},
			}, nil
		},
	}

	svc := newPostService(mockPosts, mockComments, &MockModerationEventRepository{})

	result, err := svc.GetPost(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, int64(1), result.Post.ID)
	assert.Len(t, result.Comments, 2)
}

func TestPostService_CreateComment_Validates(t *testing.T) {
	mockPosts := &MockPostRepository{
		GetByIDFunc: func(ctx context.Context, id int64) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Title here", Author: "alice"}, nil
		},
	}

	svc := newPostService(mockPosts, &MockCommentRepository{}, &MockModerationEventRepository{})

	_, err := svc.CreateComment(context.Background(), "bob", 1, "  ")
	assert.Equal(t, models.ErrInvalidLength, err)

	_, err = svc.CreateComment(context.Background(), "bob", 1, strings.Repeat("y", models.CommentTextMaxLen+1))
	assert.Equal(t, models.ErrInvalidLength, err)

	// Author names shorter than three characters are rejected.
	_, err = svc.CreateComment(context.Background(), "ab", 1, "hello")
	assert.Equal(t, models.ErrInvalidLength, err)

	comment, err := svc.CreateComment(context.Background(), "bob", 1, "nice post")
	assert.NoError(t, err)
	assert.Equal(t, "bob", comment.Author)
}

func TestPostService_CreateComment_PostGone(t *testing.T) {
	svc := newPostService(&MockPostRepository{}, &MockCommentRepository{}, &MockModerationEventRepository{})

	_, err := svc.CreateComment(context.Background(), "bob", 404, "hello")

	assert.Equal(t, models.ErrNotFound, err)
}

func TestPostService_DeleteComment_OwnershipRules(t *testing.T) {
	mockComments := &MockCommentRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1, Text: "spam", Author: "bob"}, nil
		},
	}
	events := &MockModerationEventRepository{}

	svc := newPostService(&MockPostRepository{}, mockComments, events)

	_, err := svc.DeleteComment(context.Background(), "mallory", []string{models.RoleUser}, "c1")
	assert.Equal(t, models.ErrForbidden, err)

	author, err := svc.DeleteComment(context.Background(), "mod", []string{models.RoleModerator}, "c1")
	assert.NoError(t, err)
	assert.Equal(t, "bob", author)
}

func TestPostService_SearchPosts_EmptyPhrase(t *testing.T) {
	svc := newPostService(&MockPostRepository{}, &MockCommentRepository{}, &MockModerationEventRepository{})

	_, err := svc.SearchPosts(context.Background(), "   ", "anywhere", 10, 0)

	assert.Equal(t, models.ErrBadRequest, err)
}
