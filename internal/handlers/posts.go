package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/HardcoreMagazine/selenicspark/internal/auth"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
	"github.com/HardcoreMagazine/selenicspark/internal/services"
	pkghttp "github.com/HardcoreMagazine/selenicspark/pkg/http"
	"github.com/go-chi/chi/v5"
)

// PostService defines the interface for post and comment business logic
type PostService interface {
	CreatePost(ctx context.Context, author, title, markdownText string) (*models.Post, error)
	GetPost(ctx context.Context, id int64) (*services.PostWithComments, error)
	ListPosts(ctx context.Context, limit, offset int) ([]*models.Post, error)
	SearchPosts(ctx context.Context, phrase string, filter repositories.SearchFilter, limit, offset int) ([]*models.Post, error)
	GetPostForEdit(ctx context.Context, actorUsername string, actorRoles []string, id int64) (*models.Post, string, error)
	EditPost(ctx context.Context, actorUsername string, actorRoles []string, id int64, title, markdownText string) (*models.Post, error)
	DeletePost(ctx context.Context, actorUsername string, actorRoles []string, id int64) (string, error)
	CreateComment(ctx context.Context, author string, postID int64, text string) (*models.Comment, error)
	DeleteComment(ctx context.Context, actorUsername string, actorRoles []string, id string) (string, error)
}

// AuthorWarner issues the optional follow-up warning after a takedown
type AuthorWarner interface {
	WarnUser(ctx context.Context, actorUsername string, actorRoles []string, targetUsername string) (*models.WarningOutcome, error)
}

// PostHandler handles post and comment HTTP requests
type PostHandler struct {
	service PostService
	warner  AuthorWarner
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service PostService, warner AuthorWarner) *PostHandler {
	return &PostHandler{
		service: service,
		warner:  warner,
	}
}

// Request/Response DTOs

// CreatePostRequest represents the request body for creating or editing a post
type CreatePostRequest struct {
	Title string `json:"title" validate:"required,min=4,max=300"`
	Text  string `json:"text" validate:"max=20000"`
}

// CreateCommentRequest represents the request body for creating a comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,max=3000"`
}

// PostResponse represents a post in the HTTP response
type PostResponse struct {
	ID        int64   `json:"id"`
	Title     string  `json:"title"`
	Text      *string `json:"text,omitempty"`
	Author    string  `json:"author"`
	CreatedAt string  `json:"created_at"`
}

// CommentResponse represents a comment in the HTTP response
type CommentResponse struct {
	ID        string `json:"id"`
	PostID    int64  `json:"post_id"`
	Text      string `json:"text"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

// PostWithCommentsResponse bundles a post with its comment thread
type PostWithCommentsResponse struct {
	Post     *PostResponse      `json:"post"`
	Comments []*CommentResponse `json:"comments"`
}

// PostEditResponse carries the Markdown round-trip for the edit form
type PostEditResponse struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// DeleteResponse reports the outcome of a takedown
type DeleteResponse struct {
	Deleted      bool `json:"deleted"`
	AuthorWarned bool `json:"author_warned"`
}

func postModelToResponse(post *models.Post) *PostResponse {
	return &PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Text:      post.Text,
		Author:    post.Author,
		CreatedAt: post.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func commentModelToResponse(comment *models.Comment) *CommentResponse {
	return &CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		Text:      comment.Text,
		Author:    comment.Author,
		CreatedAt: comment.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// ListPosts retrieves posts, newest first
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	posts, err := h.service.ListPosts(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	responses := make([]*PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, postModelToResponse(post))
	}

	writeJSON(w, http.StatusOK, responses)
}

// SearchPosts matches a phrase against title, body, author or all three
func (h *PostHandler) SearchPosts(w http.ResponseWriter, r *http.Request) {
	phrase := r.URL.Query().Get("phrase")
	filter := repositories.SearchFilter(r.URL.Query().Get("filter"))
	if filter == "" {
		filter = repositories.SearchAnywhere
	}
	limit, offset := paginationParams(r)

	posts, err := h.service.SearchPosts(r.Context(), phrase, filter, limit, offset)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	responses := make([]*PostResponse, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, postModelToResponse(post))
	}

	writeJSON(w, http.StatusOK, responses)
}

// GetPost retrieves a post with its comments
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postIDParam(w, r)
	if !ok {
		return
	}

	result, err := h.service.GetPost(r.Context(), id)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	comments := make([]*CommentResponse, 0, len(result.Comments))
	for _, comment := range result.Comments {
		comments = append(comments, commentModelToResponse(comment))
	}

	writeJSON(w, http.StatusOK, &PostWithCommentsResponse{
		Post:     postModelToResponse(result.Post),
		Comments: comments,
	})
}

// CreatePost creates a post authored by the caller
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.CreatePost(r.Context(), claims.Username, req.Title, req.Text)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, postModelToResponse(post))
}

// GetPostForEdit returns the post body converted back to Markdown
func (h *PostHandler) GetPostForEdit(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id, ok := postIDParam(w, r)
	if !ok {
		return
	}

	post, markdown, err := h.service.GetPostForEdit(r.Context(), claims.Username, claims.Roles, id)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &PostEditResponse{
		ID:       post.ID,
		Title:    post.Title,
		Markdown: markdown,
	})
}

// UpdatePost rewrites a post's title and body
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id, ok := postIDParam(w, r)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.EditPost(r.Context(), claims.Username, claims.Roles, id, req.Title, req.Text)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, postModelToResponse(post))
}

// DeletePost removes a post. With ?warn=true a staff takedown also issues a
// warning against the author captured before the delete.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id, ok := postIDParam(w, r)
	if !ok {
		return
	}

	author, err := h.service.DeletePost(r.Context(), claims.Username, claims.Roles, id)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	warned := h.maybeWarnAuthor(r, claims, author)

	writeJSON(w, http.StatusOK, &DeleteResponse{Deleted: true, AuthorWarned: warned})
}

// CreateComment appends a comment to a post
func (h *PostHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	id, ok := postIDParam(w, r)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}
	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.service.CreateComment(r.Context(), claims.Username, id, req.Text)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, commentModelToResponse(comment))
}

// DeleteComment removes a comment, optionally warning its author
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	commentID := chi.URLParam(r, "commentID")
	if commentID == "" {
		pkghttp.WriteBadRequest(w, "comment ID is required")
		return
	}

	author, err := h.service.DeleteComment(r.Context(), claims.Username, claims.Roles, commentID)
	if err != nil {
		pkghttp.WriteDomainError(w, err)
		return
	}

	warned := h.maybeWarnAuthor(r, claims, author)

	writeJSON(w, http.StatusOK, &DeleteResponse{Deleted: true, AuthorWarned: warned})
}

// maybeWarnAuthor fires the follow-up warning when requested. A target the
// policy refuses to warn keeps the takedown intact; only the warning is
// skipped.
func (h *PostHandler) maybeWarnAuthor(r *http.Request, claims *models.TokenClaims, author string) bool {
	if r.URL.Query().Get("warn") != "true" || author == claims.Username {
		return false
	}

	outcome, err := h.warner.WarnUser(r.Context(), claims.Username, claims.Roles, author)
	return err == nil && outcome != nil
}

func postIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "postID"), 10, 64)
	if err != nil || id <= 0 {
		pkghttp.WriteBadRequest(w, "invalid post ID")
		return 0, false
	}
	return id, true
}

func paginationParams(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return limit, offset
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
