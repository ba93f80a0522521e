package routes

import (
	"github.com/HardcoreMagazine/selenicspark/internal/auth"
	"github.com/HardcoreMagazine/selenicspark/internal/handlers"
	"github.com/HardcoreMagazine/selenicspark/internal/middleware"
	"github.com/HardcoreMagazine/selenicspark/internal/models"
	"github.com/HardcoreMagazine/selenicspark/internal/repositories"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	postHandler *handlers.PostHandler,
	accountHandler *handlers.AccountHandler,
	moderationHandler *handlers.ModerationHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
	userRepo *repositories.UserRepository,
) {
	writeLimit := middleware.DefaultWriteRateLimit()

	// Public routes - reading never requires an account
	router.Get("/posts", postHandler.ListPosts)
	router.Get("/posts/search", postHandler.SearchPosts)
	router.Get("/posts/{postID}", postHandler.GetPost)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(tokenManager, userRepo))

		// Any authenticated user
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitByIP(writeLimit))

			r.Post("/posts", postHandler.CreatePost)
			r.Get("/posts/{postID}/edit", postHandler.GetPostForEdit)
			r.Put("/posts/{postID}", postHandler.UpdatePost)
			r.Delete("/posts/{postID}", postHandler.DeletePost)
			r.Post("/posts/{postID}/comments", postHandler.CreateComment)
			r.Delete("/comments/{commentID}", postHandler.DeleteComment)

			r.Post("/account/username", accountHandler.ChangeUsername)
		})
		r.Get("/account/ledger", accountHandler.GetOwnLedger)

		// Staff routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin, models.RoleModerator))

			r.Post("/moderation/warn", moderationHandler.WarnUser)
			r.Get("/moderation/users/{username}/ledger", moderationHandler.GetUserLedger)
			r.Get("/moderation/users/{username}/history", moderationHandler.GetUserHistory)
		})

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Get("/admin/roles", adminHandler.ListRoles)
			r.Post("/admin/roles", adminHandler.CreateRole)
			r.Put("/admin/roles/{roleID}", adminHandler.UpdateRole)
			r.Delete("/admin/roles/{roleID}", adminHandler.DeleteRole)

			r.Get("/admin/users", adminHandler.ListUsers)
			r.Get("/admin/users/{userID}", adminHandler.GetUser)
			r.Put("/admin/users/{userID}", adminHandler.UpdateUser)
			r.Delete("/admin/users/{userID}", adminHandler.DeleteUser)
			r.Post("/admin/users/{userID}/roles", adminHandler.GrantRole)
			r.Delete("/admin/users/{userID}/roles", adminHandler.RevokeRole)
			r.Put("/admin/users/{userID}/ledger", adminHandler.AdjustLedger)
		})
	})
}
