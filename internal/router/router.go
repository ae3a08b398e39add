package router

import (
	"net/http"

	"colabora/internal/handlers"
	"colabora/internal/live"
	"colabora/internal/middleware"
	"colabora/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Auth      *services.AuthService
	Proposals *services.ProposalService
	Ledger    *services.VoteLedger
	Comments  *services.CommentService
	Ranking   *services.RankingService
	Blobs     services.BlobStore
	Hub       *live.Hub
	MediaDir  string
	Log       zerolog.Logger
}

// RegisterRoutes mounts the API on r. Sessions middleware must already be
// installed on r.
func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := handlers.NewAuthHandler(d.Auth, d.Log)
	proposalHandler := handlers.NewProposalHandler(d.Proposals, d.Ledger, d.Log)
	voteHandler := handlers.NewVoteHandler(d.Ledger, d.Log)
	commentHandler := handlers.NewCommentHandler(d.Comments, d.Log)
	rankingHandler := handlers.NewRankingHandler(d.Ranking, d.Log)
	imageHandler := handlers.NewImageHandler(d.Blobs, d.Log)
	liveHandler := handlers.NewLiveHandler(d.Hub, d.Ranking, d.Proposals, d.Comments, d.Log)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.MediaDir != "" {
		r.Static("/media", d.MediaDir)
	}

	api := r.Group("/api")
	api.Use(middleware.LoadPrincipal(d.Auth))

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	api.GET("/proposals", proposalHandler.List)
	api.POST("/proposals", proposalHandler.Create) // anonymous allowed
	api.GET("/proposals/:id", proposalHandler.Detail)
	api.GET("/proposals/:id/vote", voteHandler.Status)
	api.GET("/proposals/:id/comments", commentHandler.List)
	api.GET("/ranking", rankingHandler.Leaderboard)
	api.POST("/images", imageHandler.Upload)
	api.GET("/live/:topic", liveHandler.Stream)

	// Protected routes
	authorized := api.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/proposals/:id/vote", voteHandler.Vote)
		authorized.POST("/proposals/:id/comments", commentHandler.Create)
	}
}
