package main

import (
	"fmt"
	"log"
	"net/http"

	"gamevault/backend/internal/auth"
	"gamevault/backend/internal/config"
	"gamevault/backend/internal/database"
	"gamevault/backend/internal/handler"
	"gamevault/backend/internal/store"

	"github.com/gin-gonic/gin"

	// Swagger imports
	_ "gamevault/backend/docs" // This is important for swag to find the generated docs

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func init() {
	config.LoadConfig()
}

// @title           GameVault API
// @version         1.0
// @description     This is the API for the GameVault game catalog service.
// @host            localhost:8080
// @BasePath        /api/v1.0
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	// Connect to the database and ensure indexes
	database.Connect(config.AppConfig.MongoURI, config.AppConfig.MongoDB)

	games := store.NewGameStore(database.DB)
	users := store.NewUserStore(database.DB)
	tokens := store.NewTokenStore(database.DB)

	userHandler := handler.NewUserHandler(users, tokens)
	gameHandler := handler.NewGameHandler(games)
	reviewHandler := handler.NewReviewHandler(games)

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// API v1.0 routes
	apiV1 := router.Group("/api/v1.0")
	{
		// Identity lifecycle
		apiV1.POST("/register", userHandler.Register)
		apiV1.POST("/login", userHandler.Login)
		apiV1.POST("/logout", auth.AuthMiddleware(tokens), userHandler.Logout)

		// Public game routes
		gameRoutes := apiV1.Group("/games")
		{
			gameRoutes.GET("", gameHandler.GetGames)
			gameRoutes.GET("/award-leaderboard", gameHandler.AwardLeaderboard)
			gameRoutes.GET("/closest", gameHandler.ClosestGames)
			gameRoutes.GET("/:id", gameHandler.GetGameByID)
			gameRoutes.GET("/:id/reviews", reviewHandler.GetReviews)
			gameRoutes.GET("/:id/reviews/:reviewID", reviewHandler.GetReviewByID)

			// Review mutation (authenticated; ownership enforced in handlers)
			authed := gameRoutes.Group("")
			authed.Use(auth.AuthMiddleware(tokens))
			{
				authed.POST("/:id/reviews", reviewHandler.AddReview)
				authed.PUT("/:id/reviews/:reviewID", reviewHandler.UpdateReview)
				authed.DELETE("/:id/reviews/:reviewID", reviewHandler.DeleteReview)
			}

			// Game mutation (admin only)
			admin := gameRoutes.Group("")
			admin.Use(auth.AuthMiddleware(tokens), auth.AdminMiddleware())
			{
				admin.POST("", gameHandler.CreateGame)
				admin.PUT("/:id", gameHandler.UpdateGame)
				admin.DELETE("/:id", gameHandler.DeleteGame)
			}
		}
	}

	fmt.Printf("Server is running on %s\n", config.AppConfig.ServerAddr)
	fmt.Println("Swagger UI is available at http://localhost:8080/swagger/index.html")
	log.Fatal(router.Run(config.AppConfig.ServerAddr))
}
