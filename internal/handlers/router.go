package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"favorites/internal/middleware"
	"favorites/internal/services"
)

type Dependencies struct {
	Identity    *services.Identity
	Favorites   *services.Favorites
	Store       Pinger
	CORSOrigins []string
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return cors.Default()
	}

	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = origins
	cfg.AddAllowHeaders("Authorization")
	return cors.New(cfg)
}

func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.CustomRecovery(recoverPanic))
	r.Use(corsMiddleware(deps.CORSOrigins))
	r.NoRoute(notFound)

	r.GET("/health", Health(deps.Store))

	users := r.Group("/users")
	{
		users.POST("/signup", Signup(deps.Identity))
		users.POST("/signin", Signin(deps.Identity))
		users.GET("/me", middleware.ExtractToken(true), middleware.RequireUser(deps.Identity), GetMe())
		users.PUT("/me", middleware.ExtractToken(false), UpdateMe(deps.Identity))
		users.DELETE("", middleware.ExtractToken(false), DeleteMe(deps.Identity))
		users.DELETE("/", middleware.ExtractToken(false), DeleteMe(deps.Identity))
	}

	favorites := r.Group("/favorites")
	{
		favorites.GET("/:userId", ListFavorites(deps.Favorites))
		favorites.GET("/:userId/geojson", FavoritesGeoJSON(deps.Favorites))
		favorites.GET("/:userId/nearby", NearbyFavorites(deps.Favorites))
		favorites.PUT("/:userId/:placeId", UpsertFavorite(deps.Favorites))
		favorites.DELETE("/:userId/:placeId", DeleteFavorite(deps.Favorites))
	}

	return r
}
