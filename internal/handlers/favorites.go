package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"favorites/internal/models"
	"favorites/internal/services"
)

func respondFavoriteError(c *gin.Context, route string, err error) {
	var status int
	switch {
	case errors.Is(err, services.ErrInvalidUserID):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateFavorite):
		status = http.StatusConflict
	default:
		respondInternalError(c, route, "ok", err)
		return
	}

	log.Printf("[%s] [ERROR] returning %d: %v", route, status, err)
	c.AbortWithStatusJSON(status, gin.H{"ok": false, "error": err.Error()})
}

func ListFavorites(favorites *services.Favorites) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		items, err := favorites.List(ctx, c.Param("userId"))
		if err != nil {
			respondFavoriteError(c, "FAVORITE", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
	}
}

// UpsertFavorite replaces the favorite's metadata with the request body.
// Body fields: name, latitude, longitude, address, type.
func UpsertFavorite(favorites *services.Favorites) gin.HandlerFunc {
	return func(c *gin.Context) {
		var meta models.FavoriteMeta
		if err := bindOptionalJSON(c, &meta); err != nil {
			log.Println("[FAVORITE] [ERROR] invalid favorite body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		item, err := favorites.Upsert(ctx, c.Param("userId"), c.Param("placeId"), meta)
		if err != nil {
			respondFavoriteError(c, "FAVORITE", err)
			return
		}

		log.Println("[FAVORITE] [INFO] favorite saved:", item.PlaceID)
		c.JSON(http.StatusOK, gin.H{"ok": true, "item": item})
	}
}

func DeleteFavorite(favorites *services.Favorites) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		if err := favorites.Delete(ctx, c.Param("userId"), c.Param("placeId")); err != nil {
			respondFavoriteError(c, "FAVORITE", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func FavoritesGeoJSON(favorites *services.Favorites) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		items, err := favorites.List(ctx, c.Param("userId"))
		if err != nil {
			respondFavoriteError(c, "FAVORITE_GEO", err)
			return
		}

		c.JSON(http.StatusOK, services.FeatureCollection(items))
	}
}

// NearbyFavorites expects lat and lng query parameters and an optional radius in meters.
func NearbyFavorites(favorites *services.Favorites) gin.HandlerFunc {
	return func(c *gin.Context) {
		center, radius, ok := parseNearbyQuery(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "lat, lng and radius must be valid numbers"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		items, err := favorites.Nearby(ctx, c.Param("userId"), center, radius)
		if err != nil {
			respondFavoriteError(c, "FAVORITE_GEO", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "items": items})
	}
}

func parseNearbyQuery(c *gin.Context) (orb.Point, float64, bool) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	if err != nil || lat < -90 || lat > 90 {
		return orb.Point{}, 0, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lng")), 64)
	if err != nil || lng < -180 || lng > 180 {
		return orb.Point{}, 0, false
	}

	radius := services.DefaultNearbyRadius
	if raw := strings.TrimSpace(c.Query("radius")); raw != "" {
		radius, err = strconv.ParseFloat(raw, 64)
		if err != nil || radius <= 0 {
			return orb.Point{}, 0, false
		}
	}
	return orb.Point{lng, lat}, radius, true
}
