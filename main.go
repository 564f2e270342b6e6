package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"favorites/internal/config"
	"favorites/internal/database"
	"favorites/internal/handlers"
	"favorites/internal/services"
)

type store interface {
	services.UserStore
	services.UserLookup
	services.FavoriteStore
	services.FavoriteRemover
	handlers.Pinger
}

type mongoStore struct {
	*database.UserStore
	*database.FavoriteStore
}

func openStore(cfg config.Config) (store, func()) {
	if cfg.Store == config.StoreMemory {
		log.Println("using in-memory store; data is lost on restart")
		return database.NewMemoryStore(), func() {}
	}

	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required")
	}

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureIndexes(db); err != nil {
		log.Fatal("index creation failed: ", err)
	}

	closer := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Println("MongoDB disconnect failed:", err)
		}
	}
	return mongoStore{
		UserStore:     database.NewUserStore(db),
		FavoriteStore: database.NewFavoriteStore(db),
	}, closer
}

func main() {
	config.Load()
	cfg := config.AppEnv

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s, closeStore := openStore(cfg)
	defer closeStore()

	r := handlers.NewRouter(handlers.Dependencies{
		Identity:    services.NewIdentity(s, s),
		Favorites:   services.NewFavorites(s, s),
		Store:       s,
		CORSOrigins: cfg.CORSOrigins,
	})

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Println("server stopped:", err)
	}
}
