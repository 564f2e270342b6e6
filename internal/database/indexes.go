package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates every index the stores rely on. It runs once at startup.
func EnsureIndexes(db *mongo.Database) error {
	if err := EnsureUserIndexes(db); err != nil {
		return err
	}
	return EnsureFavoriteIndexes(db)
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(usersCollection).Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_unique").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_unique").SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "token", Value: 1}},
			Options: options.Index().
				SetName("token_unique").
				SetUnique(true).
				SetSparse(true),
		},
	}

	log.Println("EnsureUserIndexes: creating email_unique, username_unique, token_unique indexes")
	if _, err := indexes.CreateMany(ctx, models); err != nil {
		log.Println("EnsureUserIndexes: index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: user indexes created")
	return nil
}

func EnsureFavoriteIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(favoritesCollection).Indexes()

	models := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user", Value: 1}, {Key: "placeId", Value: 1}},
			Options: options.Index().
				SetName("user_placeId_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("user_createdAt"),
		},
	}

	log.Println("EnsureFavoriteIndexes: creating user_placeId_unique, user_createdAt indexes")
	if _, err := indexes.CreateMany(ctx, models); err != nil {
		log.Println("EnsureFavoriteIndexes: index error:", err)
		return err
	}
	log.Println("EnsureFavoriteIndexes: favorite indexes created")
	return nil
}
