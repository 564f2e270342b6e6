package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"favorites/internal/models"
)

// FavoriteStore persists favorites in the "favorites" collection. The
// user_placeId_unique index guarantees one document per (user, placeId).
type FavoriteStore struct {
	coll *mongo.Collection
}

func NewFavoriteStore(db *mongo.Database) *FavoriteStore {
	return &FavoriteStore{coll: db.Collection(favoritesCollection)}
}

func (s *FavoriteStore) ListFavorites(ctx context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, translate(err, "list favorites")
	}
	defer cursor.Close(ctx)

	items := []models.Favorite{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, translate(err, "decode favorites")
	}
	return items, nil
}

// UpsertFavorite replaces the metadata of the (userID, placeID) favorite,
// creating it when missing. Metadata fields left nil are removed.
func (s *FavoriteStore) UpsertFavorite(ctx context.Context, userID primitive.ObjectID, placeID string, meta models.FavoriteMeta) (*models.Favorite, error) {
	now := time.Now()
	set := bson.M{"updatedAt": now}
	unset := bson.M{}

	assign := func(key string, present bool, value interface{}) {
		if present {
			set[key] = value
		} else {
			unset[key] = ""
		}
	}
	assign("name", meta.Name != nil, meta.Name)
	assign("latitude", meta.Latitude != nil, meta.Latitude)
	assign("longitude", meta.Longitude != nil, meta.Longitude)
	assign("address", meta.Address != nil, meta.Address)
	assign("type", meta.Type != nil, meta.Type)

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"createdAt": now},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var fav models.Favorite
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"user": userID, "placeId": placeID}, update, opts).Decode(&fav)
	if err != nil {
		return nil, translate(err, "upsert favorite")
	}
	return &fav, nil
}

func (s *FavoriteStore) DeleteFavorite(ctx context.Context, userID primitive.ObjectID, placeID string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"user": userID, "placeId": placeID})
	return translate(err, "delete favorite")
}

func (s *FavoriteStore) DeleteFavoritesByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"user": userID})
	if err != nil {
		return 0, translate(err, "delete user favorites")
	}
	return res.DeletedCount, nil
}
