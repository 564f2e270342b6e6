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

// UserStore persists users in the "users" collection.
type UserStore struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{db: db, coll: db.Collection(usersCollection)}
}

func (s *UserStore) Ping(ctx context.Context) error {
	return ping(ctx, s.db)
}

func (s *UserStore) InsertUser(ctx context.Context, user *models.User) error {
	res, err := s.coll.InsertOne(ctx, user)
	if err != nil {
		return translate(err, "insert user")
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = id
	}
	return nil
}

func (s *UserStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email}, "find user by email")
}

func (s *UserStore) FindUserByToken(ctx context.Context, token string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"token": token}, "find user by token")
}

func (s *UserStore) UserExists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Err()
	switch err = translate(err, "check user exists"); err {
	case nil:
		return true, nil
	case ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (s *UserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.PasswordHash != nil {
		set["passwordHash"] = *update.PasswordHash
	}

	var user models.User
	err := s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return nil, translate(err, "update user")
	}
	return &user, nil
}

func (s *UserStore) DeleteUserByToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"token": token}).Decode(&user); err != nil {
		return nil, translate(err, "delete user")
	}
	return &user, nil
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M, op string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err, op)
	}
	return &user, nil
}
