package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"favorites/internal/models"
)

type favoriteKey struct {
	user    primitive.ObjectID
	placeID string
}

type memoryFavorite struct {
	fav models.Favorite
	seq uint64
}

// MemoryStore keeps users and favorites in process memory while enforcing
// the same unique keys as the mongo indexes. It backs STORE=memory and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[primitive.ObjectID]models.User
	favorites map[favoriteKey]memoryFavorite
	seq       uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[primitive.ObjectID]models.User),
		favorites: make(map[favoriteKey]memoryFavorite),
	}
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) InsertUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collidesLocked(primitive.NilObjectID, user.Username, user.Email, user.Token) {
		return ErrDuplicate
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *MemoryStore) FindUserByToken(_ context.Context, token string) (*models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Token != "" && u.Token == token })
}

func (s *MemoryStore) UserExists(_ context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.users[id]
	return ok, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id primitive.ObjectID, update models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}
	if s.collidesLocked(id, user.Username, user.Email, user.Token) {
		return nil, ErrDuplicate
	}
	user.UpdatedAt = time.Now()
	s.users[id] = user
	return &user, nil
}

func (s *MemoryStore) DeleteUserByToken(_ context.Context, token string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, user := range s.users {
		if user.Token != "" && user.Token == token {
			delete(s.users, id)
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListFavorites(_ context.Context, userID primitive.ObjectID) ([]models.Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]memoryFavorite, 0)
	for key, entry := range s.favorites {
		if key.user == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].fav.CreatedAt.Equal(entries[j].fav.CreatedAt) {
			return entries[i].fav.CreatedAt.After(entries[j].fav.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	items := make([]models.Favorite, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry.fav)
	}
	return items, nil
}

func (s *MemoryStore) UpsertFavorite(_ context.Context, userID primitive.ObjectID, placeID string, meta models.FavoriteMeta) (*models.Favorite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	key := favoriteKey{user: userID, placeID: placeID}
	entry, ok := s.favorites[key]
	if !ok {
		s.seq++
		entry = memoryFavorite{
			fav: models.Favorite{
				ID:        primitive.NewObjectID(),
				User:      userID,
				PlaceID:   placeID,
				CreatedAt: now,
			},
			seq: s.seq,
		}
	}
	entry.fav.FavoriteMeta = meta
	entry.fav.UpdatedAt = now
	s.favorites[key] = entry

	fav := entry.fav
	return &fav, nil
}

func (s *MemoryStore) DeleteFavorite(_ context.Context, userID primitive.ObjectID, placeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.favorites, favoriteKey{user: userID, placeID: placeID})
	return nil
}

func (s *MemoryStore) DeleteFavoritesByUser(_ context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for key := range s.favorites {
		if key.user == userID {
			delete(s.favorites, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) findUser(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if match(user) {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) collidesLocked(self primitive.ObjectID, username, email, token string) bool {
	for id, other := range s.users {
		if id == self {
			continue
		}
		if other.Username == username || other.Email == email {
			return true
		}
		if token != "" && other.Token == token {
			return true
		}
	}
	return false
}
