package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/speechcare/clinic-api/internal/model"
	"github.com/speechcare/clinic-api/internal/repository"
)

// userRepository caches user lookups in front of the database. Patient
// metadata is read on every upload and every doctor listing but changes
// rarely; a short TTL keeps the age filter close to current.
type userRepository struct {
	inner repository.UserRepository
	cache *gocache.Cache
}

func NewUserRepository(inner repository.UserRepository, ttl time.Duration) repository.UserRepository {
	return &userRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	key := id.String()
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*model.User), nil
	}

	user, err := r.inner.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.cache.Set(key, user, gocache.DefaultExpiration)
	return user, nil
}
