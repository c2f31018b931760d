package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeNotFound is returned when no confirmation code is stored for a
// username, either because signup never happened or the code expired.
var ErrCodeNotFound = errors.New("confirmation code not found")

// ConfirmationRepository stores bcrypt hashes of signup confirmation codes,
// keyed by username, with a TTL.
type ConfirmationRepository interface {
	Save(ctx context.Context, username, codeHash string, ttl time.Duration) error
	Get(ctx context.Context, username string) (string, error)
	Delete(ctx context.Context, username string) error
}

type confirmationRedisRepo struct {
	client *redis.Client
}

// NewConfirmationRepository connects to Redis and verifies the connection
// before returning the repository.
func NewConfirmationRepository(redisURL, password string) (ConfirmationRepository, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &confirmationRedisRepo{client: rdb}, nil
}

func confirmationKey(username string) string {
	return "confirmation:user:" + username
}

func (r *confirmationRedisRepo) Save(ctx context.Context, username, codeHash string, ttl time.Duration) error {
	return r.client.Set(ctx, confirmationKey(username), codeHash, ttl).Err()
}

func (r *confirmationRedisRepo) Get(ctx context.Context, username string) (string, error) {
	hash, err := r.client.Get(ctx, confirmationKey(username)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (r *confirmationRedisRepo) Delete(ctx context.Context, username string) error {
	return r.client.Del(ctx, confirmationKey(username)).Err()
}
