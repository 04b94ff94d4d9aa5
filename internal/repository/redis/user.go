package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/repository"
)

// record is the stored form of a user; model.User hides the hash from JSON.
type record struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"hashed_password"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func toRecord(u *model.User) record {
	return record{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r record) user() *model.User {
	return &model.User{
		Base:         model.Base{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		IsActive:     r.IsActive,
	}
}

type userRepository struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewUserRepository stores users as JSON documents with an email index and
// an id-ordered sorted set.
func NewUserRepository(client redis.UniversalClient, prefix string) repository.UserRepository {
	return &userRepository{client: client, prefix: prefix, now: time.Now}
}

// NewClient parses a redis:// URL and checks the connection. A non-empty
// password overrides the one in the URL.
func NewClient(ctx context.Context, url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (r *userRepository) seqKey() string   { return r.prefix + "user:seq" }
func (r *userRepository) usersKey() string { return r.prefix + "users" }

func (r *userRepository) userKey(id int64) string {
	return r.prefix + "user:" + strconv.FormatInt(id, 10)
}

func (r *userRepository) emailKey(email string) string {
	return r.prefix + "user:email:" + strings.ToLower(strings.TrimSpace(email))
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate user id: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.emailKey(user.Email), id, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve email: %w", err)
	}
	if !ok {
		return repository.ErrConflict
	}

	now := r.now().UTC()
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now

	data, err := json.Marshal(toRecord(user))
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.userKey(id), string(data), 0)
		pipe.ZAdd(ctx, r.usersKey(), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	data, err := r.client.Get(ctx, r.userKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return decode(data)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := r.client.Get(ctx, r.emailKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(offset + limit - 1)
	}
	ids, err := r.client.ZRange(ctx, r.usersKey(), int64(offset), stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if len(ids) == 0 {
		return []*model.User{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.prefix + "user:" + id
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	users := make([]*model.User, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		u, err := decode(s)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return err
	}

	oldKey, newKey := r.emailKey(existing.Email), r.emailKey(user.Email)
	if oldKey != newKey {
		ok, err := r.client.SetNX(ctx, newKey, user.ID, 0).Result()
		if err != nil {
			return fmt.Errorf("failed to reserve email: %w", err)
		}
		if !ok {
			return repository.ErrConflict
		}
	}

	user.CreatedAt = existing.CreatedAt
	user.UpdatedAt = r.now().UTC()
	data, err := json.Marshal(toRecord(user))
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.userKey(user.ID), string(data), 0)
		if oldKey != newKey {
			pipe.Del(ctx, oldKey)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.userKey(id), r.emailKey(existing.Email))
		pipe.ZRem(ctx, r.usersKey(), strconv.FormatInt(id, 10))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func decode(data string) (*model.User, error) {
	var rec record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode user: %w", err)
	}
	return rec.user(), nil
}
