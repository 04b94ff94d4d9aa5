package user

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/jwalitptl/pdf-api/internal/model"
	"github.com/jwalitptl/pdf-api/internal/repository"
	"github.com/jwalitptl/pdf-api/internal/service/audit"
	"github.com/jwalitptl/pdf-api/pkg/errors"
	"github.com/jwalitptl/pdf-api/pkg/security"
)

const msgNotOwner = "not enough permissions"

type UserServicer interface {
	Get(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, page model.Pagination) ([]*model.User, error)
	Update(ctx context.Context, actor *model.User, id int64, req *model.UpdateUserRequest) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type Service struct {
	repo    repository.UserRepository
	hasher  security.PasswordHasher
	auditor *audit.Service
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, auditor *audit.Service) *Service {
	return &Service{
		repo:    repo,
		hasher:  hasher,
		auditor: auditor,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, page model.Pagination) ([]*model.User, error) {
	page = page.Normalize()
	users, err := s.repo.List(ctx, page.Skip, page.Limit)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return users, nil
}

// Update applies the non-nil fields of req. Users may only modify their own
// record.
func (s *Service) Update(ctx context.Context, actor *model.User, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if actor == nil || actor.ID != user.ID {
		return nil, errors.Forbidden(msgNotOwner)
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Password != nil {
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			if stderrors.Is(err, security.ErrPasswordLength) {
				return nil, errors.Validation([]errors.FieldError{{Field: "password", Message: err.Error()}}, err)
			}
			return nil, errors.Internal(err)
		}
		user.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, mapRepoError(err)
	}

	s.auditor.Log(ctx, audit.Event{
		Action:     audit.ActionUserUpdate,
		Actor:      actor.Email,
		Resource:   "user",
		ResourceID: strconv.FormatInt(id, 10),
		Metadata:   model.JSONMap{"password_changed": req.Password != nil},
	})
	return user, nil
}

func (s *Service) Delete(ctx context.Context, actor *model.User, id int64) error {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if actor == nil || actor.ID != user.ID {
		return errors.Forbidden(msgNotOwner)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err)
	}

	s.auditor.Log(ctx, audit.Event{
		Action:     audit.ActionUserDelete,
		Actor:      actor.Email,
		Resource:   "user",
		ResourceID: strconv.FormatInt(id, 10),
	})
	return nil
}

func mapRepoError(err error) error {
	switch {
	case stderrors.Is(err, repository.ErrNotFound):
		return errors.NotFound("user", err)
	case stderrors.Is(err, repository.ErrConflict):
		return errors.Conflict("email already registered", err)
	default:
		return errors.Internal(err)
	}
}
