package identity

import (
	"context"
	"errors"
	"sort"

	"github.com/opsboard/backend/internal/domain/identity"
	"github.com/opsboard/backend/internal/domain/shared"
)

// UserService answers "who is this user" for the rest of the application
type UserService struct {
	userRepo identity.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ResolveActor returns the authorization view of an active user. Unknown or
// inactive users are unauthorized.
func (s *UserService) ResolveActor(ctx context.Context, userID string) (identity.Actor, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return identity.Actor{}, shared.NewDomainError(shared.CodeUnauthorized, "Unknown user "+userID)
		}
		return identity.Actor{}, err
	}
	if !user.Active {
		return identity.Actor{}, shared.NewDomainError(shared.CodeUnauthorized, "User "+userID+" is not active")
	}
	return user.Actor(), nil
}

// List returns all users ordered by username
func (s *UserService) List(ctx context.Context) ([]UserInfo, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	out := make([]UserInfo, 0, len(users))
	for i := range users {
		out = append(out, ToUserInfo(&users[i]))
	}
	return out, nil
}
