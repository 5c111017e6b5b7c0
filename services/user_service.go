package services

import (
	"dm-lab/domain"
	"dm-lab/repositories"

	"github.com/samber/lo"
)

type IUserService interface {
	ListUsers(excludingID string) ([]domain.PublicUser, error)
	GetUser(id string) (domain.PublicUser, error)
}

type UserService struct {
	userRepository repositories.IUserRepository
}

func NewUserService(repo repositories.IUserRepository) *UserService {
	return &UserService{userRepository: repo}
}

// ListUsers returns every user except excludingID, without password hashes.
func (s *UserService) ListUsers(excludingID string) ([]domain.PublicUser, error) {
	users, err := s.userRepository.ListUsers()
	if err != nil {
		return nil, err
	}
	return lo.FilterMap(users, func(item domain.User, _ int) (domain.PublicUser, bool) {
		return item.Public(), item.ID != excludingID
	}), nil
}

func (s *UserService) GetUser(id string) (domain.PublicUser, error) {
	user, err := s.userRepository.FindByID(id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}
