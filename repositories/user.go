//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/storage"
	"log/slog"
	"time"

	"github.com/samber/lo"
)

type IUserRepository interface {
	ListUsers() ([]domain.User, error)
	FindByUsername(username string) (domain.User, error)
	FindByID(id string) (domain.User, error)
	CreateUser(user domain.User) (domain.User, error)
	SetOnline(id string, isOnline bool) error
}

type UserRepository struct {
	store storage.Store
	log   *slog.Logger
}

func NewUserRepository(store storage.Store, log *slog.Logger) IUserRepository {
	return &UserRepository{store: store, log: log}
}

// DiskUser is the persisted shape of a user. Field names follow the
// historical users.json layout so existing data files stay readable.
type DiskUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
	IsOnline  bool      `json:"isOnline"`
}

func (u UserRepository) ListUsers() ([]domain.User, error) {
	users, err := storage.Load[DiskUser](u.store, storage.Users)
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(item DiskUser, _ int) domain.User {
		return toUser(item)
	}), nil
}

func (u UserRepository) FindByUsername(username string) (domain.User, error) {
	return u.findFirst(func(user DiskUser) bool { return user.Username == username })
}

func (u UserRepository) FindByID(id string) (domain.User, error) {
	return u.findFirst(func(user DiskUser) bool { return user.ID == id })
}

func (u UserRepository) findFirst(predicate func(DiskUser) bool) (domain.User, error) {
	users, err := storage.Load[DiskUser](u.store, storage.Users)
	if err != nil {
		return domain.User{}, err
	}
	found, ok := lo.Find(users, predicate)
	if !ok {
		return domain.User{}, errors.ErrUserNotFound
	}
	return toUser(found), nil
}

// CreateUser appends the user unless its username is already taken.
// The uniqueness check and the append run under the same collection lock.
func (u UserRepository) CreateUser(user domain.User) (domain.User, error) {
	err := storage.Modify(u.store, storage.Users, func(users []DiskUser) ([]DiskUser, error) {
		if lo.ContainsBy(users, func(existing DiskUser) bool { return existing.Username == user.Username }) {
			return nil, errors.ErrUserAlreadyExists
		}
		return append(users, fromUser(user)), nil
	})
	if err != nil {
		return domain.User{}, err
	}
	u.log.Debug("User stored", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// SetOnline flips the online flag of the user with the given id.
// An unknown id is not an error and leaves the collection as it is.
func (u UserRepository) SetOnline(id string, isOnline bool) error {
	return storage.Modify(u.store, storage.Users, func(users []DiskUser) ([]DiskUser, error) {
		_, index, ok := lo.FindIndexOf(users, func(user DiskUser) bool { return user.ID == id })
		if !ok {
			u.log.Debug("Online status of unknown user ignored", "user_id", id)
			return users, nil
		}
		users[index].IsOnline = isOnline
		return users, nil
	})
}

func toUser(u DiskUser) domain.User {
	return domain.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordHash: u.Password,
		FullName:     u.FullName,
		CreatedAt:    u.CreatedAt.UTC(),
		IsOnline:     u.IsOnline,
	}
}

func fromUser(u domain.User) DiskUser {
	return DiskUser{
		ID:        u.ID,
		Username:  u.Username,
		Password:  u.PasswordHash,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt.UTC(),
		IsOnline:  u.IsOnline,
	}
}
