package repositories

import (
	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/storage"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) storage.Store {
	s := storage.NewFileStore(t.TempDir(), logs.GetLoggerFromLevel(slog.LevelDebug), storage.Options{})
	require.NoError(t, s.EnsureReady())
	return s
}

func newUser(username string) domain.User {
	return domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "$2a$10$hash",
		FullName:     username,
		CreatedAt:    time.Now().UTC(),
	}
}

func Test_Create_And_Find_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newFileStore(t), slog.Default())
	alice := newUser("alice")

	created, err := repository.CreateUser(alice)
	req.NoError(err)
	req.Equal(alice, created)

	byName, err := repository.FindByUsername("alice")
	req.NoError(err)
	req.Equal(alice.ID, byName.ID)
	req.Equal(alice.PasswordHash, byName.PasswordHash)
	req.True(alice.CreatedAt.Equal(byName.CreatedAt))

	byID, err := repository.FindByID(alice.ID)
	req.NoError(err)
	req.Equal("alice", byID.Username)
}

func Test_Find_Is_Case_Sensitive(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newFileStore(t), slog.Default())
	_, err := repository.CreateUser(newUser("alice"))
	req.NoError(err)

	_, err = repository.FindByUsername("Alice")
	req.ErrorIs(err, errors.ErrUserNotFound)
	_, err = repository.FindByID("missing")
	req.ErrorIs(err, errors.ErrUserNotFound)

	_, err = repository.CreateUser(newUser("Alice"))
	req.NoError(err, "usernames differing only by case are distinct")
}

func Test_Duplicate_Username_Is_Rejected(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newFileStore(t), slog.Default())
	_, err := repository.CreateUser(newUser("alice"))
	req.NoError(err)

	_, err = repository.CreateUser(newUser("alice"))
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 1)
}

func Test_Concurrent_Registration_Of_Same_Username(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newFileStore(t), slog.Default())

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repository.CreateUser(newUser("alice"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	}
	req.Equal(1, succeeded)

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 1)
}

func Test_List_Users_Keeps_Insertion_Order(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newFileStore(t), slog.Default())
	for _, name := range []string{"carol", "alice", "bob"} {
		_, err := repository.CreateUser(newUser(name))
		req.NoError(err)
	}

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Equal([]string{"carol", "alice", "bob"},
		[]string{users[0].Username, users[1].Username, users[2].Username})
}

func Test_Set_Online(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newFileStore(t), slog.Default())
	alice, err := repository.CreateUser(newUser("alice"))
	req.NoError(err)
	bob, err := repository.CreateUser(newUser("bob"))
	req.NoError(err)

	req.NoError(repository.SetOnline(alice.ID, true))
	found, err := repository.FindByID(alice.ID)
	req.NoError(err)
	req.True(found.IsOnline)

	other, err := repository.FindByID(bob.ID)
	req.NoError(err)
	req.False(other.IsOnline)

	req.NoError(repository.SetOnline(alice.ID, false))
	found, err = repository.FindByID(alice.ID)
	req.NoError(err)
	req.False(found.IsOnline)
}

func Test_Set_Online_Unknown_User_Is_A_No_Op(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(newFileStore(t), slog.Default())
	_, err := repository.CreateUser(newUser("alice"))
	req.NoError(err)

	req.NoError(repository.SetOnline("ghost", true))

	users, err := repository.ListUsers()
	req.NoError(err)
	req.Len(users, 1)
	req.False(users[0].IsOnline)
}

func Test_Corrupted_Users_Collection_Surfaces_Read_Error(t *testing.T) {
	req := require.New(t)
	s := newFileStore(t)
	req.NoError(s.WriteCollection(storage.Users, nil))
	req.NoError(s.UpdateCollection(storage.Users, func(_ []json.RawMessage) ([]json.RawMessage, error) {
		return []json.RawMessage{json.RawMessage(`{"id":1}`)}, nil
	}))
	repository := NewUserRepository(s, slog.Default())

	_, err := repository.FindByUsername("alice")
	req.ErrorIs(err, errors.ErrStorageRead)
}
