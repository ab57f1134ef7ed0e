package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/campus-coins/backend/internal/domain/entity"
	domainerror "github.com/campus-coins/backend/internal/domain/error"
)

// memoryRepository is an in-memory AccountRepository for one role.
type memoryRepository[T entity.Holder] struct {
	mu       sync.Mutex
	nextID   uint
	accounts []T
	// skipPrecheck makes Exists* report false so Create's own uniqueness check is exercised.
	skipPrecheck bool
}

func newMemoryRepository[T entity.Holder]() *memoryRepository[T] {
	return &memoryRepository[T]{nextID: 1}
}

func (r *memoryRepository[T]) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skipPrecheck {
		return false, nil
	}
	for _, a := range r.accounts {
		if a.AccountRef().Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository[T]) ExistsBySecondaryID(_ context.Context, secondaryID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skipPrecheck {
		return false, nil
	}
	for _, a := range r.accounts {
		if a.SecondaryID() == secondaryID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository[T]) FindByEmail(_ context.Context, email string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.AccountRef().Email == email {
			return a, nil
		}
	}
	var zero T
	return zero, nil
}

func (r *memoryRepository[T]) Create(_ context.Context, account T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.AccountRef().Email == account.AccountRef().Email {
			return domainerror.ErrDuplicateEmail
		}
		if a.SecondaryID() == account.SecondaryID() {
			return domainerror.ErrDuplicateSecondaryID
		}
	}
	account.AccountRef().ID = r.nextID
	r.nextID++
	r.accounts = append(r.accounts, account)
	return nil
}

func (r *memoryRepository[T]) UpdateCredentialHash(_ context.Context, id uint, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.AccountRef().ID == id {
			a.AccountRef().PasswordHash = passwordHash
			return nil
		}
	}
	return domainerror.ErrAccountNotFound
}

// panickingRepository fails the test process if any store method is reached.
type panickingRepository[T entity.Holder] struct{}

func (panickingRepository[T]) ExistsByEmail(context.Context, string) (bool, error) {
	panic("store accessed")
}

func (panickingRepository[T]) ExistsBySecondaryID(context.Context, string) (bool, error) {
	panic("store accessed")
}

func (panickingRepository[T]) FindByEmail(context.Context, string) (T, error) {
	panic("store accessed")
}

func (panickingRepository[T]) Create(context.Context, T) error {
	panic("store accessed")
}

func (panickingRepository[T]) UpdateCredentialHash(context.Context, uint, string) error {
	panic("store accessed")
}

// fakePasswordService salts with a counter so equal passwords hash differently.
type fakePasswordService struct {
	mu      sync.Mutex
	counter int
}

func (s *fakePasswordService) HashPassword(password string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	return fmt.Sprintf("hashed:%d:%s", s.counter, password), nil
}

func (s *fakePasswordService) VerifyPassword(hashedPassword, password string) error {
	parts := strings.SplitN(hashedPassword, ":", 3)
	if len(parts) != 3 || parts[0] != "hashed" || parts[2] != password {
		return errors.New("mismatch")
	}
	return nil
}

// countingTransactor runs fn directly and records how many transactions were opened.
type countingTransactor struct {
	mu    sync.Mutex
	calls int
}

func (t *countingTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return fn(ctx)
}
