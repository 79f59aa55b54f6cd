package crowdfund

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

var validate = validator.New()

// registration holds the fields checked before a backer is created.
type registration struct {
	Username string `validate:"required,max=64"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Backer is a registered identity that may submit pledges.
type Backer struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Backers registers and authenticates backers.
type Backers struct {
	repo Repository[int64, Backer]
	cost int // bcrypt cost

	mu sync.Mutex // keeps username and email unique
}

// NewBackers returns a backer registry over the given collection.
func NewBackers(repo Repository[int64, Backer]) *Backers {
	return &Backers{repo: repo, cost: bcrypt.DefaultCost}
}

// Register creates a backer. Usernames and emails are unique, ignoring case.
func (b *Backers) Register(username, email, password string) (Backer, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if err := checkRegistration(registration{username, email, password}); err != nil {
		return Backer{}, err
	}
	var errs error

	b.mu.Lock()
	defer b.mu.Unlock()

	taken, err := b.repo.List(func(x Backer) bool {
		return strings.EqualFold(x.Username, username) || strings.EqualFold(x.Email, email)
	})
	if err != nil {
		return Backer{}, err
	}
	for _, x := range taken {
		if strings.EqualFold(x.Username, username) {
			errs = errors.Join(errs, fmt.Errorf("%w: %q", ErrUsernameTaken, username))
		}
		if strings.EqualFold(x.Email, email) {
			errs = errors.Join(errs, fmt.Errorf("%w: %q", ErrEmailTaken, email))
		}
	}
	if errs != nil {
		return Backer{}, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return Backer{}, fmt.Errorf("cannot hash password: %w", err)
	}
	return b.repo.Insert(Backer{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
}

func checkRegistration(r registration) error {
	err := validate.Struct(r)
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) {
		return err
	}
	var errs error
	for _, f := range fields {
		name := strings.ToLower(f.Field())
		if f.Tag() == "required" {
			errs = errors.Join(errs, fmt.Errorf("%s is missing", name))
			continue
		}
		errs = errors.Join(errs, fmt.Errorf("invalid %s %q: %s", name, f.Value(), f.Tag()))
	}
	return errs
}

// Get returns the backer with this id, and false if there is none.
func (b *Backers) Get(id int64) (Backer, bool, error) { return b.repo.Get(id) }

// ByUsername returns the backer with this username, ignoring case.
func (b *Backers) ByUsername(username string) (Backer, bool, error) {
	list, err := b.repo.List(func(x Backer) bool { return strings.EqualFold(x.Username, username) })
	if err != nil || len(list) == 0 {
		return Backer{}, false, err
	}
	return list[0], true, nil
}

// Authenticate returns the backer if password matches its credentials.
func (b *Backers) Authenticate(username, password string) (Backer, error) {
	backer, ok, err := b.ByUsername(username)
	if err != nil {
		return Backer{}, err
	}
	if !ok {
		return Backer{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(backer.PasswordHash), []byte(password)); err != nil {
		return Backer{}, ErrInvalidCredentials
	}
	return backer, nil
}
