package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/auth"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

// DefaultUser is one account created by LoadDefaults
type DefaultUser struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Bio       string
	Role      models.Role
}

// DemoUsers are the accounts available on a fresh local install
func DemoUsers() []DefaultUser {
	return []DefaultUser{
		{Email: "ava@cardfeed.dev", Password: "cardfeed", FirstName: "Ava", LastName: "Lindqvist", Bio: "Writes about design systems."},
		{Email: "noah@cardfeed.dev", Password: "cardfeed", FirstName: "Noah", LastName: "Okafor", Bio: "Backend engineer and weekend cyclist."},
		{Email: "mia@cardfeed.dev", Password: "cardfeed", FirstName: "Mia", LastName: "Tanaka", Bio: "Food, travel and the occasional recipe."},
	}
}

// Defaults lists the accounts LoadDefaults ensures exist
type Defaults struct {
	AdminEmail    string
	AdminPassword string
	Users         []DefaultUser
}

// LoadDefaults creates each default account that does not exist yet. It is
// safe to call on every start; existing accounts are left untouched except
// that the configured admin is promoted if needed.
func LoadDefaults(ctx context.Context, store repository.Store, defaults Defaults) (int, error) {
	accounts := make([]DefaultUser, 0, len(defaults.Users)+1)
	if defaults.AdminEmail != "" && defaults.AdminPassword != "" {
		accounts = append(accounts, DefaultUser{
			Email:     defaults.AdminEmail,
			Password:  defaults.AdminPassword,
			FirstName: "Admin",
			Role:      models.RoleAdmin,
		})
	}
	accounts = append(accounts, defaults.Users...)

	created := 0
	for _, account := range accounts {
		ok, err := ensureUser(ctx, store, account)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", account.Email, err)
		}
		if ok {
			created++
		}
	}
	if created > 0 {
		logger.Log.Info("✅ Default users loaded", zap.Int("created", created))
	}
	return created, nil
}

func ensureUser(ctx context.Context, store repository.Store, account DefaultUser) (bool, error) {
	email := models.NormalizeEmail(account.Email)
	role := account.Role
	if role == "" {
		role = models.RoleUser
	}

	existing, err := store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if role == models.RoleAdmin && !existing.IsAdmin() {
			_, err = store.Users().UpdateUser(ctx, existing.ID, repository.UserPatch{Role: &role})
		}
		return false, err
	case !errors.Is(err, repository.ErrNotFound):
		return false, err
	}

	hash, err := auth.HashPassword(account.Password)
	if err != nil {
		return false, err
	}
	provider := models.ProviderEmail
	if role == models.RoleAdmin {
		provider = models.ProviderAdminCreated
	}
	user := &models.User{
		ID:        store.NewID(),
		Email:     email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Bio:       account.Bio,
		Password:  &hash,
		Role:      role,
		Provider:  provider,
	}
	if err := store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
