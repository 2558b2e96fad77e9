package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/cardfeed/backend/internal/config"
	"github.com/cardfeed/backend/internal/kernel"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
)

func main() {
	// Parse command-line flags
	email := flag.String("email", "", "Email address of user to promote to admin")
	revoke := flag.Bool("revoke", false, "Revoke admin privileges instead of granting")
	flag.Parse()

	if *email == "" {
		fmt.Println("Usage: promote-admin -email=user@example.com")
		fmt.Println("       promote-admin -email=user@example.com -revoke")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	_ = logger.Initialize("warn", "-")

	ctx := context.Background()
	store, err := kernel.OpenStore(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to connect to store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close(ctx)

	user, err := store.Users().GetUserByEmail(ctx, models.NormalizeEmail(*email))
	if errors.Is(err, repository.ErrNotFound) {
		fmt.Printf("❌ User not found: %s\n", *email)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Lookup failed: %v\n", err)
		os.Exit(1)
	}

	role := models.RoleAdmin
	if *revoke {
		if !user.IsAdmin() {
			fmt.Printf("⚠️  User %s is not an admin\n", user.Email)
			return
		}
		role = models.RoleUser
	} else if user.IsAdmin() {
		fmt.Printf("⚠️  User %s is already an admin\n", user.Email)
		return
	}

	if _, err := store.Users().UpdateUser(ctx, user.ID, repository.UserPatch{Role: &role}); err != nil {
		fmt.Printf("❌ Failed to change role: %v\n", err)
		return
	}

	if *revoke {
		fmt.Printf("✓ Admin privileges revoked for %s (%s)\n", user.DisplayName(), user.Email)
		return
	}
	fmt.Printf("✓ Admin privileges granted to %s (%s)\n", user.DisplayName(), user.Email)
	fmt.Printf("  User ID: %s\n", user.ID)
	fmt.Printf("  Existing sessions pick up the new role on their next request\n")
}
