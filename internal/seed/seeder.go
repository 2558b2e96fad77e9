// Package seed loads default accounts and generates fake development data.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/cardfeed/backend/internal/interactions"
	"github.com/cardfeed/backend/internal/logger"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/notifications"
	"github.com/cardfeed/backend/internal/posts"
	"github.com/cardfeed/backend/internal/repository"
)

// Seeder handles database seeding operations
type Seeder struct {
	store    repository.Store
	posts    *posts.Service
	engine   *interactions.Engine
	password string
}

// NewSeeder creates a new seeder instance. seed fixes the generated data;
// 0 picks a random seed.
func NewSeeder(store repository.Store, seed int64) *Seeder {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(seed)
	return &Seeder{
		store:    store,
		posts:    posts.NewService(store, nil),
		engine:   interactions.NewEngine(store, notifications.NewCreator(store.Notifications()), nil),
		password: "cardfeed",
	}
}

// Counts sizes one seeding run
type Counts struct {
	Users    int
	Posts    int
	Likes    int
	Comments int
}

// Dev sizes a realistic local dataset
var Dev = Counts{Users: 40, Posts: 150, Likes: 600, Comments: 300}

// Test sizes a small deterministic dataset for integration runs
var Test = Counts{Users: 5, Posts: 12, Likes: 20, Comments: 10}

// Seed generates users, posts and interactions. Interactions go through the
// interaction engine so notifications are produced the same way as in use.
func (s *Seeder) Seed(ctx context.Context, counts Counts) error {
	logger.Log.Info("Creating users...", zap.Int("count", counts.Users))
	users, err := s.seedUsers(ctx, counts.Users)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating posts...", zap.Int("count", counts.Posts))
	created, err := s.seedPosts(ctx, users, counts.Posts)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating likes and comments...")
	if err := s.seedInteractions(ctx, users, created, counts); err != nil {
		return fmt.Errorf("failed to seed interactions: %w", err)
	}

	logger.Log.Info("✅ Seeding complete",
		zap.Int("users", len(users)),
		zap.Int("posts", len(created)))
	return nil
}

// Clean removes all seeded data
func (s *Seeder) Clean(ctx context.Context) error {
	if err := s.store.Clean(ctx); err != nil {
		return fmt.Errorf("failed to clean store: %w", err)
	}
	logger.Log.Info("✅ Store cleaned")
	return nil
}

func (s *Seeder) seedUsers(ctx context.Context, count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		first, last := gofakeit.FirstName(), gofakeit.LastName()
		account := DefaultUser{
			Email:     fmt.Sprintf("%s.%s.%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			Password:  s.password,
			FirstName: first,
			LastName:  last,
			Bio:       gofakeit.HipsterSentence(),
		}
		if _, err := ensureUser(ctx, s.store, account); err != nil {
			return nil, err
		}
		user, err := s.store.Users().GetUserByEmail(ctx, account.Email)
		if err != nil {
			return nil, err
		}
		if avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%s", user.ID); user.ProfileImage == "" {
			if updated, err := s.store.Users().UpdateUser(ctx, user.ID, repository.UserPatch{ProfileImage: &avatar}); err == nil {
				user = updated
			}
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedPosts(ctx context.Context, users []*models.User, count int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}
	created := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[gofakeit.IntRange(0, len(users)-1)]
		category := models.Categories[gofakeit.IntRange(0, len(models.Categories)-1)]

		var body strings.Builder
		for p := gofakeit.IntRange(2, 5); p > 0; p-- {
			body.WriteString("<p>")
			for n := gofakeit.IntRange(2, 4); n > 0; n-- {
				body.WriteString(gofakeit.HipsterSentence())
				body.WriteByte(' ')
			}
			body.WriteString("</p>")
		}

		post, err := s.posts.Create(ctx, author, posts.CreateInput{
			Title:    title(gofakeit.HipsterSentence()),
			Content:  body.String(),
			Category: category.Slug,
			Image:    fmt.Sprintf("https://picsum.photos/seed/%s/800/450", gofakeit.Word()),
		})
		if err != nil {
			return nil, err
		}
		created = append(created, post)
	}
	return created, nil
}

func (s *Seeder) seedInteractions(ctx context.Context, users []*models.User, created []*models.Post, counts Counts) error {
	if len(users) == 0 || len(created) == 0 {
		return nil
	}
	// skew toward earlier posts so popularity sorting has something to show
	pick := func() *models.Post {
		f := gofakeit.Float64Range(0, 1)
		return created[int(float64(len(created)-1)*f*f)]
	}

	for i := 0; i < counts.Likes; i++ {
		post := pick()
		user := users[gofakeit.IntRange(0, len(users)-1)]
		if post.IsLikedBy(user.ID) {
			continue
		}
		res, err := s.engine.ToggleLike(ctx, post.ID, user)
		if err != nil {
			return err
		}
		*post = *res.Post
	}

	for i := 0; i < counts.Comments; i++ {
		post := pick()
		user := users[gofakeit.IntRange(0, len(users)-1)]
		if _, err := s.engine.AddComment(ctx, post.ID, user, gofakeit.HipsterSentence()); err != nil {
			return err
		}
	}

	for i := 0; i < counts.Likes/4; i++ {
		if _, err := s.engine.IncrementShare(ctx, pick().ID); err != nil {
			return err
		}
	}
	return nil
}

// title turns a generated sentence into a headline of at most eight words
func title(sentence string) string {
	words := strings.Fields(strings.TrimSuffix(sentence, "."))
	if len(words) > 8 {
		words = words[:8]
	}
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
