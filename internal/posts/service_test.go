package posts

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	apierrors "github.com/cardfeed/backend/internal/errors"
	"github.com/cardfeed/backend/internal/models"
	"github.com/cardfeed/backend/internal/repository"
	"github.com/cardfeed/backend/internal/repository/sqlstore"
	"github.com/cardfeed/backend/internal/testutil"
)

// recordingInvalidator remembers every invalidated path
type recordingInvalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingInvalidator) InvalidatePaths(ctx context.Context, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
	return nil
}

type PostServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *sqlstore.Store
	cache   *recordingInvalidator
	service *Service
	author  *models.User
}

func (s *PostServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore(s.T())
	s.cache = &recordingInvalidator{}
	s.service = NewService(s.store, s.cache)
	s.author = testutil.CreateUser(s.T(), s.store, "Writer")
}

func (s *PostServiceTestSuite) TestCreateDerivesExcerptAndSlug() {
	post, err := s.service.Create(s.ctx, s.author, CreateInput{
		Title:    "  Hello, World!  ",
		Content:  "<h1>Intro</h1><p>Some <b>bold</b> text.</p><script>alert(1)</script>",
		Category: "technology",
	})
	s.Require().NoError(err)
	s.Equal("Hello, World!", post.Title)
	s.Equal("Intro Some bold text.", post.Excerpt)
	s.Regexp(`^hello-world-[0-9a-f]{8}$`, post.Slug)
	s.Equal(s.author.Summary(), post.Author)
	s.Contains(s.cache.paths, "/api/v1/posts")

	bySlug, err := s.service.GetBySlug(s.ctx, post.Slug)
	s.Require().NoError(err)
	s.Equal(post.ID, bySlug.ID)
}

func (s *PostServiceTestSuite) TestCreateValidation() {
	cases := map[string]struct {
		in    CreateInput
		field string
	}{
		"empty title":      {CreateInput{Title: " ", Content: "x", Category: "food"}, "title"},
		"empty content":    {CreateInput{Title: "t", Content: "  ", Category: "food"}, "content"},
		"unknown category": {CreateInput{Title: "t", Content: "x", Category: "astrology"}, "category"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			_, err := s.service.Create(s.ctx, s.author, tc.in)
			var apiErr *apierrors.APIError
			s.Require().ErrorAs(err, &apiErr)
			s.Equal(tc.field, apiErr.Field)
		})
	}
}

func (s *PostServiceTestSuite) TestUpdateIsAuthorOnly() {
	post := testutil.CreatePost(s.T(), s.store, s.author, "design")
	stranger := testutil.CreateUser(s.T(), s.store, "Stranger")

	title := "A New Title"
	_, err := s.service.Update(s.ctx, stranger, post.ID, UpdateInput{Title: &title})
	s.ErrorIs(err, ErrNotAuthor)

	updated, err := s.service.Update(s.ctx, s.author, post.ID, UpdateInput{Title: &title})
	s.Require().NoError(err)
	s.Equal(title, updated.Title)
	s.Equal(deriveSlug(title, post.ID), updated.Slug)
	s.Contains(s.cache.paths, "/api/v1/posts/slug/"+post.Slug)
}

func (s *PostServiceTestSuite) TestDeleteByAuthorOrAdmin() {
	post := testutil.CreatePost(s.T(), s.store, s.author, "design")
	stranger := testutil.CreateUser(s.T(), s.store, "Stranger")
	s.ErrorIs(s.service.Delete(s.ctx, stranger, post.ID), ErrNotOwner)

	admin := testutil.CreateUser(s.T(), s.store, "Admin")
	admin.Role = models.RoleAdmin
	s.NoError(s.service.Delete(s.ctx, admin, post.ID))

	_, err := s.service.Get(s.ctx, post.ID)
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostServiceTestSuite) TestListFiltersAndClamps() {
	testutil.CreatePost(s.T(), s.store, s.author, "travel")
	testutil.CreatePost(s.T(), s.store, s.author, "travel")
	testutil.CreatePost(s.T(), s.store, s.author, "food")

	list, total, err := s.service.List(s.ctx, repository.PostQuery{Category: "travel", Limit: 500})
	s.Require().NoError(err)
	s.EqualValues(2, total)
	s.Len(list, 2)

	_, _, err = s.service.List(s.ctx, repository.PostQuery{Category: "nope"})
	s.Error(err)
}

func (s *PostServiceTestSuite) TestCategoriesIncludeEmpty() {
	testutil.CreatePost(s.T(), s.store, s.author, "science")

	views, err := s.service.Categories(s.ctx)
	s.Require().NoError(err)
	s.Len(views, len(models.Categories))
	for _, v := range views {
		if v.Slug == "science" {
			s.EqualValues(1, v.Count)
		} else {
			s.Zero(v.Count)
		}
	}
}

func (s *PostServiceTestSuite) TestRefreshAuthorSnapshots() {
	post := testutil.CreatePost(s.T(), s.store, s.author, "culture")
	s.author.FirstName = "Renamed"

	n, err := s.service.RefreshAuthorSnapshots(s.ctx, s.author)
	s.Require().NoError(err)
	s.EqualValues(1, n)

	got, err := s.service.Get(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal("Renamed Tester", got.Author.Name)
}

func TestPostServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PostServiceTestSuite))
}

func TestDeriveSlug(t *testing.T) {
	assert.Equal(t, "hello-world-12345678", deriveSlug("Hello World", "aaaa-1234-5678"))
	assert.Equal(t, "post-abc", deriveSlug("¿¿", "abc"))
}
