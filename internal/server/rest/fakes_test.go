package rest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/logging"
	"github.com/dmitrijs2005/foodgram/internal/server/auth"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
)

const testSecret = "secret"

type fakeUsers struct {
	registered *models.User
	regErr     error
	token      string
	loginErr   error
	passErr    error
	user       *models.User
	profile    *models.UserProfile
	list       []*models.UserProfile
	total      int64
	err        error

	gotPrefix string
	gotPage   models.Page
	gotViewer int64
}

func (f *fakeUsers) Register(_ context.Context, u *models.User, _ string) (*models.User, error) {
	if f.regErr != nil {
		return nil, f.regErr
	}
	u.ID = 1
	f.registered = u
	return u, nil
}
func (f *fakeUsers) Login(context.Context, string, string) (string, error) { return f.token, f.loginErr }
func (f *fakeUsers) SetPassword(context.Context, int64, string, string) error {
	return f.passErr
}
func (f *fakeUsers) Get(context.Context, int64) (*models.User, error) { return f.user, f.err }
func (f *fakeUsers) UpdateProfile(_ context.Context, _ int64, upd models.UserUpdate) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if upd.FirstName != nil {
		f.user.FirstName = *upd.FirstName
	}
	if upd.AvatarKey != nil {
		f.user.AvatarKey = *upd.AvatarKey
	}
	return f.user, nil
}
func (f *fakeUsers) Profile(_ context.Context, viewer, _ int64) (*models.UserProfile, error) {
	f.gotViewer = viewer
	return f.profile, f.err
}
func (f *fakeUsers) List(_ context.Context, viewer int64, prefix string, page models.Page) ([]*models.UserProfile, int64, error) {
	f.gotViewer, f.gotPrefix, f.gotPage = viewer, prefix, page
	return f.list, f.total, f.err
}

type fakeRecipes struct {
	details *models.RecipeDetails
	list    []*models.RecipeDetails
	total   int64
	err     error

	listCalls int
	gotFilter models.RecipeFilter
	gotInput  models.RecipeInput
	gotUpdate models.RecipeUpdate
	gotUser   int64
}

func (f *fakeRecipes) Create(_ context.Context, author int64, in models.RecipeInput) (*models.RecipeDetails, error) {
	f.gotUser, f.gotInput = author, in
	return f.details, f.err
}
func (f *fakeRecipes) Update(_ context.Context, user, _ int64, upd models.RecipeUpdate) (*models.RecipeDetails, error) {
	f.gotUser, f.gotUpdate = user, upd
	return f.details, f.err
}
func (f *fakeRecipes) Delete(_ context.Context, user, _ int64) error {
	f.gotUser = user
	return f.err
}
func (f *fakeRecipes) Get(_ context.Context, viewer, _ int64) (*models.RecipeDetails, error) {
	f.gotUser = viewer
	return f.details, f.err
}
func (f *fakeRecipes) List(_ context.Context, viewer int64, filter models.RecipeFilter) ([]*models.RecipeDetails, int64, error) {
	f.listCalls++
	f.gotUser, f.gotFilter = viewer, filter
	return f.list, f.total, f.err
}

type fakeActions struct {
	summary *models.RecipeSummary
	card    *models.AuthorCard
	cards   []*models.AuthorCard
	total   int64
	err     error

	gotKind  models.RelationKind
	gotLimit int
}

func (f *fakeActions) AddRecipeRelation(_ context.Context, kind models.RelationKind, _, _ int64) (*models.RecipeSummary, error) {
	f.gotKind = kind
	return f.summary, f.err
}
func (f *fakeActions) RemoveRecipeRelation(_ context.Context, kind models.RelationKind, _, _ int64) error {
	f.gotKind = kind
	return f.err
}
func (f *fakeActions) Subscribe(_ context.Context, _, _ int64, limit int) (*models.AuthorCard, error) {
	f.gotLimit = limit
	return f.card, f.err
}
func (f *fakeActions) Unsubscribe(context.Context, int64, int64) error { return f.err }
func (f *fakeActions) Subscriptions(_ context.Context, _ int64, _ models.Page, limit int) ([]*models.AuthorCard, int64, error) {
	f.gotLimit = limit
	return f.cards, f.total, f.err
}

type fakeShopping struct {
	items []models.ShoppingItem
	err   error
}

func (f *fakeShopping) Aggregate(context.Context, int64) ([]models.ShoppingItem, error) {
	return f.items, f.err
}

type fakeCatalog struct {
	tags        []*models.Tag
	ingredients []*models.Ingredient
	err         error
	gotPrefix   string
}

func (f *fakeCatalog) Tags(context.Context) ([]*models.Tag, error) { return f.tags, f.err }
func (f *fakeCatalog) Tag(_ context.Context, id int64) (*models.Tag, error) {
	for _, t := range f.tags {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, notFound()
}
func (f *fakeCatalog) Ingredients(_ context.Context, prefix string) ([]*models.Ingredient, error) {
	f.gotPrefix = prefix
	return f.ingredients, f.err
}
func (f *fakeCatalog) Ingredient(_ context.Context, id int64) (*models.Ingredient, error) {
	for _, i := range f.ingredients {
		if i.ID == id {
			return i, nil
		}
	}
	return nil, notFound()
}

type fakeImages struct{ err error }

func (f *fakeImages) PresignUpload(context.Context) (string, string, error) {
	return "recipes/k", "http://s3/put/recipes/k", f.err
}
func (f *fakeImages) PresignAvatarUpload(context.Context) (string, string, error) {
	return "users/k", "http://s3/put/users/k", f.err
}
func (f *fakeImages) URL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "http://s3/" + key, f.err
}

type fakeLinks struct {
	link   string
	target string
	err    error
}

func (f *fakeLinks) ShortLink(context.Context, int64) (string, error) { return f.link, f.err }
func (f *fakeLinks) Resolve(context.Context, string) (string, error)  { return f.target, f.err }

type fixture struct {
	users    *fakeUsers
	recipes  *fakeRecipes
	actions  *fakeActions
	shopping *fakeShopping
	catalog  *fakeCatalog
	images   *fakeImages
	links    *fakeLinks
	logs     *bytes.Buffer
	handler  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:    &fakeUsers{},
		recipes:  &fakeRecipes{},
		actions:  &fakeActions{},
		shopping: &fakeShopping{},
		catalog:  &fakeCatalog{},
		images:   &fakeImages{},
		links:    &fakeLinks{},
		logs:     &bytes.Buffer{},
	}
	srv := NewHTTPServer(":0", logging.New(logging.FormatJSON, f.logs), Services{
		Users:    f.users,
		Recipes:  f.recipes,
		Actions:  f.actions,
		Shopping: f.shopping,
		Catalog:  f.catalog,
		Images:   f.images,
		Links:    f.links,
	}, testSecret, 2, 20, "http://foodgram.test")
	f.handler = srv.Router()
	return f
}

func token(t *testing.T, id int64) string {
	t.Helper()
	tok, err := auth.GenerateToken(id, []byte(testSecret), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return tok
}

// do performs a request; userID 0 sends no Authorization header.
func (f *fixture) do(t *testing.T, method, target, body string, userID int64) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		req.Header.Set("Authorization", "Token "+token(t, userID))
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func notFound() error { return common.ErrorNotFound }

func (f *fixture) newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}
