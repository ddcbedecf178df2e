package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/foodgram/internal/common"
	"github.com/dmitrijs2005/foodgram/internal/dbx"
	"github.com/dmitrijs2005/foodgram/internal/server/models"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/ingredients"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/relations"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/tags"
	"github.com/dmitrijs2005/foodgram/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeEdge struct {
	id      int64
	kind    models.RelationKind
	subject int64
	object  int64
}

// memDB backs every fake repository. It mimics the constraints the real
// schema enforces: unique edges, the self-subscription check and foreign keys.
type memDB struct {
	mu sync.Mutex

	seq               int64
	users             map[int64]*models.User
	tags              map[int64]*models.Tag
	ingredients       map[int64]*models.Ingredient
	recipes           map[int64]*models.Recipe
	recipeTags        map[int64][]int64
	recipeIngredients map[int64][]models.IngredientAmount
	edges             []fakeEdge

	failOn map[string]error
	calls  []string
}

func newMemDB() *memDB {
	return &memDB{
		users:             map[int64]*models.User{},
		tags:              map[int64]*models.Tag{},
		ingredients:       map[int64]*models.Ingredient{},
		recipes:           map[int64]*models.Recipe{},
		recipeTags:        map[int64][]int64{},
		recipeIngredients: map[int64][]models.IngredientAmount{},
		failOn:            map[string]error{},
	}
}

func (m *memDB) enter(name string) error {
	m.calls = append(m.calls, name)
	return m.failOn[name]
}

func (m *memDB) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *memDB) addUser(name string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: m.nextID(), Email: name + "@example.com", UserName: name, FirstName: strings.ToUpper(name[:1]) + name[1:], Role: models.RoleUser}
	m.users[u.ID] = u
	return u
}

func (m *memDB) addTag(name string) *models.Tag {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &models.Tag{ID: m.nextID(), Name: name, Slug: strings.ToLower(name)}
	m.tags[t.ID] = t
	return t
}

func (m *memDB) addIngredient(name, unit string) *models.Ingredient {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := &models.Ingredient{ID: m.nextID(), Name: name, MeasurementUnit: unit}
	m.ingredients[i.ID] = i
	return i
}

func (m *memDB) addRecipe(authorID int64, name string, tagIDs []int64, items []models.IngredientAmount) *models.Recipe {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &models.Recipe{ID: m.nextID(), AuthorID: authorID, Name: name, Text: name + " text", CookingTime: 10, PubDate: time.Unix(m.seq, 0)}
	m.recipes[r.ID] = r
	m.recipeTags[r.ID] = tagIDs
	m.recipeIngredients[r.ID] = items
	return r
}

func (m *memDB) addEdge(kind models.RelationKind, subject, object int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges = append(m.edges, fakeEdge{id: m.nextID(), kind: kind, subject: subject, object: object})
}

func (m *memDB) edgeCount(kind models.RelationKind, subject int64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.edges {
		if e.kind == kind && e.subject == subject {
			n++
		}
	}
	return n
}

type fakeRepoManager struct{ mem *memDB }

func newFakeRepoManager() (*fakeRepoManager, *memDB) {
	mem := newMemDB()
	return &fakeRepoManager{mem: mem}, mem
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return &fakeUsersRepo{m.mem} }
func (m *fakeRepoManager) Tags(dbx.DBTX) tags.Repository               { return &fakeTagsRepo{m.mem} }
func (m *fakeRepoManager) Ingredients(dbx.DBTX) ingredients.Repository { return &fakeIngredientsRepo{m.mem} }
func (m *fakeRepoManager) Recipes(dbx.DBTX) recipes.Repository         { return &fakeRecipesRepo{m.mem} }
func (m *fakeRepoManager) Relations(dbx.DBTX) relations.Repository     { return &fakeRelationsRepo{m.mem} }

// --- users ---

type fakeUsersRepo struct{ m *memDB }

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("users.Create"); err != nil {
		return nil, err
	}
	for _, existing := range f.m.users {
		if existing.Email == u.Email || existing.UserName == u.UserName {
			return nil, common.ErrorAlreadyExists
		}
	}
	u.ID = f.m.nextID()
	f.m.users[u.ID] = u
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range f.m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("users.GetByID"); err != nil {
		return nil, err
	}
	if u, ok := f.m.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) matching(prefix string) []*models.User {
	var out []*models.User
	for _, u := range f.m.users {
		if strings.HasPrefix(u.UserName, prefix) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeUsersRepo) List(_ context.Context, prefix string, page models.Page) ([]*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("users.List"); err != nil {
		return nil, err
	}
	return paginate(f.matching(prefix), page), nil
}

func (f *fakeUsersRepo) Count(_ context.Context, prefix string) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("users.Count"); err != nil {
		return 0, err
	}
	return int64(len(f.matching(prefix))), nil
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, id int64, first, last, avatar string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("users.UpdateProfile"); err != nil {
		return err
	}
	u, ok := f.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.FirstName, u.LastName, u.AvatarKey = first, last, avatar
	return nil
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id int64, hash []byte) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("users.UpdatePassword"); err != nil {
		return err
	}
	u, ok := f.m.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

// --- tags & ingredients ---

type fakeTagsRepo struct{ m *memDB }

func (f *fakeTagsRepo) List(context.Context) ([]*models.Tag, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("tags.List"); err != nil {
		return nil, err
	}
	var out []*models.Tag
	for _, t := range f.m.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTagsRepo) GetByID(_ context.Context, id int64) (*models.Tag, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if t, ok := f.m.tags[id]; ok {
		return t, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeTagsRepo) FindByIDs(_ context.Context, ids []int64) ([]*models.Tag, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("tags.FindByIDs"); err != nil {
		return nil, err
	}
	var out []*models.Tag
	for _, id := range ids {
		if t, ok := f.m.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeIngredientsRepo struct{ m *memDB }

func (f *fakeIngredientsRepo) Search(_ context.Context, prefix string) ([]*models.Ingredient, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("ingredients.Search"); err != nil {
		return nil, err
	}
	var out []*models.Ingredient
	for _, i := range f.m.ingredients {
		if strings.HasPrefix(strings.ToLower(i.Name), strings.ToLower(prefix)) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Name < out[b].Name })
	return out, nil
}

func (f *fakeIngredientsRepo) GetByID(_ context.Context, id int64) (*models.Ingredient, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if i, ok := f.m.ingredients[id]; ok {
		return i, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIngredientsRepo) FindByIDs(_ context.Context, ids []int64) ([]*models.Ingredient, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("ingredients.FindByIDs"); err != nil {
		return nil, err
	}
	var out []*models.Ingredient
	for _, id := range ids {
		if i, ok := f.m.ingredients[id]; ok {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeIngredientsRepo) BulkCreate(_ context.Context, items []*models.Ingredient) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("ingredients.BulkCreate"); err != nil {
		return 0, err
	}
	var n int64
outer:
	for _, it := range items {
		for _, existing := range f.m.ingredients {
			if existing.Name == it.Name && existing.MeasurementUnit == it.MeasurementUnit {
				continue outer
			}
		}
		id := f.m.nextID()
		f.m.ingredients[id] = &models.Ingredient{ID: id, Name: it.Name, MeasurementUnit: it.MeasurementUnit}
		n++
	}
	return n, nil
}

// --- recipes ---

type fakeRecipesRepo struct{ m *memDB }

func (f *fakeRecipesRepo) Create(_ context.Context, r *models.Recipe) (*models.Recipe, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.Create"); err != nil {
		return nil, err
	}
	if _, ok := f.m.users[r.AuthorID]; !ok {
		return nil, common.ErrorNotFound
	}
	r.ID = f.m.nextID()
	r.PubDate = time.Unix(f.m.seq, 0)
	cp := *r
	f.m.recipes[r.ID] = &cp
	return r, nil
}

func (f *fakeRecipesRepo) Update(_ context.Context, r *models.Recipe) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.Update"); err != nil {
		return err
	}
	cur, ok := f.m.recipes[r.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Name, cur.Text, cur.CookingTime, cur.ImageKey = r.Name, r.Text, r.CookingTime, r.ImageKey
	return nil
}

func (f *fakeRecipesRepo) Delete(_ context.Context, id int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.Delete"); err != nil {
		return err
	}
	if _, ok := f.m.recipes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.m.recipes, id)
	delete(f.m.recipeTags, id)
	delete(f.m.recipeIngredients, id)
	kept := f.m.edges[:0]
	for _, e := range f.m.edges {
		if e.kind.TargetsUser() || e.object != id {
			kept = append(kept, e)
		}
	}
	f.m.edges = kept
	return nil
}

func (f *fakeRecipesRepo) GetByID(_ context.Context, id int64) (*models.Recipe, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.GetByID"); err != nil {
		return nil, err
	}
	if r, ok := f.m.recipes[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeRecipesRepo) ReplaceTags(_ context.Context, recipeID int64, tagIDs []int64) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.ReplaceTags"); err != nil {
		return err
	}
	for _, id := range tagIDs {
		if _, ok := f.m.tags[id]; !ok {
			return common.ErrorNotFound
		}
	}
	f.m.recipeTags[recipeID] = append([]int64(nil), tagIDs...)
	return nil
}

func (f *fakeRecipesRepo) ReplaceIngredients(_ context.Context, recipeID int64, items []models.IngredientAmount) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.ReplaceIngredients"); err != nil {
		return err
	}
	for _, it := range items {
		if _, ok := f.m.ingredients[it.IngredientID]; !ok {
			return common.ErrorNotFound
		}
	}
	f.m.recipeIngredients[recipeID] = append([]models.IngredientAmount(nil), items...)
	return nil
}

func (f *fakeRecipesRepo) TagsFor(_ context.Context, recipeID int64) ([]models.Tag, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.TagsFor"); err != nil {
		return nil, err
	}
	var out []models.Tag
	for _, id := range f.m.recipeTags[recipeID] {
		out = append(out, *f.m.tags[id])
	}
	return out, nil
}

func (f *fakeRecipesRepo) IngredientsFor(_ context.Context, recipeIDs []int64) ([]models.RecipeIngredient, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.IngredientsFor"); err != nil {
		return nil, err
	}
	var out []models.RecipeIngredient
	for _, rid := range recipeIDs {
		for _, it := range f.m.recipeIngredients[rid] {
			ing := f.m.ingredients[it.IngredientID]
			out = append(out, models.RecipeIngredient{RecipeID: rid, IngredientID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit, Amount: it.Amount})
		}
	}
	return out, nil
}

func (f *fakeRecipesRepo) hasEdge(kind models.RelationKind, subject, object int64) bool {
	for _, e := range f.m.edges {
		if e.kind == kind && e.subject == subject && e.object == object {
			return true
		}
	}
	return false
}

func (f *fakeRecipesRepo) matching(filter models.RecipeFilter) []*models.Recipe {
	var out []*models.Recipe
	for _, r := range f.m.recipes {
		if filter.AuthorID != 0 && r.AuthorID != filter.AuthorID {
			continue
		}
		if filter.FavoritedBy != 0 && !f.hasEdge(models.RelationFavorite, filter.FavoritedBy, r.ID) {
			continue
		}
		if filter.InCartOf != 0 && !f.hasEdge(models.RelationShoppingCart, filter.InCartOf, r.ID) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(r.Name+" "+r.Text), strings.ToLower(filter.Search)) {
			continue
		}
		if len(filter.TagSlugs) > 0 {
			found := false
			for _, id := range f.m.recipeTags[r.ID] {
				for _, slug := range filter.TagSlugs {
					if f.m.tags[id].Slug == slug {
						found = true
					}
				}
			}
			if !found {
				continue
			}
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (f *fakeRecipesRepo) List(_ context.Context, filter models.RecipeFilter) ([]*models.Recipe, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.List"); err != nil {
		return nil, err
	}
	return paginate(f.matching(filter), filter.Page), nil
}

func (f *fakeRecipesRepo) Count(_ context.Context, filter models.RecipeFilter) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.Count"); err != nil {
		return 0, err
	}
	return int64(len(f.matching(filter))), nil
}

func (f *fakeRecipesRepo) FindByIDs(_ context.Context, ids []int64) (map[int64]*models.Recipe, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("recipes.FindByIDs"); err != nil {
		return nil, err
	}
	out := map[int64]*models.Recipe{}
	for _, id := range ids {
		if r, ok := f.m.recipes[id]; ok {
			cp := *r
			out[id] = &cp
		}
	}
	return out, nil
}

// --- relations ---

type fakeRelationsRepo struct{ m *memDB }

func (f *fakeRelationsRepo) Add(_ context.Context, kind models.RelationKind, subject, object int64) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("relations.Add"); err != nil {
		return false, err
	}
	if kind.TargetsUser() {
		if _, ok := f.m.users[object]; !ok {
			return false, common.ErrorNotFound
		}
		if subject == object {
			return false, common.ErrSelfReference
		}
	} else if _, ok := f.m.recipes[object]; !ok {
		return false, common.ErrorNotFound
	}
	for _, e := range f.m.edges {
		if e.kind == kind && e.subject == subject && e.object == object {
			return false, nil
		}
	}
	f.m.edges = append(f.m.edges, fakeEdge{id: f.m.nextID(), kind: kind, subject: subject, object: object})
	return true, nil
}

func (f *fakeRelationsRepo) Remove(_ context.Context, kind models.RelationKind, subject, object int64) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("relations.Remove"); err != nil {
		return false, err
	}
	for i, e := range f.m.edges {
		if e.kind == kind && e.subject == subject && e.object == object {
			f.m.edges = append(f.m.edges[:i], f.m.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRelationsRepo) Exists(_ context.Context, kind models.RelationKind, subject, object int64) (bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("relations.Exists"); err != nil {
		return false, err
	}
	for _, e := range f.m.edges {
		if e.kind == kind && e.subject == subject && e.object == object {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRelationsRepo) ListObjects(_ context.Context, kind models.RelationKind, subject int64, page models.Page) ([]int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("relations.ListObjects"); err != nil {
		return nil, err
	}
	var matched []fakeEdge
	for _, e := range f.m.edges {
		if e.kind == kind && e.subject == subject {
			matched = append(matched, e)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].id > matched[j].id })
	var ids []int64
	for _, e := range paginate(matched, page) {
		ids = append(ids, e.object)
	}
	return ids, nil
}

func (f *fakeRelationsRepo) Count(_ context.Context, kind models.RelationKind, subject int64) (int64, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("relations.Count"); err != nil {
		return 0, err
	}
	var n int64
	for _, e := range f.m.edges {
		if e.kind == kind && e.subject == subject {
			n++
		}
	}
	return n, nil
}

func (f *fakeRelationsRepo) Present(_ context.Context, kind models.RelationKind, subject int64, ids []int64) (map[int64]bool, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if err := f.m.enter("relations.Present"); err != nil {
		return nil, err
	}
	out := map[int64]bool{}
	for _, id := range ids {
		for _, e := range f.m.edges {
			if e.kind == kind && e.subject == subject && e.object == id {
				out[id] = true
			}
		}
	}
	return out, nil
}

func paginate[T any](items []T, page models.Page) []T {
	if page.Offset >= len(items) {
		return nil
	}
	items = items[page.Offset:]
	if page.Limit > 0 && page.Limit < len(items) {
		items = items[:page.Limit]
	}
	return items
}
