package services

import (
	"context"
	"database/sql"
	"io"
	"sort"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/dbx"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/labels"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/recipes"
	"github.com/dmitrijs2005/recipeapi/internal/server/repositories/users"
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

// --- users ---

type fakeUsersRepo struct {
	byID      map[int64]*models.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	cp := *u
	cp.ID = f.nextID
	f.byID[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, u *models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

// --- labels ---

type fakeLabelsRepo struct {
	rows    map[int64]*models.Label
	nextID  int64
	findErr error
}

func newFakeLabelsRepo() *fakeLabelsRepo {
	return &fakeLabelsRepo{rows: map[int64]*models.Label{}}
}

func (f *fakeLabelsRepo) add(userID int64, name string) *models.Label {
	l, _ := f.Create(context.Background(), &models.Label{UserID: userID, Name: name})
	return l
}

func (f *fakeLabelsRepo) Create(ctx context.Context, l *models.Label) (*models.Label, error) {
	f.nextID++
	cp := *l
	cp.ID = f.nextID
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeLabelsRepo) GetByID(ctx context.Context, userID, id int64) (*models.Label, error) {
	l, ok := f.rows[id]
	if !ok || l.UserID != userID {
		return nil, common.ErrorNotFound
	}
	cp := *l
	return &cp, nil
}

func (f *fakeLabelsRepo) List(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Label, error) {
	out := []*models.Label{}
	for _, l := range f.rows {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (f *fakeLabelsRepo) FindByIDs(ctx context.Context, userID int64, ids []int64) ([]*models.Label, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []*models.Label{}
	for _, id := range ids {
		if l, ok := f.rows[id]; ok && l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLabelsRepo) Update(ctx context.Context, l *models.Label) error {
	existing, ok := f.rows[l.ID]
	if !ok || existing.UserID != l.UserID {
		return common.ErrorNotFound
	}
	cp := *l
	f.rows[l.ID] = &cp
	return nil
}

func (f *fakeLabelsRepo) Delete(ctx context.Context, userID, id int64) error {
	l, ok := f.rows[id]
	if !ok || l.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- recipes ---

type fakeRecipesRepo struct {
	rows      map[int64]*models.Recipe
	nextID    int64
	createErr error
	setErr    error
}

func newFakeRecipesRepo() *fakeRecipesRepo {
	return &fakeRecipesRepo{rows: map[int64]*models.Recipe{}}
}

func copyRecipe(r *models.Recipe) *models.Recipe {
	cp := *r
	cp.IngredientIDs = append([]int64{}, r.IngredientIDs...)
	cp.TagIDs = append([]int64{}, r.TagIDs...)
	return &cp
}

func (f *fakeRecipesRepo) Create(ctx context.Context, r *models.Recipe) (*models.Recipe, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = copyRecipe(r)
	return r, nil
}

func (f *fakeRecipesRepo) GetByID(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return copyRecipe(r), nil
}

func (f *fakeRecipesRepo) List(ctx context.Context, userID int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	out := []*models.Recipe{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, copyRecipe(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRecipesRepo) Update(ctx context.Context, r *models.Recipe) error {
	existing, ok := f.rows[r.ID]
	if !ok || existing.UserID != r.UserID {
		return common.ErrorNotFound
	}
	existing.Title = r.Title
	existing.TimeMinutes = r.TimeMinutes
	existing.Price = r.Price
	existing.Link = r.Link
	return nil
}

func (f *fakeRecipesRepo) SetIngredients(ctx context.Context, recipeID int64, ids []int64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.rows[recipeID].IngredientIDs = append([]int64{}, ids...)
	return nil
}

func (f *fakeRecipesRepo) SetTags(ctx context.Context, recipeID int64, ids []int64) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.rows[recipeID].TagIDs = append([]int64{}, ids...)
	return nil
}

func (f *fakeRecipesRepo) SetImage(ctx context.Context, userID, id int64, key string) error {
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return common.ErrorNotFound
	}
	k := key
	r.Image = &k
	return nil
}

func (f *fakeRecipesRepo) Delete(ctx context.Context, userID, id int64) error {
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	u           *fakeUsersRepo
	tags        *fakeLabelsRepo
	ingredients *fakeLabelsRepo
	r           *fakeRecipesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		u:           newFakeUsersRepo(),
		tags:        newFakeLabelsRepo(),
		ingredients: newFakeLabelsRepo(),
		r:           newFakeRecipesRepo(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Recipes(db dbx.DBTX) recipes.Repository      { return m.r }

func (m *fakeRepoManager) Labels(db dbx.DBTX, kind labels.Kind) labels.Repository {
	if kind == labels.Tags {
		return m.tags
	}
	return m.ingredients
}

// --- images ---

type fakeImageStore struct {
	puts   map[string][]byte
	putErr error
}

func (f *fakeImageStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = map[string][]byte{}
	}
	f.puts[key] = b
	return nil
}

func (f *fakeImageStore) URL(ctx context.Context, key string) (string, error) {
	return "http://images/" + key, nil
}
