package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/recipeapi/internal/common"
	"github.com/dmitrijs2005/recipeapi/internal/logging"
	"github.com/dmitrijs2005/recipeapi/internal/server/auth"
	"github.com/dmitrijs2005/recipeapi/internal/server/models"
	"github.com/dmitrijs2005/recipeapi/internal/server/services"
)

var testSecret = []byte("test-secret")

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- users ---

type fakeUserService struct {
	users  map[int64]*models.User
	nextID int64
	hasher *auth.PasswordHasher
	err    error
}

func newFakeUserService() *fakeUserService {
	return &fakeUserService{
		users:  map[int64]*models.User{},
		hasher: auth.NewPasswordHasher(bcrypt.MinCost),
	}
}

func (f *fakeUserService) CreateUser(ctx context.Context, email, password string, extra services.UserFields) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			return nil, common.ErrorAlreadyExists
		}
	}
	hash, err := f.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	f.nextID++
	u := &models.User{ID: f.nextID, Email: email, Name: extra.Name, Password: hash, IsActive: true}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserService) findByEmail(email string) *models.User {
	for _, u := range f.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

func (f *fakeUserService) ObtainToken(ctx context.Context, email, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	u := f.findByEmail(email)
	if u == nil || f.hasher.Compare(u.Password, password) != nil {
		return "", common.ErrorUnauthorized
	}
	return auth.GenerateToken(u.ID, testSecret, time.Hour)
}

func (f *fakeUserService) UserIDFromToken(token string) (int64, error) {
	return auth.GetUserIDFromToken(token, testSecret)
}

func (f *fakeUserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUserService) UpdateUser(ctx context.Context, id int64, name, password *string) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if name != nil {
		u.Name = *name
	}
	if password != nil {
		hash, err := f.hasher.Hash(*password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
	}
	return u, nil
}

// --- labels ---

type fakeLabelService struct {
	rows         map[int64]*models.Label
	nextID       int64
	assignedOnly bool
}

func newFakeLabelService() *fakeLabelService {
	return &fakeLabelService{rows: map[int64]*models.Label{}}
}

func (f *fakeLabelService) add(userID int64, name string) *models.Label {
	l, _ := f.Create(context.Background(), userID, name)
	return l
}

func (f *fakeLabelService) List(ctx context.Context, userID int64, assignedOnly bool) ([]*models.Label, error) {
	f.assignedOnly = assignedOnly
	out := []*models.Label{}
	for _, l := range f.rows {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

func (f *fakeLabelService) Create(ctx context.Context, userID int64, name string) (*models.Label, error) {
	f.nextID++
	l := &models.Label{ID: f.nextID, UserID: userID, Name: name}
	f.rows[l.ID] = l
	return l, nil
}

func (f *fakeLabelService) Get(ctx context.Context, userID, id int64) (*models.Label, error) {
	l, ok := f.rows[id]
	if !ok || l.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return l, nil
}

func (f *fakeLabelService) Update(ctx context.Context, userID, id int64, name *string) (*models.Label, error) {
	l, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		l.Name = *name
	}
	return l, nil
}

func (f *fakeLabelService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

// --- recipes ---

type fakeRecipeService struct {
	rows       map[int64]*models.Recipe
	nextID     int64
	lastFilter models.RecipeFilter
	lastInput  services.RecipeInput
	createErr  error
	uploaded   []byte
}

func newFakeRecipeService() *fakeRecipeService {
	return &fakeRecipeService{rows: map[int64]*models.Recipe{}}
}

func (f *fakeRecipeService) add(r *models.Recipe) *models.Recipe {
	f.nextID++
	r.ID = f.nextID
	f.rows[r.ID] = r
	return r
}

func (f *fakeRecipeService) List(ctx context.Context, userID int64, filter models.RecipeFilter) ([]*models.Recipe, error) {
	f.lastFilter = filter
	out := []*models.Recipe{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeRecipeService) Get(ctx context.Context, userID, id int64) (*models.Recipe, error) {
	r, ok := f.rows[id]
	if !ok || r.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

func (f *fakeRecipeService) Create(ctx context.Context, userID int64, in services.RecipeInput) (*models.Recipe, error) {
	f.lastInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	r := &models.Recipe{UserID: userID}
	apply(r, in)
	return f.add(r), nil
}

func (f *fakeRecipeService) Update(ctx context.Context, userID, id int64, in services.RecipeInput) (*models.Recipe, error) {
	f.lastInput = in
	r, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	apply(r, in)
	return r, nil
}

func apply(r *models.Recipe, in services.RecipeInput) {
	if in.Title != nil {
		r.Title = *in.Title
	}
	if in.TimeMinutes != nil {
		r.TimeMinutes = *in.TimeMinutes
	}
	if in.Price != nil {
		r.Price = *in.Price
	}
	if in.Link != nil {
		r.Link = *in.Link
	}
	if in.IngredientIDs != nil {
		r.IngredientIDs = *in.IngredientIDs
	}
	if in.TagIDs != nil {
		r.TagIDs = *in.TagIDs
	}
}

func (f *fakeRecipeService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := f.Get(ctx, userID, id); err != nil {
		return err
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRecipeService) UploadImage(ctx context.Context, userID, id int64, filename string, body io.Reader, size int64, contentType string) (*models.Recipe, error) {
	r, err := f.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.uploaded = b
	key := "uploads/recipe/" + filename
	r.Image = &key
	return r, nil
}

func (f *fakeRecipeService) ImageURL(ctx context.Context, key string) (string, error) {
	return "http://images/" + key, nil
}

// --- harness ---

type testEnv struct {
	server      *Server
	users       *fakeUserService
	tags        *fakeLabelService
	ingredients *fakeLabelService
	recipes     *fakeRecipeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		users:       newFakeUserService(),
		tags:        newFakeLabelService(),
		ingredients: newFakeLabelService(),
		recipes:     newFakeRecipeService(),
	}
	env.server = NewServer(":0", logging.Nop(), env.users, env.tags, env.ingredients, env.recipes)
	return env
}

// login creates a user and returns a token for it.
func (e *testEnv) login(t *testing.T, email string) (int64, string) {
	t.Helper()
	u, err := e.users.CreateUser(context.Background(), email, "password", services.UserFields{})
	require.NoError(t, err)
	token, err := auth.GenerateToken(u.ID, testSecret, time.Hour)
	require.NoError(t, err)
	return u.ID, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	return e.send(t, req)
}

func (e *testEnv) send(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := e.server.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decodeMap(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m), string(b))
	return m
}
