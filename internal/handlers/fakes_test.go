package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"foodify/internal/apperr"
	"foodify/internal/auth"
	"foodify/internal/cache"
	"foodify/internal/metrics"
	"foodify/internal/middleware"
	"foodify/internal/models"
	"foodify/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]*models.User
	err   error
	calls int
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[primitive.ObjectID]*models.User{}}
}

func (s *memUsers) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return s.err
	}
	for _, u := range s.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	user.ID = primitive.NewObjectID()
	copied := *user
	s.byID[user.ID] = &copied
	return nil
}

func (s *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.byID[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

type memPartners struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.FoodPartner
}

func newMemPartners() *memPartners {
	return &memPartners{byID: map[primitive.ObjectID]*models.FoodPartner{}}
}

func (s *memPartners) Create(_ context.Context, partner *models.FoodPartner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Email == partner.Email {
			return repository.ErrDuplicate
		}
	}
	partner.ID = primitive.NewObjectID()
	copied := *partner
	s.byID[partner.ID] = &copied
	return nil
}

func (s *memPartners) FindByEmail(_ context.Context, email string) (*models.FoodPartner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.byID {
		if p.Email == email {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memPartners) FindByID(_ context.Context, id primitive.ObjectID) (*models.FoodPartner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.byID[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

type pair struct {
	user primitive.ObjectID
	food primitive.ObjectID
}

type memFoods struct {
	mu        sync.Mutex
	foods     []*models.Food
	likes     map[pair]time.Time
	saves     map[pair]time.Time
	createErr error
	afterList func()
	seq       int
}

func newMemFoods() *memFoods {
	return &memFoods{likes: map[pair]time.Time{}, saves: map[pair]time.Time{}}
}

func (s *memFoods) Create(_ context.Context, food *models.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	food.ID = primitive.NewObjectID()
	food.CreatedAt = time.Unix(int64(s.seq), 0).UTC()
	copied := *food
	s.foods = append(s.foods, &copied)
	return nil
}

func (s *memFoods) List(context.Context) ([]models.Food, error) {
	foods := s.filter(func(*models.Food) bool { return true })
	if s.afterList != nil {
		s.afterList()
	}
	return foods, nil
}

func (s *memFoods) ListByPartner(_ context.Context, partnerID primitive.ObjectID) ([]models.Food, error) {
	return s.filter(func(f *models.Food) bool { return f.FoodPartner == partnerID }), nil
}

func (s *memFoods) filter(keep func(*models.Food) bool) []models.Food {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Food, 0)
	for i := len(s.foods) - 1; i >= 0; i-- {
		if keep(s.foods[i]) {
			out = append(out, *s.foods[i])
		}
	}
	return out
}

func (s *memFoods) find(id primitive.ObjectID) *models.Food {
	for _, f := range s.foods {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (s *memFoods) get(id primitive.ObjectID) models.Food {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.find(id)
}

func (s *memFoods) toggle(relations map[pair]time.Time, counter func(*models.Food) *int64, userID, foodID primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	food := s.find(foodID)
	if food == nil {
		return false, repository.ErrNotFound
	}
	key := pair{user: userID, food: foodID}
	if _, ok := relations[key]; ok {
		delete(relations, key)
		*counter(food)--
		return false, nil
	}
	s.seq++
	relations[key] = time.Unix(int64(s.seq), 0)
	*counter(food)++
	return true, nil
}

func (s *memFoods) ToggleLike(_ context.Context, userID, foodID primitive.ObjectID) (bool, error) {
	return s.toggle(s.likes, func(f *models.Food) *int64 { return &f.LikeCount }, userID, foodID)
}

func (s *memFoods) ToggleSave(_ context.Context, userID, foodID primitive.ObjectID) (bool, error) {
	return s.toggle(s.saves, func(f *models.Food) *int64 { return &f.SavesCount }, userID, foodID)
}

func (s *memFoods) ListSaved(_ context.Context, userID primitive.ObjectID) ([]models.SavedFood, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SavedFood, 0)
	for key, at := range s.saves {
		if key.user != userID {
			continue
		}
		out = append(out, models.SavedFood{ID: primitive.NewObjectID(), User: userID, Food: *s.find(key.food), CreatedAt: at})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	emptyURL  bool
	deleted   []string

	deleteDeadlines []bool
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.objects[key] = data
	if s.emptyURL {
		return "", nil
	}
	return "https://cdn.test/" + key, nil
}

func (s *memStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, hasDeadline := ctx.Deadline()
	s.deleteDeadlines = append(s.deleteDeadlines, hasDeadline)
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

type memFeedCache struct {
	mu          sync.Mutex
	feed        []models.Food
	has         bool
	gen         int64
	sets        int
	stale       int
	invalidates int
}

func (c *memFeedCache) GetFeed(context.Context) ([]models.Food, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has {
		return nil, cache.ErrCacheMiss
	}
	return c.feed, nil
}

func (c *memFeedCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *memFeedCache) SetFeed(_ context.Context, gen int64, foods []models.Food) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		c.stale++
		return cache.ErrStaleFeed
	}
	c.feed, c.has = foods, true
	c.sets++
	return nil
}

func (c *memFeedCache) InvalidateFeed(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feed, c.has = nil, false
	c.gen++
	c.invalidates++
	return nil
}

// testEnv wires the real router onto in-memory collaborators.
type testEnv struct {
	router   *gin.Engine
	users    *memUsers
	partners *memPartners
	foods    *memFoods
	storage  *memStorage
	cache    *memFeedCache
	tokens   *auth.TokenManager
	metrics  *metrics.Metrics
	dbErr    error
}

type envOption func(*testEnv, *Routes)

func withSavedEmptyAsNotFound(v bool) envOption {
	return func(_ *testEnv, r *Routes) { r.Food.SavedEmptyAsNotFound = v }
}

func withTokens(tokens *auth.TokenManager) envOption {
	return func(e *testEnv, r *Routes) {
		e.tokens = tokens
		r.Tokens = tokens
		r.Auth.Tokens = tokens
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	apperr.ExposeInternalDetails(false)

	env := &testEnv{
		users:    newMemUsers(),
		partners: newMemPartners(),
		foods:    newMemFoods(),
		storage:  newMemStorage(),
		cache:    &memFeedCache{},
		tokens:   auth.NewTokenManager("handlers-test-secret", 7*24*time.Hour),
		metrics:  metrics.Nop(),
	}

	routes := Routes{
		Auth: AuthDeps{
			Users:     env.users,
			Partners:  env.partners,
			Tokens:    env.tokens,
			Passwords: auth.NewPasswordHasher(bcrypt.MinCost),
			DB:        PingFunc(func(context.Context) error { return env.dbErr }),
			Cookie:    auth.CookieConfig{MaxAge: 7 * 24 * time.Hour},
			Metrics:   env.metrics,
		},
		Food: FoodDeps{
			Foods:                env.foods,
			Storage:              env.storage,
			Cache:                env.cache,
			Metrics:              env.metrics,
			MaxVideoSize:         1 << 20,
			SavedEmptyAsNotFound: true,
		},
		Tokens:   env.tokens,
		Users:    env.users,
		Partners: env.partners,
	}
	for _, opt := range opts {
		opt(env, &routes)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), middleware.Recovery())
	Register(r, routes)
	env.router = r
	return env
}

type response struct {
	*httptest.ResponseRecorder
}

func (r response) json(t *testing.T) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(r.Body.Bytes(), &body), r.Body.String())
	return body
}

func (r response) sessionCookie() *http.Cookie {
	for _, c := range r.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	return nil
}

func (e *testEnv) do(req *http.Request, session string) response {
	if session != "" {
		req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: session})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return response{w}
}

func (e *testEnv) postJSON(t *testing.T, path string, body interface{}, session string) response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req, session)
}

func (e *testEnv) get(path, session string) response {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil), session)
}

func (e *testEnv) postFood(t *testing.T, fields map[string]string, fileField, filename string, content []byte, session string) response {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/food", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return e.do(req, session)
}

// registerUser creates a user through the API and returns its session token.
func (e *testEnv) registerUser(t *testing.T, email string) (string, primitive.ObjectID) {
	t.Helper()
	res := e.postJSON(t, "/api/auth/user/register", map[string]string{
		"fullName": "Test User",
		"email":    email,
		"password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	user, err := e.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return res.sessionCookie().Value, user.ID
}

func (e *testEnv) registerPartner(t *testing.T, email string) (string, primitive.ObjectID) {
	t.Helper()
	res := e.postJSON(t, "/api/auth/food-partner/register", map[string]string{
		"name":        "Tasty Bites",
		"email":       email,
		"password":    "secret1",
		"phone":       "555",
		"address":     "1 Main St",
		"contactName": "Jane",
	}, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	partner, err := e.partners.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return res.sessionCookie().Value, partner.ID
}

var errBoom = errors.New("boom")
