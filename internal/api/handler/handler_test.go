package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	mw "github.com/urbanosolucoes/licitahub/internal/api/middleware"
	"github.com/urbanosolucoes/licitahub/internal/store"
	"github.com/urbanosolucoes/licitahub/pkg/models"
)

// fakeStore is an in-memory store.Store for handler tests. Only the methods
// the handlers exercise are implemented; anything else panics via the
// embedded nil interface.
type fakeStore struct {
	store.Store

	mu      sync.Mutex
	users   map[uuid.UUID]*models.User
	reports map[uuid.UUID]*models.Report
	archive map[uuid.UUID]*models.ArchiveDocument
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:   map[uuid.UUID]*models.User{},
		reports: map[uuid.UUID]*models.Report{},
		archive: map[uuid.UUID]*models.ArchiveDocument{},
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return store.ErrDuplicateKey
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (f *fakeStore) UpdateSessionToken(ctx context.Context, id uuid.UUID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.SessionToken = token
	return nil
}

func (f *fakeStore) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) UpdateUserPlan(ctx context.Context, id uuid.UUID, plan string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Plan = plan
	return nil
}

func (f *fakeStore) SetCreditsUsed(ctx context.Context, id uuid.UUID, credits int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.CreditsUsed = credits
	return nil
}

func (f *fakeStore) GetReport(ctx context.Context, id, userID uuid.UUID) (*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok || r.UserID != userID {
		return nil, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) ListReports(ctx context.Context, userID uuid.UUID) ([]*models.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Report
	for _, r := range f.reports {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) ListReportsByStatus(ctx context.Context, userID uuid.UUID, status string) ([]*models.Report, error) {
	all, _ := f.ListReports(ctx, userID)
	var out []*models.Report
	for _, r := range all {
		if r.Status != nil && *r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateReportStatus(ctx context.Context, id, userID uuid.UUID, status *string, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	r.Status = status
	r.Note = note
	return nil
}

func (f *fakeStore) DeleteReport(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reports[id]
	if !ok || r.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.reports, id)
	return nil
}

func (f *fakeStore) CreateArchiveDocument(ctx context.Context, doc *models.ArchiveDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archive[doc.ID] = doc
	return nil
}

func (f *fakeStore) ListArchiveDocuments(ctx context.Context, userID uuid.UUID, section, docType string) ([]*models.ArchiveDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.ArchiveDocument
	for _, d := range f.archive {
		if d.UserID != userID {
			continue
		}
		if section != "" && d.Section != section {
			continue
		}
		if docType != "" && d.DocType != docType {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, nil
}

func (f *fakeStore) DeleteArchiveDocument(ctx context.Context, id, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.archive[id]
	if !ok || d.UserID != userID {
		return store.ErrNotFound
	}
	delete(f.archive, id)
	return nil
}

// fakeMailer records sent mail.
type fakeMailer struct {
	mu   sync.Mutex
	to   []string
	err  error
	last string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.last = htmlBody
	return nil
}

// withURLParam injects a chi URL parameter the way the router would.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func withReportID(req *http.Request, id uuid.UUID) *http.Request {
	return withURLParam(req, "reportID", id.String())
}

// asUser injects the user into the request context the way the auth
// middleware would.
func asUser(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(mw.SetUser(req.Context(), user))
}

func regularUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "maria",
		Name:     "Maria Souza",
		Email:    "maria@example.com",
		Role:     models.RoleUser,
		Plan:     models.Plan30,
	}
}

func doRequest(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}
