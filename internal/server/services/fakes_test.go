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
	"github.com/dmitrijs2005/securedoc/internal/common"
	"github.com/dmitrijs2005/securedoc/internal/dbx"
	"github.com/dmitrijs2005/securedoc/internal/logging"
	"github.com/dmitrijs2005/securedoc/internal/server/blobstore"
	"github.com/dmitrijs2005/securedoc/internal/server/config"
	"github.com/dmitrijs2005/securedoc/internal/server/models"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/categories"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/documents"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/grants"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/securedoc/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memState backs every fake repository. Transactions are driven by sqlmock,
// so the fakes only model the constraints the schema enforces.
type memState struct {
	mu         sync.Mutex
	users      map[string]*models.User
	tokens     map[string]*models.RefreshToken
	categories map[string]*models.Category
	docs       map[string]*models.Document
	grants     map[[2]string]*models.AccessGrant
	errs       map[string]error
	calls      map[string]int
}

func newMemState() *memState {
	return &memState{
		users:      map[string]*models.User{},
		tokens:     map[string]*models.RefreshToken{},
		categories: map[string]*models.Category{},
		docs:       map[string]*models.Document{},
		grants:     map[[2]string]*models.AccessGrant{},
		errs:       map[string]error{},
		calls:      map[string]int{},
	}
}

func (s *memState) enter(op string) error {
	s.calls[op]++
	return s.errs[op]
}

func (s *memState) addUser(email string, staff bool, publicKey string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &models.User{ID: uuid.NewString(), Email: email, IsStaff: staff, PublicKey: publicKey, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u
}

func (s *memState) addCategory(name string) *models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Category{ID: uuid.NewString(), Name: name}
	s.categories[c.ID] = c
	return c
}

func (s *memState) grantCount(docID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.grants {
		if k[0] == docID {
			n++
		}
	}
	return n
}

type fakeRM struct{ st *memState }

func (m *fakeRM) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRM) Users(dbx.DBTX) users.Repository             { return &fakeUsers{m.st} }
func (m *fakeRM) RefreshTokens(dbx.DBTX) refreshtokens.Repository {
	return &fakeTokens{m.st}
}
func (m *fakeRM) Categories(dbx.DBTX) categories.Repository { return &fakeCategories{m.st} }
func (m *fakeRM) Documents(dbx.DBTX) documents.Repository   { return &fakeDocuments{m.st} }
func (m *fakeRM) Grants(dbx.DBTX) grants.Repository         { return &fakeGrants{m.st} }

type fakeUsers struct{ st *memState }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("users.Create"); err != nil {
		return nil, err
	}
	for _, x := range f.st.users {
		if strings.EqualFold(x.Email, u.Email) {
			return nil, common.ErrUserExists
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	cp := *u
	f.st.users[u.ID] = &cp
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range f.st.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := f.st.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) ListExcept(_ context.Context, excludeID string) ([]*models.User, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("users.ListExcept"); err != nil {
		return nil, err
	}
	var out []*models.User
	for id, u := range f.st.users {
		if id != excludeID {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) SetPublicKey(_ context.Context, id, key string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("users.SetPublicKey"); err != nil {
		return err
	}
	u, ok := f.st.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PublicKey = key
	return nil
}

type fakeTokens struct{ st *memState }

func (f *fakeTokens) Create(_ context.Context, userID, token string, validity time.Duration) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("tokens.Create"); err != nil {
		return err
	}
	f.st.tokens[token] = &models.RefreshToken{ID: uuid.NewString(), UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeTokens) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("tokens.Consume"); err != nil {
		return nil, err
	}
	rt, ok := f.st.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.st.tokens, token)
	return rt, nil
}

type fakeCategories struct{ st *memState }

func (f *fakeCategories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("categories.Create"); err != nil {
		return nil, err
	}
	for _, x := range f.st.categories {
		if strings.EqualFold(x.Name, c.Name) {
			return nil, common.ErrDuplicateCategory
		}
	}
	c.ID = uuid.NewString()
	cp := *c
	f.st.categories[c.ID] = &cp
	return c, nil
}

func (f *fakeCategories) GetByID(_ context.Context, id string) (*models.Category, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("categories.GetByID"); err != nil {
		return nil, err
	}
	c, ok := f.st.categories[id]
	if !ok {
		return nil, common.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCategories) GetByName(_ context.Context, name string) (*models.Category, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("categories.GetByName"); err != nil {
		return nil, err
	}
	for _, c := range f.st.categories {
		if strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrCategoryNotFound
}

func (f *fakeCategories) List(context.Context) ([]*models.Category, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("categories.List"); err != nil {
		return nil, err
	}
	var out []*models.Category
	for _, c := range f.st.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

func (f *fakeCategories) Delete(_ context.Context, id string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("categories.Delete"); err != nil {
		return err
	}
	if _, ok := f.st.categories[id]; !ok {
		return common.ErrCategoryNotFound
	}
	for _, d := range f.st.docs {
		if d.CategoryID != nil && *d.CategoryID == id {
			return common.ErrCategoryInUse
		}
	}
	delete(f.st.categories, id)
	return nil
}

type fakeDocuments struct{ st *memState }

func (f *fakeDocuments) Create(_ context.Context, d *models.Document) (*models.Document, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("documents.Create"); err != nil {
		return nil, err
	}
	if _, ok := f.st.users[d.OwnerID]; !ok {
		return nil, common.ErrUserNotFound
	}
	if d.CategoryID != nil {
		if _, ok := f.st.categories[*d.CategoryID]; !ok {
			return nil, common.ErrCategoryNotFound
		}
	}
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now()
	cp := *d
	f.st.docs[d.ID] = &cp
	return d, nil
}

func (f *fakeDocuments) get(op, id string) (*models.Document, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter(op); err != nil {
		return nil, err
	}
	d, ok := f.st.docs[id]
	if !ok {
		return nil, common.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocuments) GetByID(_ context.Context, id string) (*models.Document, error) {
	return f.get("documents.GetByID", id)
}

func (f *fakeDocuments) GetForShare(_ context.Context, id string) (*models.Document, error) {
	return f.get("documents.GetForShare", id)
}

func (f *fakeDocuments) Delete(_ context.Context, id string) error {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("documents.Delete"); err != nil {
		return err
	}
	if _, ok := f.st.docs[id]; !ok {
		return common.ErrDocumentNotFound
	}
	delete(f.st.docs, id)
	for k := range f.st.grants {
		if k[0] == id {
			delete(f.st.grants, k)
		}
	}
	return nil
}

func (f *fakeDocuments) CountByCategory(_ context.Context, categoryID string) (int, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("documents.CountByCategory"); err != nil {
		return 0, err
	}
	n := 0
	for _, d := range f.st.docs {
		if d.CategoryID != nil && *d.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (f *fakeDocuments) ListAccessibleTo(_ context.Context, userID string) ([]*models.AccessibleDocument, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("documents.ListAccessibleTo"); err != nil {
		return nil, err
	}
	var out []*models.AccessibleDocument
	for k, g := range f.st.grants {
		if k[1] != userID {
			continue
		}
		d := f.st.docs[k[0]]
		owner := f.st.users[d.OwnerID]
		ad := &models.AccessibleDocument{Document: *d, OwnerEmail: owner.Email, OwnerPublicKey: owner.PublicKey, Grant: *g}
		if d.CategoryID != nil {
			ad.CategoryName = f.st.categories[*d.CategoryID].Name
		}
		out = append(out, ad)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

type fakeGrants struct{ st *memState }

func (f *fakeGrants) Create(_ context.Context, g *models.AccessGrant) (bool, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("grants.Create"); err != nil {
		return false, err
	}
	if _, ok := f.st.docs[g.DocumentID]; !ok {
		return false, common.ErrDocumentNotFound
	}
	if _, ok := f.st.users[g.UserID]; !ok {
		return false, common.ErrUserNotFound
	}
	key := [2]string{g.DocumentID, g.UserID}
	if _, ok := f.st.grants[key]; ok {
		return false, nil
	}
	cp := *g
	cp.CreatedAt = time.Now()
	f.st.grants[key] = &cp
	return true, nil
}

func (f *fakeGrants) Get(_ context.Context, documentID, userID string) (*models.AccessGrant, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("grants.Get"); err != nil {
		return nil, err
	}
	g, ok := f.st.grants[[2]string{documentID, userID}]
	if !ok {
		return nil, common.ErrNoGrant
	}
	cp := *g
	return &cp, nil
}

func (f *fakeGrants) ListByDocument(_ context.Context, documentID string) ([]*models.GrantHolder, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("grants.ListByDocument"); err != nil {
		return nil, err
	}
	var out []*models.GrantHolder
	for k, g := range f.st.grants {
		if k[0] == documentID {
			out = append(out, &models.GrantHolder{UserID: k[1], Email: f.st.users[k[1]].Email, CreatedAt: g.CreatedAt})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeGrants) DeleteByDocument(_ context.Context, documentID string) (int64, error) {
	f.st.mu.Lock()
	defer f.st.mu.Unlock()
	if err := f.st.enter("grants.DeleteByDocument"); err != nil {
		return 0, err
	}
	var n int64
	for k := range f.st.grants {
		if k[0] == documentID {
			delete(f.st.grants, k)
			n++
		}
	}
	return n, nil
}

// testEnv wires real services to the fakes, a sqlmock database for
// transaction boundaries, and an in-memory blob store.
type testEnv struct {
	db    *sql.DB
	mock  sqlmock.Sqlmock
	st    *memState
	rm    *fakeRM
	cfg   *config.Config
	store *blobstore.MemoryStore
	log   logging.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BlobBackend = config.BlobBackendMemory
	cfg.BlobTimeout = time.Second

	st := newMemState()
	return &testEnv{
		db:    db,
		mock:  mock,
		st:    st,
		rm:    &fakeRM{st},
		cfg:   cfg,
		store: blobstore.NewMemoryStore(),
		log:   logging.Nop{},
	}
}

func (e *testEnv) expectTx(commit bool) {
	e.mock.ExpectBegin()
	if commit {
		e.mock.ExpectCommit()
	} else {
		e.mock.ExpectRollback()
	}
}

func (e *testEnv) done(t *testing.T) {
	t.Helper()
	require.NoError(t, e.mock.ExpectationsWereMet())
}

func (e *testEnv) directory() *Directory {
	return NewDirectory(e.db, e.rm, e.cfg.DirectoryCacheTTL)
}

func (e *testEnv) ledger() *LedgerService {
	return NewLedgerService(e.db, e.rm, e.log)
}

func (e *testEnv) uploads() *UploadService {
	return NewUploadService(e.db, e.rm, e.store, e.ledger(), e.cfg, e.log)
}

func (e *testEnv) downloads() *DownloadService {
	return NewDownloadService(e.db, e.rm, e.store, e.directory(), e.cfg, e.log)
}

func (e *testEnv) documents() *DocumentService {
	return NewDocumentService(e.db, e.rm, e.log)
}

func (e *testEnv) categories() *CategoryService {
	return NewCategoryService(e.db, e.rm, e.log)
}
