package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
	userDatamodel "github.com/frahmantamala/hr-portal/internal/core/datamodel/user"
	"github.com/frahmantamala/hr-portal/internal/user"
)

const (
	usersFile       = "users.json"
	rolesFile       = "roles.json"
	departmentsFile = "departments.json"
)

type usersDocument struct {
	Users []*userDatamodel.User `json:"users"`
}

type rolesDocument struct {
	Roles map[string]userDatamodel.Role `json:"roles"`
}

type departmentsDocument struct {
	Departments []*userDatamodel.Department `json:"departments"`
}

// dirLocks hands out one mutex per data directory so that every Store
// opened on the same directory inside this process shares it.
var dirLocks sync.Map

// Store keeps users, roles and departments as whole JSON documents in a
// directory. Every mutation rewrites the full document through a temp file
// and a rename, so readers never observe a partial write. Separate
// processes sharing the directory are not coordinated.
type Store struct {
	dir string
	mu  *sync.Mutex
	now func() time.Time
}

func New(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	lock, _ := dirLocks.LoadOrStore(abs, &sync.Mutex{})
	return &Store{dir: abs, mu: lock.(*sync.Mutex), now: time.Now}, nil
}

// WithClock overrides the time source; used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	doc, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.Email == email {
			return user.FromDataModel(u), nil
		}
	}
	return nil, nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	doc, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.ID == id {
			return user.FromDataModel(u), nil
		}
	}
	return nil, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*user.User, error) {
	doc, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	users := make([]*user.User, 0, len(doc.Users))
	for _, u := range doc.Users {
		users = append(users, user.FromDataModel(u))
	}
	return users, nil
}

func (s *Store) CreateUser(ctx context.Context, draft user.Draft) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.Email == draft.Email {
			return nil, internal.ErrDuplicateEmail
		}
	}

	created := user.NewFromDraft(draft, s.now())
	doc.Users = append(doc.Users, user.ToDataModel(created))

	if err := s.writeJSON(usersFile, doc); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, patch user.Patch) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.readUsers()
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, u := range doc.Users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, internal.ErrUserNotFound
	}

	if patch.Email != nil {
		for i, u := range doc.Users {
			if i != idx && u.Email == *patch.Email {
				return nil, internal.ErrDuplicateEmail
			}
		}
	}

	updated := user.FromDataModel(doc.Users[idx])
	patch.Apply(updated)
	doc.Users[idx] = user.ToDataModel(updated)

	if err := s.writeJSON(usersFile, doc); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Store) RecordLogin(ctx context.Context, id string) error {
	now := s.now()
	_, err := s.UpdateUser(ctx, id, user.Patch{LastLogin: &now})
	return err
}

func (s *Store) GetRolePermissions(ctx context.Context, role string) ([]string, error) {
	var doc rolesDocument
	if err := s.readJSON(rolesFile, &doc); err != nil {
		return nil, err
	}
	r, ok := doc.Roles[role]
	if !ok {
		return []string{}, nil
	}
	return append([]string{}, r.Permissions...), nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]*userDatamodel.Department, error) {
	var doc departmentsDocument
	if err := s.readJSON(departmentsFile, &doc); err != nil {
		return nil, err
	}
	if doc.Departments == nil {
		return []*userDatamodel.Department{}, nil
	}
	return doc.Departments, nil
}

func (s *Store) SeedRoles(ctx context.Context, roles []userDatamodel.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := rolesDocument{Roles: make(map[string]userDatamodel.Role, len(roles))}
	for _, r := range roles {
		doc.Roles[r.Name] = r
	}
	return s.writeJSON(rolesFile, doc)
}

func (s *Store) SeedDepartments(ctx context.Context, departments []userDatamodel.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := departmentsDocument{Departments: make([]*userDatamodel.Department, 0, len(departments))}
	for i := range departments {
		d := departments[i]
		doc.Departments = append(doc.Departments, &d)
	}
	return s.writeJSON(departmentsFile, doc)
}

// ClearUsers truncates the user collection.
func (s *Store) ClearUsers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeJSON(usersFile, usersDocument{Users: []*userDatamodel.User{}})
}

func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("stat data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", s.dir)
	}
	return nil
}

func (s *Store) readUsers() (*usersDocument, error) {
	var doc usersDocument
	if err := s.readJSON(usersFile, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// readJSON treats a missing file as an empty document.
func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
