package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/hugh/go-projects/internal/database/models"
)

var errBackend = errors.New("backend unavailable")

type fakeUserStore struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*models.User
	fail   bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{nextID: 1, byID: make(map[uint]*models.User)}
}

func (f *fakeUserStore) LookupUserByID(ctx context.Context, id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) LookupUserByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errBackend
	}
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return ErrUserExists
		}
	}
	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.byID[user.ID] = &cp
	return nil
}

func (f *fakeUserStore) setActive(id uint, active bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].IsActive = active
}

type fakeProjectLookup struct {
	projects  map[uint]*models.Project
	documents map[uint]uint // document id -> project id
}

func newFakeProjectLookup() *fakeProjectLookup {
	return &fakeProjectLookup{
		projects:  make(map[uint]*models.Project),
		documents: make(map[uint]uint),
	}
}

func (f *fakeProjectLookup) add(id, ownerID uint, participants ...uint) *models.Project {
	p := &models.Project{Base: models.Base{ID: id}, Name: "p", OwnerID: ownerID}
	for _, uid := range participants {
		p.Participants = append(p.Participants, models.ProjectParticipant{ProjectID: id, UserID: uid})
	}
	f.projects[id] = p
	return p
}

func (f *fakeProjectLookup) LookupProject(ctx context.Context, id uint) (*models.Project, error) {
	return f.projects[id], nil
}

func (f *fakeProjectLookup) LookupParentProjectOfDocument(ctx context.Context, documentID uint) (*models.Project, error) {
	pid, ok := f.documents[documentID]
	if !ok {
		return nil, nil
	}
	return f.projects[pid], nil
}
