package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/npsexplorer/explorer/pkg/auth"
	"github.com/npsexplorer/explorer/pkg/comments"
	"github.com/npsexplorer/explorer/pkg/favorites"
	"github.com/npsexplorer/explorer/pkg/users"
)

type memUsers struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*auth.Account
	err      error
}

func newMemUsers() *memUsers {
	return &memUsers{accounts: map[int64]*auth.Account{}}
}

func (m *memUsers) GetAccountByEmail(ctx context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, acc := range m.accounts {
		if acc.Email == auth.NormalizeEmail(email) {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (m *memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := m.GetAccountByEmail(ctx, email)
	if err == auth.ErrAccountNotFound {
		return false, nil
	}
	return err == nil, err
}

func (m *memUsers) List(ctx context.Context) ([]*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*auth.Account{}
	for _, acc := range m.accounts {
		cp := *acc
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) GetByID(ctx context.Context, id int64) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	acc, ok := m.accounts[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *memUsers) Create(ctx context.Context, u *users.NewUser) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	email := auth.NormalizeEmail(u.Email)
	for _, acc := range m.accounts {
		if acc.Email == email {
			return nil, users.ErrEmailTaken
		}
	}
	m.nextID++
	acc := &auth.Account{
		ID:           m.nextID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        email,
		PasswordHash: u.PasswordHash,
		Nickname:     u.Nickname,
		HomeState:    u.HomeState,
		DateCreated:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	m.accounts[acc.ID] = acc
	cp := *acc
	return &cp, nil
}

func (m *memUsers) Update(ctx context.Context, id int64, u *users.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	acc, ok := m.accounts[id]
	if !ok {
		return users.ErrNotFound
	}
	if u.Email != nil {
		for other, existing := range m.accounts {
			if other != id && existing.Email == *u.Email {
				return users.ErrEmailTaken
			}
		}
		acc.Email = *u.Email
	}
	if u.FirstName != nil {
		acc.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		acc.LastName = *u.LastName
	}
	if u.PasswordHash != nil {
		acc.PasswordHash = *u.PasswordHash
	}
	if u.Nickname != nil {
		acc.Nickname = u.Nickname
	}
	if u.HomeState != nil {
		acc.HomeState = u.HomeState
	}
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.accounts[id]; !ok {
		return users.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

type memComments struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*comments.Comment
	err    error
}

func newMemComments() *memComments {
	return &memComments{rows: map[int64]*comments.Comment{}}
}

func (m *memComments) List(ctx context.Context) ([]*comments.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*comments.Comment{}
	for _, c := range m.rows {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memComments) Get(ctx context.Context, id int64) (*comments.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.rows[id]
	if !ok {
		return nil, comments.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memComments) Create(ctx context.Context, c *comments.Comment) (*comments.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	stored := *c
	stored.ID = m.nextID
	stored.DateSubmitted = time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	m.rows[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (m *memComments) UpdateText(ctx context.Context, id int64, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	c, ok := m.rows[id]
	if !ok {
		return comments.ErrNotFound
	}
	c.CommentText = text
	return nil
}

func (m *memComments) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return comments.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

type memFavorites struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*favorites.Favorite
	err    error
}

func newMemFavorites() *memFavorites {
	return &memFavorites{rows: map[int64]*favorites.Favorite{}}
}

func (m *memFavorites) filter(keep func(*favorites.Favorite) bool) ([]*favorites.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*favorites.Favorite{}
	for _, f := range m.rows {
		if keep(f) {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memFavorites) List(ctx context.Context) ([]*favorites.Favorite, error) {
	return m.filter(func(*favorites.Favorite) bool { return true })
}

func (m *memFavorites) ListByAccount(ctx context.Context, account int64) ([]*favorites.Favorite, error) {
	return m.filter(func(f *favorites.Favorite) bool { return f.UserAccount == account })
}

func (m *memFavorites) Get(ctx context.Context, id int64) (*favorites.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	f, ok := m.rows[id]
	if !ok {
		return nil, favorites.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFavorites) Upsert(ctx context.Context, account int64, parkCode string, favorite bool) (*favorites.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, f := range m.rows {
		if f.UserAccount == account && f.ParkCode == parkCode {
			f.Favorite = favorite
			cp := *f
			return &cp, nil
		}
	}
	m.nextID++
	f := &favorites.Favorite{ID: m.nextID, UserAccount: account, ParkCode: parkCode, Favorite: favorite}
	m.rows[f.ID] = f
	cp := *f
	return &cp, nil
}

func (m *memFavorites) SetFavorite(ctx context.Context, id int64, favorite bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	f, ok := m.rows[id]
	if !ok {
		return favorites.ErrNotFound
	}
	f.Favorite = favorite
	return nil
}

func (m *memFavorites) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return favorites.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}
