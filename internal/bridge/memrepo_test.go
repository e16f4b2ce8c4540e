package bridge_test

import (
	"context"
	"sort"
	"sync"

	"go-user-admin/internal/domain"
	"go-user-admin/pkg/utils"
)

// memRepo 内存版仓储，数据同种子
type memRepo struct {
	mu      sync.Mutex
	users   map[string]domain.User
	links   map[string][]string
	roles   []domain.Role
	deletes int
}

func newMemRepo() *memRepo {
	r := &memRepo{users: map[string]domain.User{}, links: map[string][]string{}, roles: domain.SeedRoles}
	hash, err := utils.HashPassword(domain.DefaultSeedPassword)
	if err != nil {
		panic(err)
	}
	for _, su := range domain.SeedUsers {
		r.users[su.UserID] = domain.User{UserID: su.UserID, Name: su.Name, PasswordHash: hash}
		r.links[su.UserID] = append([]string(nil), su.Roles...)
	}
	return r
}

func (r *memRepo) level(role string) int {
	for _, x := range r.roles {
		if x.RoleName == role {
			return x.RoleLevel
		}
	}
	return 1 << 30
}

func (r *memRepo) desc(role string) string {
	for _, x := range r.roles {
		if x.RoleName == role {
			return x.RoleDescription
		}
	}
	return ""
}

func (r *memRepo) ListRows(context.Context) ([]domain.UserRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []domain.UserRow
	for id, u := range r.users {
		for _, role := range r.links[id] {
			if id == domain.HiddenRow.UserID && role == domain.HiddenRow.RoleName {
				continue
			}
			rows = append(rows, domain.UserRow{ID: id, Name: u.Name, Role: role, Description: r.desc(role)})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		li, lj := r.level(rows[i].Role), r.level(rows[j].Role)
		if li != lj {
			return li < lj
		}
		return rows[i].ID < rows[j].ID
	})
	return rows, nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *memRepo) FindByName(_ context.Context, name string) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.Name == name {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memRepo) RoleNames(_ context.Context, id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.links[id]...), nil
}

func (r *memRepo) Roles(context.Context) ([]domain.Role, error) { return r.roles, nil }

func (r *memRepo) RoleExists(_ context.Context, role string) (bool, error) {
	return r.desc(role) != "" || r.level(role) < 1<<30, nil
}

func (r *memRepo) Create(_ context.Context, u *domain.User, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.UserID]; ok {
		return domain.ErrUserExists
	}
	r.users[u.UserID] = *u
	r.links[u.UserID] = []string{role}
	return nil
}

func (r *memRepo) Update(_ context.Context, in domain.UserUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[in.UserID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name = in.Name
	if in.PasswordHash != "" {
		u.PasswordHash = in.PasswordHash
	}
	r.users[in.UserID] = u
	if in.Role == "" || in.Role == in.PrevRole {
		return nil
	}
	kept := []string{in.Role}
	for _, l := range r.links[in.UserID] {
		if l != in.Role && l != in.PrevRole {
			kept = append(kept, l)
		}
	}
	r.links[in.UserID] = kept
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	if _, ok := r.users[id]; !ok {
		return 0, nil
	}
	delete(r.users, id)
	delete(r.links, id)
	return 1, nil
}

func (r *memRepo) deleteCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deletes
}

func ids(rows []domain.UserRow) []string {
	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ID)
	}
	return out
}
