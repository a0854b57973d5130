package memory

import (
	"context"
	"strings"
	"time"

	"github.com/Kipz123/airline-booking-backend/internal/model"
	"github.com/Kipz123/airline-booking-backend/internal/repository"
	"github.com/Kipz123/airline-booking-backend/internal/utils"
)

type userRepo struct{ v view }

func (r userRepo) Create(_ context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var id uint64
	err = r.v.run(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				return model.ErrEmailExists
			}
		}
		st.userSeq++
		id = st.userSeq
		st.users[id] = model.User{
			ID:           id,
			Name:         strings.TrimSpace(name),
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    time.Now().UTC(),
		}
		return nil
	})
	return id, err
}

func (r userRepo) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var out model.User
	err := r.v.run(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				out = u
				return nil
			}
		}
		return model.ErrUserNotFound
	})
	return out, err
}

func (r userRepo) GetByID(_ context.Context, id uint64) (model.User, error) {
	var out model.User
	err := r.v.run(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return model.ErrUserNotFound
		}
		out = u
		return nil
	})
	return out, err
}

type tokenRepo struct{ v view }

func (r tokenRepo) StoreRefresh(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	return r.v.run(func(st *state) error {
		st.tokens[tokenHash] = model.RefreshToken{
			UserID:    userID,
			TokenHash: tokenHash,
			ExpiresAt: exp.UTC(),
			CreatedAt: time.Now().UTC(),
		}
		return nil
	})
}

func (r tokenRepo) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	var uid uint64
	err := r.v.run(func(st *state) error {
		t, ok := st.tokens[tokenHash]
		if !ok || t.RevokedAt != nil || time.Now().UTC().After(t.ExpiresAt) {
			return repository.ErrInvalidRefresh
		}
		uid = t.UserID
		return nil
	})
	return uid, err
}

func (r tokenRepo) RevokeByHash(_ context.Context, tokenHash string) (bool, error) {
	revoked := false
	err := r.v.run(func(st *state) error {
		if t, ok := st.tokens[tokenHash]; ok && t.RevokedAt == nil {
			now := time.Now().UTC()
			t.RevokedAt = &now
			st.tokens[tokenHash] = t
			revoked = true
		}
		return nil
	})
	return revoked, err
}

func (r tokenRepo) RevokeAllForUser(_ context.Context, userID uint64) error {
	return r.v.run(func(st *state) error {
		now := time.Now().UTC()
		for h, t := range st.tokens {
			if t.UserID == userID && t.RevokedAt == nil {
				t.RevokedAt = &now
				st.tokens[h] = t
			}
		}
		return nil
	})
}
