package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Billing-api/internal/domain"
	"github.com/jhoicas/Billing-api/internal/domain/entity"
)

type userRepo struct{ sc scope }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.sc.do(func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == u.Email {
				return fmt.Errorf("%w: %s", domain.ErrEmailAlreadyExists, u.Email)
			}
		}
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		st.users = append(st.users, *u)
		return nil
	})
}

func (r *userRepo) find(pred func(entity.User) bool) (*entity.User, error) {
	var out *entity.User
	err := r.sc.do(func(st *state) error {
		for _, u := range st.users {
			if pred(u) {
				cp := u
				out = &cp
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.ID == id })
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.Email == email })
}
