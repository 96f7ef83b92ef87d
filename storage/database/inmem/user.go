package inmemdb

import (
	"context"
	"sort"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, cpf, email, excludedCPF string) error {
	return repo.db.read(ctx, func(t *tables) error {
		if cpf != "" && cpf != excludedCPF {
			if _, ok := t.users[cpf]; ok {
				return user.ErrCPFExists
			}
		}
		for _, usr := range t.users {
			if usr.Email == email && usr.CPF != excludedCPF {
				return user.ErrEmailExists
			}
		}
		return nil
	})
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.users[usr.CPF]; ok {
			return user.ErrCPFExists
		}
		for _, other := range t.users {
			if other.Email == usr.Email {
				return user.ErrEmailExists
			}
		}
		t.users[usr.CPF] = usr
		return nil
	})
	return usr, err
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var found user.User
	err := repo.db.read(ctx, func(t *tables) error {
		if filter.CPF != "" {
			usr, ok := t.users[filter.CPF]
			if !ok {
				return user.ErrNotFound
			}
			found = usr
			return nil
		}
		if filter.Email != "" {
			for _, usr := range t.users {
				if usr.Email == filter.Email {
					found = usr
					return nil
				}
			}
		}
		return user.ErrNotFound
	})
	return found, err
}

func (repo *userRepository) UserExists(ctx context.Context, cpf string) (bool, error) {
	var exists bool
	err := repo.db.read(ctx, func(t *tables) error {
		_, exists = t.users[cpf]
		return nil
	})
	return exists, err
}

func (repo *userRepository) QueryUsers(ctx context.Context, page core.Pagination) ([]user.User, error) {
	var users []user.User
	err := repo.db.read(ctx, func(t *tables) error {
		users = make([]user.User, 0, len(t.users))
		for _, usr := range t.users {
			users = append(users, usr)
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool {
		if users[i].Nome != users[j].Nome {
			return users[i].Nome < users[j].Nome
		}
		return users[i].CPF < users[j].CPF
	})
	return paginate(users, page), err
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.users[usr.CPF]; !ok {
			return user.ErrNotFound
		}
		t.users[usr.CPF] = usr
		return nil
	})
	return usr, err
}

func (repo *userRepository) DeleteUser(ctx context.Context, cpf string) error {
	return repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.users[cpf]; !ok {
			return user.ErrNotFound
		}
		delete(t.users, cpf)
		return nil
	})
}

// CountAchievements follows the same containment chain as the SQL version.
func (repo *userRepository) CountAchievements(ctx context.Context, cpf string) (user.Achievements, error) {
	var achievements user.Achievements
	err := repo.db.read(ctx, func(t *tables) error {
		facs := make(map[int]bool)
		for id, fac := range t.faculdades {
			if fac.UserCPF == cpf {
				facs[id] = true
			}
		}
		cursos := make(map[int]bool)
		for id, c := range t.cursos {
			if facs[c.FaculdadeID] {
				cursos[id] = true
			}
		}
		turmas := make(map[int]bool)
		for id, tu := range t.turmas {
			if cursos[tu.CursoID] {
				turmas[id] = true
			}
		}
		var estudantes int
		for _, est := range t.estudantes {
			if turmas[est.TurmaID] {
				estudantes++
			}
		}
		achievements = user.Achievements{Faculdades: len(facs), Cursos: len(cursos), Estudantes: estudantes}
		return nil
	})
	return achievements, err
}
