package user

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/auth"
)

type User struct {
	CPF                     string    `json:"cpf"`
	Nome                    string    `json:"nome"`
	Email                   string    `json:"email"`
	PasswordHash            []byte    `json:"-"`
	PasswordSalt            []byte    `json:"-"`
	UrlImagem               string    `json:"url_imagem"`
	UniversidadeNome        string    `json:"universidade_nome"`
	UniversidadeCNPJ        string    `json:"universidade_cnpj"`
	UniversidadeContatoInfo string    `json:"universidade_contato_info"`
	CreatedAt               time.Time `json:"created_at"` // UTC
	UpdatedAt               time.Time `json:"updated_at"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, salt, err := auth.HashPassword(pwd)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.PasswordSalt = salt
	return nil
}

func (u User) CheckPassword(pwd string) bool {
	return auth.VerifyPassword(pwd, u.PasswordHash, u.PasswordSalt)
}

func (u User) Identity() auth.Identity {
	return auth.Identity{CPF: u.CPF, Nome: u.Nome, Email: u.Email}
}

// Profile is the externally visible account, with a fresh token when one was issued.
type Profile struct {
	User
	Token string `json:"token,omitempty"`
}

// Achievements are counts over everything an account owns.
type Achievements struct {
	Faculdades int `json:"faculdades" db:"faculdades"`
	Cursos     int `json:"cursos" db:"cursos"`
	Estudantes int `json:"estudantes" db:"estudantes"`
}

// GetFilter selects a single User. CPF takes precedence over Email.
type GetFilter struct {
	CPF   string
	Email string
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	CPF                     string `json:"cpf" validate:"required,cpf"`
	Nome                    string `json:"nome" validate:"required"`
	Email                   string `json:"email" validate:"required,email"`
	Password                string `json:"password" validate:"required"`
	UrlImagem               string `json:"url_imagem"`
	UniversidadeNome        string `json:"universidade_nome"`
	UniversidadeCNPJ        string `json:"universidade_cnpj"`
	UniversidadeContatoInfo string `json:"universidade_contato_info"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.CPF = core.OnlyDigits(nu.CPF)
	nu.Nome = core.CleanString(nu.Nome)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.UrlImagem = core.CleanString(nu.UrlImagem)
	nu.UniversidadeNome = core.CleanString(nu.UniversidadeNome)
	nu.UniversidadeCNPJ = core.CleanString(nu.UniversidadeCNPJ)
	nu.UniversidadeContatoInfo = core.CleanString(nu.UniversidadeContatoInfo)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Blank fields are left untouched.
type UpdateUser struct {
	Nome                    string `json:"nome"`
	Email                   string `json:"email" validate:"omitempty,email"`
	UrlImagem               string `json:"url_imagem"`
	UniversidadeNome        string `json:"universidade_nome"`
	UniversidadeCNPJ        string `json:"universidade_cnpj"`
	UniversidadeContatoInfo string `json:"universidade_contato_info"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	return validate.Struct(uu)
}

// Apply returns orig with every non-blank field of uu applied.
func (uu UpdateUser) Apply(orig User) User {
	usr := orig
	usr.Nome = core.Coalesce(uu.Nome, orig.Nome)
	usr.Email = core.Coalesce(uu.Email, orig.Email, true /* lower */)
	usr.UrlImagem = core.Coalesce(uu.UrlImagem, orig.UrlImagem)
	usr.UniversidadeNome = core.Coalesce(uu.UniversidadeNome, orig.UniversidadeNome)
	usr.UniversidadeCNPJ = core.Coalesce(uu.UniversidadeCNPJ, orig.UniversidadeCNPJ)
	usr.UniversidadeContatoInfo = core.Coalesce(uu.UniversidadeContatoInfo, orig.UniversidadeContatoInfo)
	return usr
}

type ChangePassword struct {
	CPF         string `json:"cpf" validate:"required,cpf"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

func (cp *ChangePassword) Validate(validate *validator.Validate) error {
	cp.CPF = core.OnlyDigits(cp.CPF)
	return validate.Struct(cp)
}

// ResetPassword only asks for the CPF; no proof of the previous password is required.
type ResetPassword struct {
	CPF         string `json:"cpf" validate:"required,cpf"`
	NewPassword string `json:"new_password" validate:"required"`
}

func (rp *ResetPassword) Validate(validate *validator.Validate) error {
	rp.CPF = core.OnlyDigits(rp.CPF)
	return validate.Struct(rp)
}
