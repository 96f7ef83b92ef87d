package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/auth"
)

var (
	// errors
	ErrNotFound           = core.NewNotFoundError("user")
	ErrCPFExists          = errors.New("a user with this CPF already exists")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCPF         = core.NewFieldError("cpf", "invalid CPF")
	ErrInvalidEmail       = core.NewFieldError("email", "invalid email address")
	ErrWrongOldPassword   = core.NewFieldError("old_password", "invalid credentials")

	emailValidate = validator.New()

	// dummy credentials verified when the login email is unknown, so that both failure paths do the same work
	dummyHash, dummySalt, _ = auth.HashPassword("campus.backend.core.user.dummy")
)

const DefaultLoginFailureDelay = 500 * time.Millisecond

type (
	Repository interface {
		// CheckUniqueness returns ErrCPFExists or ErrEmailExists if another user (other than excludedCPF) holds cpf or email.
		CheckUniqueness(ctx context.Context, cpf, email, excludedCPF string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UserExists(ctx context.Context, cpf string) (bool, error)
		QueryUsers(ctx context.Context, page core.Pagination) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUser(ctx context.Context, cpf string) error
		CountAchievements(ctx context.Context, cpf string) (Achievements, error)
	}

	// OwnedDataRemover deletes everything an account owns of one kind, cascading as needed.
	OwnedDataRemover interface {
		DeleteByOwner(ctx context.Context, cpf string) error
	}

	Service struct {
		tx            core.Transactor
		repo          Repository
		faculdades    OwnedDataRemover
		colaboradores OwnedDataRemover
		tokens        auth.TokenIssuer
		clock         core.Clock

		// LoginFailureDelay is waited before reporting a failed login.
		LoginFailureDelay time.Duration
	}
)

func NewService(
	tx core.Transactor,
	repo Repository,
	faculdades OwnedDataRemover,
	colaboradores OwnedDataRemover,
	tokens auth.TokenIssuer,
	clock core.Clock,
) *Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(tx, "tx"),
		vala.IsNotNil(repo, "repo"),
		vala.IsNotNil(faculdades, "faculdades"),
		vala.IsNotNil(colaboradores, "colaboradores"),
		vala.IsNotNil(tokens, "tokens"),
		vala.IsNotNil(clock, "clock"),
	).CheckAndPanic()

	return &Service{
		tx:                tx,
		repo:              repo,
		faculdades:        faculdades,
		colaboradores:     colaboradores,
		tokens:            tokens,
		clock:             clock,
		LoginFailureDelay: DefaultLoginFailureDelay,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, cpf, email, excludedCPF string) error {
	err := svc.repo.CheckUniqueness(ctx, cpf, email, excludedCPF)
	return uniquenessError(err, "checking user uniqueness")
}

// uniquenessError reports ErrCPFExists and ErrEmailExists as a validation error on the field they concern.
func uniquenessError(err error, msg string) error {
	var field string
	switch errors.Cause(err) {
	case nil:
		return nil
	case ErrCPFExists:
		field = "cpf"
	case ErrEmailExists:
		field = "email"
	default:
		return errors.Wrap(err, msg)
	}
	return core.NewValidationError(err, core.FieldError{Field: field, Error: errors.Cause(err).Error()})
}

func (svc *Service) profile(usr User) (Profile, error) {
	token, err := svc.tokens.Issue(usr.Identity())
	if err != nil {
		return Profile{}, errors.Wrap(err, "issuing token")
	}
	return Profile{User: usr, Token: token}, nil
}

// Register creates the account and returns it with a token. nu must have been validated.
// A concurrent registration of the same CPF or email is reported like the uniqueness check.
func (svc *Service) Register(ctx context.Context, nu NewUser) (Profile, error) {
	now := svc.clock.Now()
	usr := User{
		CPF:                     nu.CPF,
		Nome:                    nu.Nome,
		Email:                   nu.Email,
		UrlImagem:               nu.UrlImagem,
		UniversidadeNome:        nu.UniversidadeNome,
		UniversidadeCNPJ:        nu.UniversidadeCNPJ,
		UniversidadeContatoInfo: nu.UniversidadeContatoInfo,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return Profile{}, errors.Wrap(err, "setting password")
	}

	err := svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := svc.checkUniqueness(ctx, nu.CPF, nu.Email, ""); err != nil {
			return err
		}
		created, err := svc.repo.CreateUser(ctx, usr)
		if err != nil {
			return uniquenessError(err, "creating user")
		}
		usr = created
		return nil
	})
	if err != nil {
		return Profile{}, err
	}
	return svc.profile(usr)
}

// Login authenticates by email and password.
// Unknown emails and wrong passwords both return ErrInvalidCredentials after LoginFailureDelay.
func (svc *Service) Login(ctx context.Context, email, pwd string) (Profile, error) {
	email = core.CleanString(email, true /* lower */)
	if email == "" || pwd == "" {
		return Profile{}, core.NewValidationError(errors.New("email and password are required"))
	}

	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: email})
	switch {
	case err == nil:
		if usr.CheckPassword(pwd) {
			return svc.profile(usr)
		}
	case errors.Cause(err) == ErrNotFound:
		auth.VerifyPassword(pwd, dummyHash, dummySalt)
	default:
		return Profile{}, errors.Wrap(err, "finding user by email")
	}

	svc.clock.Sleep(ctx, svc.LoginFailureDelay)
	return Profile{}, ErrInvalidCredentials
}

func (svc *Service) ChangePassword(ctx context.Context, cp ChangePassword) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{CPF: cp.CPF})
	if err != nil {
		return errors.Wrap(err, "finding user by CPF")
	}
	if !usr.CheckPassword(cp.OldPassword) {
		return ErrWrongOldPassword
	}
	return svc.setPassword(ctx, usr, cp.NewPassword)
}

// ResetPassword sets a new password knowing only the CPF.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetPassword) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{CPF: rp.CPF})
	if err != nil {
		return errors.Wrap(err, "finding user by CPF")
	}
	return svc.setPassword(ctx, usr, rp.NewPassword)
}

func (svc *Service) setPassword(ctx context.Context, usr User, pwd string) error {
	if err := usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = svc.clock.Now()
	if _, err := svc.repo.UpdateUser(ctx, usr); err != nil {
		return errors.Wrap(err, "updating user")
	}
	return nil
}

func (svc *Service) GetByCPF(ctx context.Context, cpf string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{CPF: core.OnlyDigits(cpf)})
}

func (svc *Service) Profile(ctx context.Context, cpf string) (Profile, error) {
	usr, err := svc.GetByCPF(ctx, cpf)
	if err != nil {
		return Profile{}, errors.Wrap(err, "finding user by CPF")
	}
	return Profile{User: usr}, nil
}

// VerifyCPF reports whether an account holds cpf. Malformed CPFs are rejected without a lookup.
func (svc *Service) VerifyCPF(ctx context.Context, cpf string) error {
	if !core.IsValidCPF(cpf) {
		return ErrInvalidCPF
	}
	exists, err := svc.repo.UserExists(ctx, core.OnlyDigits(cpf))
	if err != nil {
		return errors.Wrap(err, "checking user existence")
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// VerifyEmail reports whether an account holds email (case-insensitive).
func (svc *Service) VerifyEmail(ctx context.Context, email string) error {
	email = core.CleanString(email, true /* lower */)
	if err := emailValidate.Var(email, "required,email"); err != nil {
		return ErrInvalidEmail
	}
	if _, err := svc.repo.GetUser(ctx, GetFilter{Email: email}); err != nil {
		return errors.Wrap(err, "finding user by email")
	}
	return nil
}

// Update applies uu to the account and returns it with a fresh token.
func (svc *Service) Update(ctx context.Context, cpf string, uu UpdateUser) (Profile, error) {
	orig, err := svc.GetByCPF(ctx, cpf)
	if err != nil {
		return Profile{}, errors.Wrap(err, "finding user by CPF")
	}

	usr := uu.Apply(orig)
	if usr.Email != orig.Email {
		if err := svc.checkUniqueness(ctx, "", usr.Email, orig.CPF); err != nil {
			return Profile{}, err
		}
	}
	usr.UpdatedAt = svc.clock.Now()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return Profile{}, uniquenessError(err, "updating user")
	}
	return svc.profile(usr)
}

func (svc *Service) Achievements(ctx context.Context, cpf string) (Achievements, error) {
	cpf = core.OnlyDigits(cpf)
	exists, err := svc.repo.UserExists(ctx, cpf)
	if err != nil {
		return Achievements{}, errors.Wrap(err, "checking user existence")
	}
	if !exists {
		return Achievements{}, ErrNotFound
	}
	achievements, err := svc.repo.CountAchievements(ctx, cpf)
	return achievements, errors.Wrap(err, "counting achievements")
}

func (svc *Service) List(ctx context.Context, page core.Pagination) ([]User, error) {
	users, err := svc.repo.QueryUsers(ctx, page)
	return users, errors.Wrap(err, "querying users")
}

// Delete removes the account with its faculdades (and everything under them) and its colaboradores, atomically.
func (svc *Service) Delete(ctx context.Context, cpf string) error {
	cpf = core.OnlyDigits(cpf)
	return svc.tx.WithinTx(ctx, func(ctx context.Context) error {
		exists, err := svc.repo.UserExists(ctx, cpf)
		if err != nil {
			return errors.Wrap(err, "checking user existence")
		}
		if !exists {
			return ErrNotFound
		}
		if err := svc.faculdades.DeleteByOwner(ctx, cpf); err != nil {
			return errors.Wrap(err, "deleting faculdades")
		}
		if err := svc.colaboradores.DeleteByOwner(ctx, cpf); err != nil {
			return errors.Wrap(err, "deleting colaboradores")
		}
		return errors.Wrap(svc.repo.DeleteUser(ctx, cpf), "deleting user")
	})
}
