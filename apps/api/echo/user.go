package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service, validate *validator.Validate) {
	api := userApi{
		svc:      svc,
		validate: validate,
	}

	// un-authed endpoints
	// TODO: rate limit `/login` & `/reset-password` per client address
	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)
	ag.POST("/change-password", api.changePassword)
	ag.POST("/reset-password", api.resetPassword)

	ug := g.Group("/users")
	ug.GET("/verify-cpf", api.verifyCPF)
	ug.GET("/verify-email", api.verifyEmail)

	// authed endpoints
	ug.GET("", api.query, jwt)
	ug.DELETE("", api.destroy, jwt)
	ug.GET("/profile", api.profile, jwt)
	ug.PUT("/update", api.update, jwt)
	ug.GET("/achievements", api.achievements, jwt)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	profile, err := api.svc.Register(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}
	return ctx.JSON(http.StatusCreated, profile)
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}

	profile, err := api.svc.Login(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *userApi) changePassword(ctx echo.Context) error {
	var data user.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ChangePassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "changing password")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// resetPassword only needs a registered CPF.
// TODO: require a single-use code sent to the account email before resetting
func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.ResetPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *userApi) verifyCPF(ctx echo.Context) error {
	if err := api.svc.VerifyCPF(ctx.Request().Context(), ctx.QueryParam("cpf")); err != nil {
		return errors.Wrap(err, "verifying CPF")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "CPF is registered"})
}

func (api *userApi) verifyEmail(ctx echo.Context) error {
	if err := api.svc.VerifyEmail(ctx.Request().Context(), ctx.QueryParam("email")); err != nil {
		return errors.Wrap(err, "verifying email")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "email is registered"})
}

func (api *userApi) profile(ctx echo.Context) error {
	cpf, err := contextCPF(ctx)
	if err != nil {
		return err
	}
	profile, err := api.svc.Profile(ctx.Request().Context(), cpf)
	if err != nil {
		return errors.Wrap(err, "getting profile")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *userApi) update(ctx echo.Context) error {
	cpf, err := contextCPF(ctx)
	if err != nil {
		return err
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	profile, err := api.svc.Update(ctx.Request().Context(), cpf, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, profile)
}

func (api *userApi) achievements(ctx echo.Context) error {
	cpf, err := contextCPF(ctx)
	if err != nil {
		return err
	}
	achievements, err := api.svc.Achievements(ctx.Request().Context(), cpf)
	if err != nil {
		return errors.Wrap(err, "counting achievements")
	}
	return ctx.JSON(http.StatusOK, achievements)
}

func (api *userApi) query(ctx echo.Context) error {
	users, err := api.svc.List(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) destroy(ctx echo.Context) error {
	cpf, err := contextCPF(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), cpf); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
