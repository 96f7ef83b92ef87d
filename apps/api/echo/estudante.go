package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core/estudante"
)

type estudanteApi struct {
	svc      *estudante.Service
	validate *validator.Validate
}

func registerEstudanteAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *estudante.Service, validate *validator.Validate) {
	api := estudanteApi{
		svc:      svc,
		validate: validate,
	}

	eg := g.Group("/estudantes", jwt)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/by-cpf", api.queryByOwner)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
}

func estudanteID(ctx echo.Context) (int, error) {
	return bindID(ctx, "id", estudante.ErrNotFound)
}

func (api *estudanteApi) query(ctx echo.Context) error {
	ests, err := api.svc.List(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying estudantes")
	}
	if ests == nil {
		ests = []estudante.Estudante{}
	}
	return ctx.JSON(http.StatusOK, ests)
}

func (api *estudanteApi) queryByOwner(ctx echo.Context) error {
	cpf, err := bindOwnerCPF(ctx)
	if err != nil {
		return err
	}
	ests, err := api.svc.ListByOwner(ctx.Request().Context(), cpf, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying estudantes by owner")
	}
	if ests == nil {
		ests = []estudante.Estudante{}
	}
	return ctx.JSON(http.StatusOK, ests)
}

func (api *estudanteApi) create(ctx echo.Context) error {
	var data estudante.NewEstudante
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEstudante")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	est, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating estudante")
	}
	ctx.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/estudantes/%d", est.ID))
	return ctx.JSON(http.StatusCreated, est)
}

func (api *estudanteApi) retrieve(ctx echo.Context) error {
	id, err := estudanteID(ctx)
	if err != nil {
		return err
	}
	est, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting estudante")
	}
	return ctx.JSON(http.StatusOK, est)
}

func (api *estudanteApi) update(ctx echo.Context) error {
	id, err := estudanteID(ctx)
	if err != nil {
		return err
	}

	var data estudante.UpdateEstudante
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEstudante")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "updating estudante")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *estudanteApi) destroy(ctx echo.Context) error {
	id, err := estudanteID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting estudante")
	}
	return ctx.NoContent(http.StatusNoContent)
}
