package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core/colaborador"
)

type colaboradorApi struct {
	svc      *colaborador.Service
	validate *validator.Validate
}

func registerColaboradorAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *colaborador.Service, validate *validator.Validate) {
	api := colaboradorApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/colaboradores", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)
	cg.GET("/by-cpf", api.queryByOwner)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
}

func colaboradorID(ctx echo.Context) (int, error) {
	return bindID(ctx, "id", colaborador.ErrNotFound)
}

func (api *colaboradorApi) query(ctx echo.Context) error {
	cols, err := api.svc.List(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying colaboradores")
	}
	if cols == nil {
		cols = []colaborador.Colaborador{}
	}
	return ctx.JSON(http.StatusOK, cols)
}

func (api *colaboradorApi) queryByOwner(ctx echo.Context) error {
	cpf, err := bindOwnerCPF(ctx)
	if err != nil {
		return err
	}
	cols, err := api.svc.ListByOwner(ctx.Request().Context(), cpf, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying colaboradores by owner")
	}
	if cols == nil {
		cols = []colaborador.Colaborador{}
	}
	return ctx.JSON(http.StatusOK, cols)
}

func (api *colaboradorApi) create(ctx echo.Context) error {
	var data colaborador.NewColaborador
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewColaborador")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	col, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating colaborador")
	}
	ctx.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/colaboradores/%d", col.ID))
	return ctx.JSON(http.StatusCreated, col)
}

func (api *colaboradorApi) retrieve(ctx echo.Context) error {
	id, err := colaboradorID(ctx)
	if err != nil {
		return err
	}
	col, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting colaborador")
	}
	return ctx.JSON(http.StatusOK, col)
}

func (api *colaboradorApi) update(ctx echo.Context) error {
	id, err := colaboradorID(ctx)
	if err != nil {
		return err
	}

	var data colaborador.UpdateColaborador
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateColaborador")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "updating colaborador")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *colaboradorApi) destroy(ctx echo.Context) error {
	id, err := colaboradorID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting colaborador")
	}
	return ctx.NoContent(http.StatusNoContent)
}
