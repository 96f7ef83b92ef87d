package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core/faculdade"
)

type faculdadeApi struct {
	svc      *faculdade.Service
	validate *validator.Validate
}

func registerFaculdadeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *faculdade.Service, validate *validator.Validate) {
	api := faculdadeApi{
		svc:      svc,
		validate: validate,
	}

	fg := g.Group("/faculdades", jwt)
	fg.GET("", api.query)
	fg.POST("", api.create)
	fg.GET("/by-cpf", api.queryByOwner)

	// detail endpoints
	fg.GET("/:id", api.retrieve)
	fg.PUT("/:id", api.update)
	fg.DELETE("/:id", api.destroy)
	fg.POST("/:id/adicionar-cursos", api.addCursos)
}

func faculdadeID(ctx echo.Context) (int, error) {
	return bindID(ctx, "id", faculdade.ErrNotFound)
}

func (api *faculdadeApi) query(ctx echo.Context) error {
	facs, err := api.svc.List(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying faculdades")
	}
	if facs == nil {
		facs = []faculdade.Faculdade{}
	}
	return ctx.JSON(http.StatusOK, facs)
}

func (api *faculdadeApi) queryByOwner(ctx echo.Context) error {
	cpf, err := bindOwnerCPF(ctx)
	if err != nil {
		return err
	}
	facs, err := api.svc.ListByOwner(ctx.Request().Context(), cpf, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying faculdades by owner")
	}
	if facs == nil {
		facs = []faculdade.Faculdade{}
	}
	return ctx.JSON(http.StatusOK, facs)
}

func (api *faculdadeApi) create(ctx echo.Context) error {
	var data faculdade.NewFaculdade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFaculdade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fac, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating faculdade")
	}
	ctx.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/faculdades/%d", fac.ID))
	return ctx.JSON(http.StatusCreated, fac)
}

func (api *faculdadeApi) retrieve(ctx echo.Context) error {
	id, err := faculdadeID(ctx)
	if err != nil {
		return err
	}
	fac, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting faculdade")
	}
	return ctx.JSON(http.StatusOK, fac)
}

func (api *faculdadeApi) update(ctx echo.Context) error {
	id, err := faculdadeID(ctx)
	if err != nil {
		return err
	}

	var data faculdade.UpdateFaculdade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFaculdade")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "updating faculdade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *faculdadeApi) destroy(ctx echo.Context) error {
	id, err := faculdadeID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting faculdade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *faculdadeApi) addCursos(ctx echo.Context) error {
	id, err := faculdadeID(ctx)
	if err != nil {
		return err
	}

	var data faculdade.AdicionarCursos
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdicionarCursos")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cursos, err := api.svc.AddCursos(ctx.Request().Context(), id, data.CursoIDs)
	if err != nil {
		return errors.Wrap(err, "adding cursos")
	}
	return ctx.JSON(http.StatusOK, cursos)
}
