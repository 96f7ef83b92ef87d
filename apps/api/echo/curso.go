package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/curso"
)

type cursoApi struct {
	svc      *curso.Service
	validate *validator.Validate
}

func registerCursoAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *curso.Service, validate *validator.Validate) {
	api := cursoApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/cursos", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)

	// children
	cg.POST("/:id/turmas", api.addTurmas)
	cg.DELETE("/:id/turmas/:turmaId", api.destroyTurma)
	cg.POST("/:id/disciplinas", api.addDisciplinas)
	cg.DELETE("/:id/disciplinas/:disciplinaId", api.destroyDisciplina)
}

func cursoID(ctx echo.Context) (int, error) {
	return bindID(ctx, "id", curso.ErrNotFound)
}

func (api *cursoApi) query(ctx echo.Context) error {
	filter := curso.QueryFilter{Search: core.CleanString(ctx.QueryParam("search"))}
	if v := ctx.QueryParam("faculdade_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return core.NewFieldError("faculdade_id", "must be a number")
		}
		filter.FaculdadeID = id
	}

	cursos, err := api.svc.List(ctx.Request().Context(), filter, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying cursos")
	}
	if cursos == nil {
		cursos = []curso.Curso{}
	}
	return ctx.JSON(http.StatusOK, cursos)
}

func (api *cursoApi) create(ctx echo.Context) error {
	var data curso.NewCurso
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCurso")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating curso")
	}
	ctx.Response().Header().Set(echo.HeaderLocation, fmt.Sprintf("/api/cursos/%d", c.ID))
	return ctx.JSON(http.StatusCreated, c)
}

func (api *cursoApi) retrieve(ctx echo.Context) error {
	id, err := cursoID(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting curso")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *cursoApi) update(ctx echo.Context) error {
	id, err := cursoID(ctx)
	if err != nil {
		return err
	}

	var data curso.UpdateCurso
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCurso")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		return errors.Wrap(err, "updating curso")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cursoApi) destroy(ctx echo.Context) error {
	id, err := cursoID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting curso")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cursoApi) addTurmas(ctx echo.Context) error {
	id, err := cursoID(ctx)
	if err != nil {
		return err
	}

	var data curso.AddTurmas
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddTurmas")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	turmas, err := api.svc.AddTurmas(ctx.Request().Context(), id, data.Turmas)
	if err != nil {
		return errors.Wrap(err, "adding turmas")
	}
	return ctx.JSON(http.StatusCreated, turmas)
}

func (api *cursoApi) destroyTurma(ctx echo.Context) error {
	id, err := cursoID(ctx)
	if err != nil {
		return err
	}
	turmaID, err := bindID(ctx, "turmaId", curso.ErrTurmaNotFound)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteTurma(ctx.Request().Context(), id, turmaID); err != nil {
		return errors.Wrap(err, "deleting turma")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *cursoApi) addDisciplinas(ctx echo.Context) error {
	id, err := cursoID(ctx)
	if err != nil {
		return err
	}

	var data curso.AddDisciplinas
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AddDisciplinas")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	disciplinas, err := api.svc.AddDisciplinas(ctx.Request().Context(), id, data.Disciplinas)
	if err != nil {
		return errors.Wrap(err, "adding disciplinas")
	}
	return ctx.JSON(http.StatusCreated, disciplinas)
}

func (api *cursoApi) destroyDisciplina(ctx echo.Context) error {
	id, err := cursoID(ctx)
	if err != nil {
		return err
	}
	disciplinaID, err := bindID(ctx, "disciplinaId", curso.ErrDisciplinaNotFound)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteDisciplina(ctx.Request().Context(), id, disciplinaID); err != nil {
		return errors.Wrap(err, "deleting disciplina")
	}
	return ctx.NoContent(http.StatusNoContent)
}
