package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/unicampus/backend/core"
	"github.com/unicampus/backend/core/user"
)

const (
	pageParam     = "page"
	pageSizeParam = "page_size"
)

// bindPagination reads `page` and `page_size`; missing or malformed values fall back to the defaults.
func bindPagination(ctx echo.Context) core.Pagination {
	page, _ := strconv.Atoi(ctx.QueryParam(pageParam))
	size, _ := strconv.Atoi(ctx.QueryParam(pageSizeParam))
	return core.NewPagination(page, size)
}

// bindID reads a positive integer path parameter. Anything else is reported as notFound.
func bindID(ctx echo.Context, param string, notFound error) (int, error) {
	id, err := strconv.Atoi(ctx.Param(param))
	if err != nil || id < 1 {
		return 0, notFound
	}
	return id, nil
}

// bindOwnerCPF reads the `cpf` query parameter, defaulting to the authenticated account when it is absent.
func bindOwnerCPF(ctx echo.Context) (string, error) {
	param := strings.TrimSpace(ctx.QueryParam("cpf"))
	if param == "" {
		return contextCPF(ctx)
	}
	if !core.IsValidCPF(param) {
		return "", user.ErrInvalidCPF
	}
	return core.OnlyDigits(param), nil
}

type (
	MessageResponse struct {
		Message string `json:"message"`
	}
)
