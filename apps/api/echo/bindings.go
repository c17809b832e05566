package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/academia/core"
)

var (
	orderingParam = "ordering"
	pageParam     = "page"
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// bindPagination reads the page query param; absent or invalid means page 1.
func bindPagination(ctx echo.Context) *core.Pagination {
	page := 1
	if val := ctx.QueryParam(pageParam); val != "" {
		if p, err := strconv.Atoi(val); err == nil && p > 0 {
			page = p
		}
	}
	return &core.Pagination{Page: page}
}

// bindIntParam parses an integer path param; 0 when absent or invalid.
func bindIntParam(ctx echo.Context, name string) int {
	val, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0
	}
	return val
}

// bindQueryInt parses an integer query param; 0 when absent or invalid.
func bindQueryInt(ctx echo.Context, name string) int {
	val, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return 0
	}
	return val
}

// sessionIDFromPath maps a path-safe session id ("2021-2022") back to its
// canonical form ("2021/2022"); slashes cannot travel in a path segment.
func sessionIDFromPath(ctx echo.Context, name string) string {
	return strings.NewReplacer("-", "/", ".", "/").Replace(ctx.Param(name))
}
