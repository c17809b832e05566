package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/academic"
)

type academicApi struct {
	svc      academic.Service
	validate *validator.Validate
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc academic.Service, validate *validator.Validate) {
	api := academicApi{svc: svc, validate: validate}

	sg := g.Group("/sessions", cookieTokenMiddleware, jwt)
	sg.POST("", api.createSession, adminMiddleware())
	sg.GET("", api.querySessions)
	sg.GET("/:id", api.retrieveSession)
	sg.DELETE("/:id", api.destroySession, adminMiddleware())

	smg := g.Group("/semesters", cookieTokenMiddleware, jwt)
	smg.POST("", api.createSemester, adminMiddleware())
	smg.GET("", api.querySemesters)
	smg.GET("/:id", api.retrieveSemester)
	smg.DELETE("/:id", api.destroySemester, adminMiddleware())
}

func (api *academicApi) createSession(ctx echo.Context) error {
	var data academic.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sess, err := api.svc.CreateSession(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *academicApi) querySessions(ctx echo.Context) error {
	sessions, err := api.svc.QuerySessions(ctx.Request().Context(), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []academic.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *academicApi) retrieveSession(ctx echo.Context) error {
	sess, err := api.svc.GetSession(ctx.Request().Context(), sessionIDFromPath(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *academicApi) destroySession(ctx echo.Context) error {
	if err := api.svc.DeleteSession(ctx.Request().Context(), sessionIDFromPath(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) createSemester(ctx echo.Context) error {
	var data academic.NewSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSemester")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sem, err := api.svc.CreateSemester(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating semester")
	}
	return ctx.JSON(http.StatusCreated, sem)
}

func (api *academicApi) querySemesters(ctx echo.Context) error {
	semesters, err := api.svc.QuerySemesters(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying semesters")
	}
	if semesters == nil {
		semesters = []academic.Semester{}
	}
	return ctx.JSON(http.StatusOK, semesters)
}

func (api *academicApi) retrieveSemester(ctx echo.Context) error {
	sem, err := api.svc.GetSemester(ctx.Request().Context(), bindIntParam(ctx, "id"))
	if err != nil {
		return errors.Wrap(err, "getting semester")
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *academicApi) destroySemester(ctx echo.Context) error {
	if err := api.svc.DeleteSemester(ctx.Request().Context(), bindIntParam(ctx, "id")); err != nil {
		return errors.Wrap(err, "deleting semester")
	}
	return ctx.NoContent(http.StatusNoContent)
}
