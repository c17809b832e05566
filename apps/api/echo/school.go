package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/school"
)

type schoolApi struct {
	svc      school.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc school.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, validate: validate}

	sg := g.Group("/schools", cookieTokenMiddleware, jwt)
	sg.POST("", api.createSchool, adminMiddleware())
	sg.GET("", api.querySchools)
	sg.GET("/:id", api.retrieveSchool)
	sg.GET("/:id/departments", api.querySchoolDepartments)
	sg.PUT("/:id", api.updateSchool, adminMiddleware())
	sg.DELETE("/:id", api.destroySchool, adminMiddleware())

	dg := g.Group("/departments", cookieTokenMiddleware, jwt)
	dg.POST("", api.createDepartment, adminMiddleware())
	dg.GET("", api.queryDepartments)
	dg.GET("/:id", api.retrieveDepartment)
	dg.PUT("/:id", api.updateDepartment, adminMiddleware())
	dg.DELETE("/:id", api.destroyDepartment, adminMiddleware())
}

func (api *schoolApi) createSchool(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.CreateSchool(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *schoolApi) querySchools(ctx echo.Context) error {
	schools, err := api.svc.QuerySchools(ctx.Request().Context(), ctx.QueryParam("search"), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []school.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *schoolApi) retrieveSchool(ctx echo.Context) error {
	sch, err := api.svc.GetSchool(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting school")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) querySchoolDepartments(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	sch, err := api.svc.GetSchool(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting school")
	}

	filter := &school.DeptFilter{Search: ctx.QueryParam("search"), SchoolID: sch.ID}
	filter.Clean()
	depts, err := api.svc.QueryDepartments(reqCtx, filter, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []school.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *schoolApi) updateSchool(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	orig, err := api.svc.GetSchool(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting school")
	}

	var data school.UpdateSchool
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err = data.Validate(orig, api.validate); err != nil {
		return err
	}

	sch, err := api.svc.UpdateSchool(reqCtx, orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating school")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) destroySchool(ctx echo.Context) error {
	if err := api.svc.DeleteSchool(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) createDepartment(ctx echo.Context) error {
	var data school.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	dept, err := api.svc.CreateDepartment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, dept)
}

func (api *schoolApi) queryDepartments(ctx echo.Context) error {
	filter := new(school.DeptFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []school.Department{})
	}
	filter.Clean()

	depts, err := api.svc.QueryDepartments(ctx.Request().Context(), filter, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []school.Department{}
	}
	return ctx.JSON(http.StatusOK, depts)
}

func (api *schoolApi) retrieveDepartment(ctx echo.Context) error {
	dept, err := api.svc.GetDepartment(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *schoolApi) updateDepartment(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	orig, err := api.svc.GetDepartment(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting department")
	}

	var data school.UpdateDepartment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDepartment")
	}
	if err = data.Validate(orig, api.validate); err != nil {
		return err
	}

	dept, err := api.svc.UpdateDepartment(reqCtx, orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, dept)
}

func (api *schoolApi) destroyDepartment(ctx echo.Context) error {
	if err := api.svc.DeleteDepartment(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}
