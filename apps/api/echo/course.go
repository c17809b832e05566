package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/course"
	"github.com/trezcool/academia/core/user"
)

type courseApi struct {
	svc      course.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, usrSvc user.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, usrSvc: usrSvc, validate: validate}

	cg := g.Group("/courses", cookieTokenMiddleware, jwt)
	cg.POST("", api.create, adminMiddleware())
	cg.GET("", api.query)
	cg.GET("/:code", api.retrieve)
	cg.PUT("/:code", api.update, adminMiddleware())
	cg.DELETE("/:code", api.destroy, adminMiddleware())

	// student portal
	stg := g.Group("/student", cookieTokenMiddleware, jwt, studentMiddleware())
	stg.POST("/semesters/:semesterId/courses/:code/register", api.register)
	stg.GET("/courses", api.studentCourses)

	// lecturer portal
	lg := g.Group("/lecturer", cookieTokenMiddleware, jwt, lecturerMiddleware())
	lg.GET("/courses", api.lecturerCourses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	filter.Clean()

	courses, err := api.svc.Query(ctx.Request().Context(), filter, bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.GetByCode(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	orig, err := api.svc.GetByCode(reqCtx, ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "getting course")
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(orig, api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Update(reqCtx, orig.Code, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("code")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) register(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	err = api.svc.Register(ctx.Request().Context(), student.ID, bindIntParam(ctx, "semesterId"), ctx.Param("code"))
	if err != nil {
		return errors.Wrap(err, "registering for course")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Registered."})
}

// studentCourses lists the courses the student registered for; the level
// defaults to the student's own and a semester filter is optional.
func (api *courseApi) studentCourses(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	level := student.Level
	if l := bindQueryInt(ctx, "level"); l != 0 {
		level = l
	}

	courses, err := api.svc.StudentCourses(ctx.Request().Context(), student.ID, level, bindQueryInt(ctx, "semester_id"))
	if err != nil {
		return errors.Wrap(err, "querying student courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) lecturerCourses(ctx echo.Context) error {
	lect, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	courses, err := api.svc.LecturerCourses(ctx.Request().Context(), lect.ID, ctx.QueryParam("search"), bindPagination(ctx))
	if err != nil {
		return errors.Wrap(err, "querying lecturer courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}
