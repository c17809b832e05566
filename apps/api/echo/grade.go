package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/academia/core/academic"
	"github.com/trezcool/academia/core/grade"
	"github.com/trezcool/academia/core/user"
)

type gradeApi struct {
	svc      grade.Service
	acadSvc  academic.Service
	usrSvc   user.Service
	validate *validator.Validate
}

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc grade.Service, acadSvc academic.Service, usrSvc user.Service, validate *validator.Validate) {
	api := gradeApi{svc: svc, acadSvc: acadSvc, usrSvc: usrSvc, validate: validate}

	bg := g.Group("/grade-bands", cookieTokenMiddleware, jwt)
	bg.POST("", api.createBand, adminMiddleware())
	bg.GET("", api.queryBands)
	bg.GET("/:id", api.retrieveBand)
	bg.PUT("/:id", api.updateBand, adminMiddleware())
	bg.DELETE("/:id", api.destroyBand, adminMiddleware())

	// lecturer portal
	lg := g.Group("/lecturer", cookieTokenMiddleware, jwt, lecturerMiddleware())
	lg.POST("/sessions/:sessionId/semesters/:semesterId/scores", api.recordScore)
	lg.PUT("/sessions/:sessionId/semesters/:semesterId/scores", api.updateScore)
	lg.GET("/scores", api.lecturerScores)

	// student portal
	stg := g.Group("/student", cookieTokenMiddleware, jwt, studentMiddleware())
	stg.GET("/sessions/:sessionId/semesters/:semesterId/scores", api.studentScores)
	stg.GET("/sessions/:sessionId/semesters/:semesterId/gpa", api.studentGPA)
}

func (api *gradeApi) createBand(ctx echo.Context) error {
	var data grade.NewBand
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewBand")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	band, err := api.svc.CreateBand(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade band")
	}
	return ctx.JSON(http.StatusCreated, band)
}

func (api *gradeApi) queryBands(ctx echo.Context) error {
	bands, err := api.svc.QueryBands(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying grade bands")
	}
	if bands == nil {
		bands = []grade.Band{}
	}
	return ctx.JSON(http.StatusOK, bands)
}

func (api *gradeApi) retrieveBand(ctx echo.Context) error {
	band, err := api.svc.GetBand(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting grade band")
	}
	return ctx.JSON(http.StatusOK, band)
}

func (api *gradeApi) updateBand(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	orig, err := api.svc.GetBand(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting grade band")
	}

	var data grade.UpdateBand
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateBand")
	}
	if err = data.Validate(orig, api.validate); err != nil {
		return err
	}

	band, err := api.svc.UpdateBand(reqCtx, orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating grade band")
	}
	return ctx.JSON(http.StatusOK, band)
}

func (api *gradeApi) destroyBand(ctx echo.Context) error {
	if err := api.svc.DeleteBand(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade band")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// bindTerm resolves the session and semester path params against the records
// on file so scores are never written for a made-up term.
func (api *gradeApi) bindTerm(ctx echo.Context) (sessionID string, semesterID int, err error) {
	sess, err := api.acadSvc.GetSession(ctx.Request().Context(), sessionIDFromPath(ctx, "sessionId"))
	if err != nil {
		return "", 0, errors.Wrap(err, "getting session")
	}
	return sess.ID, bindIntParam(ctx, "semesterId"), nil
}

func (api *gradeApi) recordScore(ctx echo.Context) error {
	lect, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sessionID, semesterID, err := api.bindTerm(ctx)
	if err != nil {
		return err
	}

	var data grade.NewScore
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	score, err := api.svc.RecordScore(ctx.Request().Context(), lect, sessionID, semesterID, data)
	if err != nil {
		return errors.Wrap(err, "recording score")
	}
	return ctx.JSON(http.StatusCreated, score)
}

func (api *gradeApi) updateScore(ctx echo.Context) error {
	lect, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sessionID, semesterID, err := api.bindTerm(ctx)
	if err != nil {
		return err
	}

	var data grade.NewScore
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewScore")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	score, err := api.svc.UpdateScore(ctx.Request().Context(), lect, sessionID, semesterID, data)
	if err != nil {
		return errors.Wrap(err, "updating score")
	}
	return ctx.JSON(http.StatusOK, score)
}

func (api *gradeApi) lecturerScores(ctx echo.Context) error {
	lect, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	scores, err := api.svc.LecturerScores(ctx.Request().Context(), lect.ID)
	if err != nil {
		return errors.Wrap(err, "querying lecturer scores")
	}
	if scores == nil {
		scores = []grade.Score{}
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *gradeApi) studentScores(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sessionID, semesterID, err := api.bindTerm(ctx)
	if err != nil {
		return err
	}

	scores, err := api.svc.StudentScores(ctx.Request().Context(), student.ID, sessionID, semesterID)
	if err != nil {
		return errors.Wrap(err, "querying student scores")
	}
	if len(scores) == 0 {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *gradeApi) studentGPA(ctx echo.Context) error {
	student, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	sessionID, semesterID, err := api.bindTerm(ctx)
	if err != nil {
		return err
	}

	gpa, err := api.svc.StudentGPA(ctx.Request().Context(), student.ID, sessionID, semesterID)
	if err != nil {
		return errors.Wrap(err, "getting student GPA")
	}
	return ctx.JSON(http.StatusOK, gpa)
}
