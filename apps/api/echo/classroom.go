package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/classroom"
	"github.com/darasahq/darasa/core/user"
)

type classroomApi struct {
	svc      classroom.ServiceInterface
	userSvc  user.ServiceInterface
	validate *validator.Validate
}

func registerClassroomAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	checker *access.Checker,
	svc classroom.ServiceInterface,
	userSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := classroomApi{svc: svc, userSvc: userSvc, validate: validate}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.queryClasses, accessMiddleware(checker, access.ResourceClasses, access.ActionList))
	cg.POST("", api.createClass, accessMiddleware(checker, access.ResourceClasses, access.ActionCreate))
	cg.GET("/:id", api.retrieveClass, accessMiddleware(checker, access.ResourceClasses, access.ActionShow, api.classRecord))
	cg.PUT("/:id", api.updateClass, accessMiddleware(checker, access.ResourceClasses, access.ActionEdit, api.classRecord))
	cg.POST("/:id/invite-code", api.regenerateInviteCode, accessMiddleware(checker, access.ResourceClasses, access.ActionEdit, api.classRecord))
	cg.DELETE("/:id", api.destroyClass, accessMiddleware(checker, access.ResourceClasses, access.ActionDelete, api.classRecord))

	eg := g.Group("/enrollments", jwt)
	eg.GET("", api.queryEnrollments, accessMiddleware(checker, access.ResourceEnrollments, access.ActionList))
	eg.POST("", api.createEnrollment, accessMiddleware(checker, access.ResourceEnrollments, access.ActionCreate))
	// joining by invite code is the student's own flow, not a resource grant
	eg.POST("/join", api.joinClass, roleMiddleware(access.RoleStudent))
	eg.GET("/:id", api.retrieveEnrollment, accessMiddleware(checker, access.ResourceEnrollments, access.ActionShow))
	eg.DELETE("/:id", api.destroyEnrollment, accessMiddleware(checker, access.ResourceEnrollments, access.ActionDelete))
}

// classRecord loads ownership and enrollment context so teacher edit/delete
// and student show refinements can apply.
func (api *classroomApi) classRecord(ctx echo.Context) (*access.Record, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return nil, err
	}
	rec, err := api.svc.AccessRecord(id)
	if err != nil {
		return nil, errors.Wrap(err, "loading class access record")
	}
	return rec, nil
}

// Classes

func (api *classroomApi) queryClasses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	classes, err := api.svc.ClassesFor(claims.principal())
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	if classes == nil {
		classes = []classroom.Class{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(classes, len(classes)))
}

func (api *classroomApi) createClass(ctx echo.Context) error {
	var data classroom.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	cls, err := api.svc.CreateClass(data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, DetailResponse{Data: cls})
}

func (api *classroomApi) retrieveClass(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cls, err := api.svc.GetClassByID(id)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}

	// the invite code is the teacher's (and admin's) to share
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsStudent {
		cls.InviteCode = ""
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: cls})
}

func (api *classroomApi) updateClass(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	orig, err := api.svc.GetClassByID(id)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}

	var data classroom.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	cls, err := api.svc.UpdateClass(id, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: cls})
}

func (api *classroomApi) regenerateInviteCode(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	cls, err := api.svc.RegenerateInviteCode(id)
	if err != nil {
		return errors.Wrap(err, "regenerating invite code")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: cls})
}

func (api *classroomApi) destroyClass(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetClassByID(id); err != nil {
		return errors.Wrap(err, "getting class")
	}
	if err := api.svc.DeleteClasses(id); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Enrollments

func (api *classroomApi) queryEnrollments(ctx echo.Context) error {
	filter := new(classroom.EnrollmentFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, newListResponse([]classroom.Enrollment{}, 0))
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// students only ever see their own enrollments
	if claims.IsStudent {
		filter.StudentID = claims.Subject
	}

	enrs, err := api.svc.QueryEnrollments(*filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	if enrs == nil {
		enrs = []classroom.Enrollment{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(enrs, len(enrs)))
}

func (api *classroomApi) createEnrollment(ctx echo.Context) error {
	var data classroom.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	enr, err := api.svc.Enroll(data)
	if err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, DetailResponse{Data: enr})
}

func (api *classroomApi) joinClass(ctx echo.Context) error {
	var data classroom.JoinClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	student, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	enr, err := api.svc.JoinByInviteCode(data.InviteCode, student)
	if err != nil {
		return errors.Wrap(err, "joining class")
	}
	return ctx.JSON(http.StatusCreated, DetailResponse{Data: enr})
}

func (api *classroomApi) retrieveEnrollment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	enr, err := api.svc.GetEnrollmentByID(id)
	if err != nil {
		return errors.Wrap(err, "getting enrollment")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsStudent && enr.StudentID != claims.Subject {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: enr})
}

func (api *classroomApi) destroyEnrollment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetEnrollmentByID(id); err != nil {
		return errors.Wrap(err, "getting enrollment")
	}
	if err := api.svc.DeleteEnrollments(id); err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.NoContent(http.StatusNoContent)
}
