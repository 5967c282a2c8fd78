package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/classroom"
	"github.com/darasahq/darasa/core/lecture"
)

// lecture-content rides on the lectures permissions: there is no separate
// policy entry for it.
type lectureApi struct {
	svc          lecture.ServiceInterface
	classroomSvc classroom.ServiceInterface
	validate     *validator.Validate
}

func registerLectureAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	checker *access.Checker,
	svc lecture.ServiceInterface,
	classroomSvc classroom.ServiceInterface,
	validate *validator.Validate,
) {
	api := lectureApi{svc: svc, classroomSvc: classroomSvc, validate: validate}

	lg := g.Group("/lectures", jwt)
	lg.GET("", api.query, accessMiddleware(checker, access.ResourceLectures, access.ActionList))
	lg.POST("", api.create, accessMiddleware(checker, access.ResourceLectures, access.ActionCreate))
	lg.GET("/:id", api.retrieve, accessMiddleware(checker, access.ResourceLectures, access.ActionShow))
	lg.PUT("/:id", api.update, accessMiddleware(checker, access.ResourceLectures, access.ActionEdit))
	lg.DELETE("/:id", api.destroy, accessMiddleware(checker, access.ResourceLectures, access.ActionDelete))

	lg.POST("/:id/contents", api.addContent, accessMiddleware(checker, access.ResourceLectures, access.ActionCreate))
	lg.PUT("/:id/contents/:contentID", api.updateContent, accessMiddleware(checker, access.ResourceLectures, access.ActionEdit))
	lg.DELETE("/:id/contents/:contentID", api.destroyContent, accessMiddleware(checker, access.ResourceLectures, access.ActionDelete))
}

// Handlers

func (api *lectureApi) query(ctx echo.Context) error {
	filter := new(lecture.Filter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, newListResponse([]lecture.Lecture{}, 0))
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	// students never see drafts
	if claims.IsStudent {
		filter.PublishedOnly = true
	}

	lecs, err := api.svc.Query(*filter)
	if err != nil {
		return errors.Wrap(err, "querying lectures")
	}
	if lecs == nil {
		lecs = []lecture.Lecture{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(lecs, len(lecs)))
}

func (api *lectureApi) create(ctx echo.Context) error {
	var data lecture.NewLecture
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewLecture")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	// the class must exist before a lecture can hang off it
	if _, err := api.classroomSvc.GetClassByID(data.ClassID); err != nil {
		return errors.Wrap(err, "getting class")
	}

	lec, err := api.svc.Create(data)
	if err != nil {
		return errors.Wrap(err, "creating lecture")
	}
	return ctx.JSON(http.StatusCreated, DetailResponse{Data: lec})
}

func (api *lectureApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	lec, err := api.svc.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "getting lecture")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsStudent && !lec.IsPublished {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: lec})
}

func (api *lectureApi) update(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	orig, err := api.svc.GetByID(id)
	if err != nil {
		return errors.Wrap(err, "getting lecture")
	}

	var data lecture.UpdateLecture
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateLecture")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	lec, err := api.svc.Update(id, data)
	if err != nil {
		return errors.Wrap(err, "updating lecture")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: lec})
}

func (api *lectureApi) destroy(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetByID(id); err != nil {
		return errors.Wrap(err, "getting lecture")
	}
	if err := api.svc.Delete(id); err != nil {
		return errors.Wrap(err, "deleting lecture")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Contents

func (api *lectureApi) addContent(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data lecture.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	cnt, err := api.svc.AddContent(id, data)
	if err != nil {
		return errors.Wrap(err, "adding lecture content")
	}
	return ctx.JSON(http.StatusCreated, DetailResponse{Data: cnt})
}

func (api *lectureApi) updateContent(ctx echo.Context) error {
	cnt, err := api.lectureContent(ctx)
	if err != nil {
		return err
	}

	var data lecture.UpdateContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateContent")
	}
	if err := data.Validate(cnt, api.validate); err != nil {
		return err
	}

	cnt, err = api.svc.UpdateContent(cnt.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating lecture content")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: cnt})
}

func (api *lectureApi) destroyContent(ctx echo.Context) error {
	cnt, err := api.lectureContent(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.DeleteContents(cnt.ID); err != nil {
		return errors.Wrap(err, "deleting lecture content")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// lectureContent resolves the addressed content and checks it belongs to the
// addressed lecture.
func (api *lectureApi) lectureContent(ctx echo.Context) (lecture.Content, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return lecture.Content{}, err
	}
	contentID, err := intParam(ctx, "contentID")
	if err != nil {
		return lecture.Content{}, err
	}

	cnt, err := api.svc.GetContentByID(contentID)
	if err != nil {
		return lecture.Content{}, errors.Wrap(err, "getting lecture content")
	}
	if cnt.LectureID != id {
		return lecture.Content{}, errHttpNotFound
	}
	return cnt, nil
}
