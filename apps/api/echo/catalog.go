package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/access"
	"github.com/darasahq/darasa/core/catalog"
)

type catalogApi struct {
	svc      catalog.ServiceInterface
	validate *validator.Validate
}

func registerCatalogAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	checker *access.Checker,
	svc catalog.ServiceInterface,
	validate *validator.Validate,
) {
	api := catalogApi{svc: svc, validate: validate}

	dg := g.Group("/departments", jwt)
	dg.GET("", api.queryDepartments, accessMiddleware(checker, access.ResourceDepartments, access.ActionList))
	dg.POST("", api.createDepartment, accessMiddleware(checker, access.ResourceDepartments, access.ActionCreate))
	dg.GET("/:id", api.retrieveDepartment, accessMiddleware(checker, access.ResourceDepartments, access.ActionShow))
	dg.PUT("/:id", api.updateDepartment, accessMiddleware(checker, access.ResourceDepartments, access.ActionEdit))
	dg.DELETE("/:id", api.destroyDepartment, accessMiddleware(checker, access.ResourceDepartments, access.ActionDelete))

	sg := g.Group("/subjects", jwt)
	sg.GET("", api.querySubjects, accessMiddleware(checker, access.ResourceSubjects, access.ActionList))
	sg.POST("", api.createSubject, accessMiddleware(checker, access.ResourceSubjects, access.ActionCreate))
	sg.GET("/:id", api.retrieveSubject, accessMiddleware(checker, access.ResourceSubjects, access.ActionShow))
	sg.PUT("/:id", api.updateSubject, accessMiddleware(checker, access.ResourceSubjects, access.ActionEdit))
	sg.DELETE("/:id", api.destroySubject, accessMiddleware(checker, access.ResourceSubjects, access.ActionDelete))
}

// Departments

func (api *catalogApi) queryDepartments(ctx echo.Context) error {
	depts, err := api.svc.QueryDepartments()
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	if depts == nil {
		depts = []catalog.Department{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(depts, len(depts)))
}

func (api *catalogApi) createDepartment(ctx echo.Context) error {
	var data catalog.NewDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDepartment")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	dept, err := api.svc.CreateDepartment(data)
	if err != nil {
		return errors.Wrap(err, "creating department")
	}
	return ctx.JSON(http.StatusCreated, DetailResponse{Data: dept})
}

func (api *catalogApi) retrieveDepartment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	dept, err := api.svc.GetDepartmentByID(id)
	if err != nil {
		return errors.Wrap(err, "getting department")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: dept})
}

func (api *catalogApi) updateDepartment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	orig, err := api.svc.GetDepartmentByID(id)
	if err != nil {
		return errors.Wrap(err, "getting department")
	}

	var data catalog.UpdateDepartment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDepartment")
	}
	if err := data.Validate(orig, api.validate, api.svc); err != nil {
		return err
	}

	dept, err := api.svc.UpdateDepartment(id, data)
	if err != nil {
		return errors.Wrap(err, "updating department")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: dept})
}

func (api *catalogApi) destroyDepartment(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetDepartmentByID(id); err != nil {
		return errors.Wrap(err, "getting department")
	}
	if err := api.svc.DeleteDepartments(id); err != nil {
		return errors.Wrap(err, "deleting department")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Subjects

func (api *catalogApi) querySubjects(ctx echo.Context) error {
	filter := new(catalog.SubjectFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, newListResponse([]catalog.Subject{}, 0))
	}

	subs, err := api.svc.QuerySubjects(filter)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subs == nil {
		subs = []catalog.Subject{}
	}
	return ctx.JSON(http.StatusOK, newListResponse(subs, len(subs)))
}

func (api *catalogApi) createSubject(ctx echo.Context) error {
	var data catalog.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	sub, err := api.svc.CreateSubject(data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, DetailResponse{Data: sub})
}

func (api *catalogApi) retrieveSubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	sub, err := api.svc.GetSubjectByID(id)
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: sub})
}

func (api *catalogApi) updateSubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	orig, err := api.svc.GetSubjectByID(id)
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}

	var data catalog.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(orig, api.validate, api.svc); err != nil {
		return err
	}

	sub, err := api.svc.UpdateSubject(id, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, DetailResponse{Data: sub})
}

func (api *catalogApi) destroySubject(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := api.svc.GetSubjectByID(id); err != nil {
		return errors.Wrap(err, "getting subject")
	}
	if err := api.svc.DeleteSubjects(id); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
