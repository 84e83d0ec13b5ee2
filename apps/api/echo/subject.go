package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/PeaceIshola/eduhub/core/entitlement"
	"github.com/PeaceIshola/eduhub/core/subject"
)

type subjectApi struct {
	svc *subject.Service
}

func registerSubjectAPI(g *echo.Group, jwt, optJWT echo.MiddlewareFunc, svc *subject.Service, resolver *entitlement.Resolver) {
	api := subjectApi{svc: svc}

	sg := g.Group("/subjects")

	// browsing the catalogue is a free feature, anonymous included
	browse := requireFeature(resolver, entitlement.FeatureSubjectBrowsing)
	sg.GET("", api.query, optJWT, browse)
	sg.GET("/:code", api.retrieve, optJWT, browse)

	// admin-only management; route-level middleware so the browse routes
	// on the same prefix stay reachable
	sg.POST("", api.create, jwt, adminMiddleware())
	sg.DELETE("/:id", api.destroy, jwt, adminMiddleware())
}

func (api *subjectApi) query(ctx echo.Context) error {
	subjects, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sub, err := api.svc.GetByCode(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding subject by code")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}
