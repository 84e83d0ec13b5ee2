package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/subject"
	"github.com/PeaceIshola/eduhub/core/subscription"
)

type subscriptionApi struct {
	svc     *subscription.Service
	subjSvc *subject.Service
}

func registerSubscriptionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *subscription.Service, subjSvc *subject.Service) {
	api := subscriptionApi{svc: svc, subjSvc: subjSvc}

	sg := g.Group("/subscriptions", jwt)
	sg.POST("", api.create)
	sg.GET("", api.listMine)
	sg.DELETE("/:id", api.cancel)
}

func (api *subscriptionApi) create(ctx echo.Context) error {
	var data subscription.NewSubscription
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubscription")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	// the subject must exist before any money changes hands
	if _, err := api.subjSvc.GetByID(ctx.Request().Context(), data.SubjectID); err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return core.NewValidationError(subscription.ErrUnknownSubject,
				core.FieldError{Field: "subject_id", Error: subscription.ErrUnknownSubject.Error()})
		}
		return errors.Wrap(err, "finding subject by ID")
	}

	sub, err := api.svc.Create(ctx.Request().Context(), getContextUserID(ctx), data)
	if err != nil {
		if errors.Cause(err) == subscription.ErrNotAuthenticated {
			return errUnauthorized
		}
		return errors.Wrap(err, "creating subscription")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subscriptionApi) listMine(ctx echo.Context) error {
	subs, err := api.svc.ListByUser(ctx.Request().Context(), getContextUserID(ctx))
	if err != nil {
		return errors.Wrap(err, "listing subscriptions")
	}
	if subs == nil {
		subs = []subscription.Subscription{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *subscriptionApi) cancel(ctx echo.Context) error {
	err := api.svc.Cancel(ctx.Request().Context(), getContextUserID(ctx), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == subscription.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "cancelling subscription")
	}
	return ctx.NoContent(http.StatusNoContent)
}
