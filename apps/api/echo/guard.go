package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/PeaceIshola/eduhub/core"
	"github.com/PeaceIshola/eduhub/core/entitlement"
)

type accessDeniedResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

// requireFeature gates an endpoint behind the entitlement resolver. Anonymous
// requests are evaluated too: free features pass, premium ones get a sign-in
// prompt instead of an upgrade prompt.
func requireFeature(resolver *entitlement.Resolver, feature entitlement.Feature) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			decision := resolver.Check(ctx.Request().Context(), getContextUserID(ctx), feature)
			switch decision.Outcome {
			case entitlement.OutcomeAllowed:
				return next(ctx)
			case entitlement.OutcomeUnauthenticated:
				return ctx.JSON(http.StatusUnauthorized, accessDeniedResponse{
					Error:    decision.Reason,
					Redirect: core.Conf.FrontendBaseURL + "/login",
				})
			default:
				return ctx.JSON(http.StatusPaymentRequired, accessDeniedResponse{
					Error:    decision.Reason,
					Redirect: core.Conf.FrontendBaseURL + "/upgrade",
				})
			}
		}
	}
}

// registerContentAPI mounts one endpoint per learning feature, each behind its
// entitlement guard.
func registerContentAPI(g *echo.Group, optJWT echo.MiddlewareFunc, resolver *entitlement.Resolver) {
	api := contentApi{resolver: resolver}

	cg := g.Group("/content", optJWT)
	cg.GET("/forum", api.serve("forum discussions"), requireFeature(resolver, entitlement.FeatureForum))
	cg.GET("/quizzes", api.serve("practice quizzes"), requireFeature(resolver, entitlement.FeatureQuizzes))
	cg.GET("/flashcards", api.serve("flashcards"), requireFeature(resolver, entitlement.FeatureFlashcards))
	cg.GET("/resources", api.serve("downloadable resources"), requireFeature(resolver, entitlement.FeatureResources))
	cg.GET("/solution-bank", api.serve("step-by-step solutions"), requireFeature(resolver, entitlement.FeatureSolutionBank))
	cg.GET("/homework-help", api.serve("homework help"), requireFeature(resolver, entitlement.FeatureHomeworkHelp))
	cg.GET("/quick-help", api.serve("quick help"), requireFeature(resolver, entitlement.FeatureQuickHelp))
	cg.GET("/dashboard", api.serve("student dashboard"), requireFeature(resolver, entitlement.FeatureStudentDashboard))

	// lets clients ask "could I?" without hitting the feature itself
	cg.GET("/access/:feature", api.checkAccess)
}

type contentApi struct {
	resolver *entitlement.Resolver
}

func (api *contentApi) serve(description string) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"content": description})
	}
}

func (api *contentApi) checkAccess(ctx echo.Context) error {
	// unknown feature names are not rejected: the resolver treats them as
	// premium so probing cannot fail open
	feature := entitlement.Feature(ctx.Param("feature"))
	decision := api.resolver.Check(ctx.Request().Context(), getContextUserID(ctx), feature)
	return ctx.JSON(http.StatusOK, decision)
}
