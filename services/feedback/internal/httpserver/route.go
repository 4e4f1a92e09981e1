package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/vente_shop/pkg/middleware/auth"
)

type Deps struct {
	FeedbackHandler *FeedbackHTTP
	Auth            *middleware.Authenticator
}

func Register(e *echo.Echo, d *Deps) {
	feedback := e.Group("/feedback")
	feedback.POST("/contact", d.FeedbackHandler.CreateMessage, d.Auth.OptionalAuth)
	feedback.POST("/reviews", d.FeedbackHandler.CreateReview, d.Auth.OptionalAuth)
	feedback.GET("/reviews", d.FeedbackHandler.ListReviews)

	admin := e.Group("/admin", d.Auth.RequireAdmin)
	admin.GET("/messages", d.FeedbackHandler.ListMessages)
	admin.POST("/messages/:id/respond", d.FeedbackHandler.Respond)
	admin.GET("/reviews", d.FeedbackHandler.ListAllReviews)
	admin.PUT("/reviews/:id/approve", d.FeedbackHandler.ApproveReview)
	admin.DELETE("/reviews/:id", d.FeedbackHandler.DeleteReview)
	admin.GET("/dashboard", d.FeedbackHandler.Dashboard)
}
