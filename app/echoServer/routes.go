// app/echoServer/routes.go
package echoServer

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	authctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/auth"
	bookctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/book"
	cartctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/cart"
	feedbackctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/feedback"
	libraryctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/library"
	paymentctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/payment"
)

type C struct {
	Auth     *authctrl.Controller
	Book     *bookctrl.Controller
	Cart     *cartctrl.Controller
	Library  *libraryctrl.Controller
	Payment  *paymentctrl.Controller
	Feedback *feedbackctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	v1 := e.Group("/v1")

	// public
	v1.POST("/users/register", c.Auth.Register)
	v1.POST("/users/login", c.Auth.Login)
	v1.GET("/books", c.Book.List)
	v1.GET("/books/:id", c.Book.Detail)
	v1.GET("/books/:id/reviews", c.Library.ListReviews)
	v1.POST("/feedback", c.Feedback.Submit)
	v1.GET("/payment/paypal", c.Payment.PayPal)

	// cart works for both logged-in users and anonymous sessions
	cart := v1.Group("/cart", OptionalAuth(c.JWTSecret))
	cart.GET("", c.Cart.Get)
	cart.POST("/add", c.Cart.Add)
	cart.POST("/update", c.Cart.Update)
	cart.POST("/remove", c.Cart.Remove)

	// authenticated
	auth := v1.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return jwt.MapClaims{}
		},
	}), claimsToContext)

	auth.GET("/library", c.Library.MyLibrary)
	auth.POST("/library/borrow", c.Library.Borrow)
	auth.POST("/library/return", c.Library.Return)
	auth.POST("/library/waiting-list", c.Library.JoinWaitingList)
	auth.POST("/library/reviews", c.Library.AddReview)

	auth.POST("/payment/process", c.Payment.Process)
	auth.POST("/payment/complete", c.Payment.Complete)
	auth.POST("/payment/credit-card", c.Payment.SubmitCreditCard)

	// admin (role checked per handler)
	auth.POST("/books", c.Book.Create)
	auth.PUT("/books/:id", c.Book.Update)
	auth.DELETE("/books/:id", c.Book.Delete)
	auth.POST("/books/:id/stock", c.Book.AdjustStock)
	auth.GET("/feedback", c.Feedback.List)
}

// claimsToContext copies the verified JWT claims into plain context keys so
// handlers never touch the token type directly.
func claimsToContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if tok, ok := c.Get("user").(*jwt.Token); ok {
			if claims, ok := tok.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok {
					c.Set("user_email", sub)
				}
				if role, ok := claims["role"].(string); ok {
					c.Set("role", role)
				}
			}
		}
		return next(c)
	}
}
