package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/salonsys/salon-admin/internal/handlers"
	"github.com/salonsys/salon-admin/internal/middleware/auth"
)

type Deps struct {
	AuthHandler      *handlers.AuthHandler
	ClientHandler    *handlers.ClientHandler
	ProcedureHandler *handlers.ProcedureHandler
	UserHandler      *handlers.UserHandler
	Gate             *auth.Gate
	PhotoDir         string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	if d.PhotoDir != "" {
		e.Static("/photos", d.PhotoDir)
	}

	v1 := e.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/register", d.AuthHandler.Register)
	authGroup.POST("/login", d.AuthHandler.Login)
	authGroup.POST("/login/json", d.AuthHandler.LoginJSON)
	authGroup.GET("/me", d.AuthHandler.Me, d.Gate.RequireUser)

	clients := v1.Group("/clients")
	clients.GET("", d.ClientHandler.ListClients)
	clients.GET("/search", d.ClientHandler.SearchClients)
	clients.GET("/:id", d.ClientHandler.GetClient)
	clients.POST("", d.ClientHandler.CreateClient, d.Gate.RequireAdmin)
	clients.PUT("/:id", d.ClientHandler.UpdateClient, d.Gate.RequireAdmin)
	clients.DELETE("/:id", d.ClientHandler.DeleteClient, d.Gate.RequireAdmin)
	clients.POST("/:id/photo", d.ClientHandler.UploadPhoto, d.Gate.RequireAdmin)

	procedures := v1.Group("/procedures")
	procedures.GET("", d.ProcedureHandler.ListProcedures)
	procedures.GET("/:id", d.ProcedureHandler.GetProcedure)
	procedures.POST("", d.ProcedureHandler.CreateProcedure, d.Gate.RequireUser)
	procedures.PUT("/:id", d.ProcedureHandler.UpdateProcedure, d.Gate.RequireUser)
	procedures.DELETE("/:id", d.ProcedureHandler.DeleteProcedure, d.Gate.RequireUser)

	users := v1.Group("/users", d.Gate.RequireAdmin)
	users.GET("", d.UserHandler.ListUsers)
	users.PATCH("/:id", d.UserHandler.PatchUser)
}
