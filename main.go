package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"

	"github.com/tycoonhq/backend/app/controllers"
	"github.com/tycoonhq/backend/app/engine"
	"github.com/tycoonhq/backend/pkg/routes"
	"github.com/tycoonhq/backend/platform/logging"
	socket "github.com/tycoonhq/backend/platform/sockets"
)

func main() {
	logging.Init()

	app := fiber.New()

	app.Use(cors.New())
	routes.AuthRoutes(app)
	routes.GameRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(os.Getenv("JWT_SECRET")),
	}))

	app.Get("/user/cur", controllers.Cur)

	registry := engine.NewRegistry()
	go socket.CreateSocketIOServer(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = "4101"
	}
	app.Listen(":" + port)
}
