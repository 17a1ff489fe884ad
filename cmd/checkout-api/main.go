package main

import (
	"log"
	"os"

	"github.com/ebooklane/checkout-api/cmd/checkout-api/app"
	"github.com/ebooklane/checkout-api/configs"
	"github.com/ebooklane/checkout-api/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	logging.Init(cfg.App.Name, "./logs/app.log")

	a, cleanup, err := app.InitWithConfig(cfg, env)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	log.Printf("checkout-api (%s) listening on %s", env, cfg.App.HTTPAddr)
	if err := a.Router.Run(cfg.App.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
