package main

import (
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/webshop-go/storefront/app/cmd"
	"github.com/webshop-go/storefront/app/configs"
	"github.com/webshop-go/storefront/app/routes"
)

func main() {
	env := configs.LoadEnv()
	if len(os.Args) > 1 {
		cmd.RunCli()
		return
	}

	logger := newLogger(env.APP_ENV)
	defer func() { _ = logger.Sync() }()

	db, err := configs.OpenConnection()
	if err != nil {
		logger.Fatalw("db connection failed", "error", err)
	}
	logger.Info("database connected")

	router, carts, err := routes.NewRouter(db, logger)
	if err != nil {
		logger.Fatalw("router setup failed", "error", err)
	}
	defer carts.Shutdown()

	addr := env.Port
	if addr == "" {
		addr = ":8080"
	}
	server := http.Server{
		Addr:    addr,
		Handler: router,
	}

	logger.Infow("server starting", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil {
		logger.Errorw("server stopped", "error", err)
	}
}

func newLogger(appEnv string) *zap.SugaredLogger {
	if appEnv == "production" {
		return zap.Must(zap.NewProduction()).Sugar()
	}
	return zap.Must(zap.NewDevelopment()).Sugar()
}
