package main

import (
	"errors"
	"os"

	"github.com/joho/godotenv"

	cmd "github.com/CovenantEyes/winsparkle/internal"
	"github.com/CovenantEyes/winsparkle/internal/logger"
	"github.com/CovenantEyes/winsparkle/internal/middleware"
)

func main() {
	logger.ConfigureLoggerFromFlags()

	// a .env next to the binary may carry WINSPARKLE_* settings
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Ignoring .env: %v", err)
	}

	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, middleware.ErrLogged) {
			logger.LogError("%s", err.Error())
		}
		os.Exit(1)
	}
}
