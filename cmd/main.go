package main

import (
	"swasth-sathi/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start SWASTH SATHI API")
	}

	// blocks until SIGINT/SIGTERM, then shuts down gracefully
	app.Run()
}
