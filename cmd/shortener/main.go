package main

import (
	"os"

	"github.com/fsdevblog/linkresolver/internal/app"
	"github.com/fsdevblog/linkresolver/internal/bmeta"
	"github.com/fsdevblog/linkresolver/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	appConf, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		panic(err)
	}

	bmeta.Print(appConf.Logger, buildVersion, buildDate, buildCommit)

	a := app.Must(app.New(*appConf))

	a.Logger.WithFields(logrus.Fields{
		"address":  appConf.ServerAddress,
		"base_url": appConf.BaseURL,
		"storage":  appConf.DBType,
	}).Info("Starting server")
	if runErr := a.Run(); runErr != nil {
		a.Logger.WithError(runErr).Fatal("server stopped")
	}
}
