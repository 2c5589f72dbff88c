package controllers

import (
	"github.com/fsdevblog/linkresolver/internal/config"
	"github.com/fsdevblog/linkresolver/internal/controllers/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type RouterParams struct {
	LinkService LinkResolver
	PingService ConnectionChecker
	AppConf     config.Config
	Logger      *logrus.Logger
}

func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(middlewares.MetricsMiddleware())
	r.Use(middlewares.GzipMiddleware())

	shortURLController := NewShortURLController(params.LinkService, params.AppConf.BaseURL)
	pingController := NewPingController(params.PingService)

	r.GET("/ping", pingController.Ping)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/expand/:code", shortURLController.Expand)
	r.GET("/:code", shortURLController.Redirect)
	r.POST("/", shortURLController.CreateShortURL)

	api := r.Group("/api")
	api.POST("/shorten", shortURLController.CreateShortURLJSON)
	api.POST("/expand", shortURLController.ExpandJSON)
	return r
}
