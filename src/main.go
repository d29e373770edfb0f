package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"strconv"
	"syscall"
	"time"
	"vrs/src/boot"
	"vrs/src/config"
	"vrs/src/lib"
	"vrs/src/middlewares"
	"vrs/src/models"
	"vrs/src/types"
	"vrs/src/utils"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	apiPrefix string = "/api/v1"
)

var isodate validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := utils.ParseDate(date)
	return err == nil
}

var gtdate validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	datetime, err := utils.ParseDate(date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue, ok := field.Interface().(string)
	if !ok {
		return false
	}
	fielddatetime, err := utils.ParseDate(fieldValue)
	if err != nil {
		return false
	}
	return datetime.After(fielddatetime)
}

var vehiclestatus validator.Func = func(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return models.IsVehicleStatus(status)
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("isodate", isodate)
		v.RegisterValidation("gtdate", gtdate)
		v.RegisterValidation("vehiclestatus", vehiclestatus)
	}
}

func respondError(ctx *gin.Context, err error) {
	respondStatus(ctx, types.HTTPStatus(err), err)
}

func respondStatus(ctx *gin.Context, status int, err error) {
	body := gin.H{"error": err.Error()}
	if code := types.Code(err); code != "" {
		body["code"] = code
	}
	ctx.AbortWithStatusJSON(status, body)
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"error": err.Error(),
		"code":  types.ErrValidation,
	})
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders, middlewares.Metrics)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(lib.MetricsRegistry, promhttp.HandlerOpts{})))
	if local, ok := lib.GetStorage().(*lib.LocalStorage); ok {
		router.Static("/storage", local.Root())
	}
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		if mm == "" {
			return
		}
		on, err := strconv.ParseBool(mm)
		if err != nil || on {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func publicRoutes(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	authHandlers(apiv1)
	publicVehicleHandlers(apiv1)
	sessionHandlers(apiv1)
	return apiv1
}

func authorizedRoutes(g *gin.Engine) *gin.RouterGroup {
	authorized := g.Group(apiPrefix)
	authorized.Use(middlewares.AuthMiddleware)
	{
		authorized = profileHandlers(authorized)
		authorized = rentalHandlers(authorized)
		authorized = paymentHandlers(authorized)
	}
	return authorized
}

func internalRoutes(g *gin.Engine) *gin.RouterGroup {
	internal := g.Group(apiPrefix + "/internal")
	internal.Use(middlewares.AuthMiddleware, middlewares.RequireRoles(types.ROLE_ADMIN, types.ROLE_STAFF))
	{
		internal = vehicleHandlers(internal)
		internal = rentalOrderHandlers(internal)
		internal = internalPaymentHandlers(internal)
		internal = paymentAccountHandlers(internal)
		internal = maintenanceHandlers(internal)
		internal = userHandlers(internal)
		internal = reportHandlers(internal)
		internal = kioskHandlers(internal)
	}
	return internal
}

func registerRoutes(router *gin.Engine) {
	publicRoutes(router)
	authorizedRoutes(router)
	internalRoutes(router)
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Printf("Error creating logs dir: %s\n", err.Error())
		return
	}
	serverLogs := path.Join(logsDir, "server.log")
	apiLogs := path.Join(logsDir, "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func corsMiddleware() gin.HandlerFunc {
	if config.IsLocal() {
		return cors.Default()
	}
	appHost := os.Getenv("APP_HOST")
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization")
	cc.AllowOriginFunc = func(origin string) bool {
		if appHost == "" {
			return false
		}
		match, _ := regexp.MatchString(appHost, origin)
		return match
	}
	cc.AllowCredentials = true
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func main() {
	if config.IsLocal() {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	boot.InitDb()
	boot.InitStorage()
	boot.InitScheduler()
	defer boot.StopScheduler()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go boot.InitBroker(ctx)

	router := setupRouter()
	router.Use(corsMiddleware())
	registerValidators()
	router = maintenanceModeMiddleware(router)
	registerRoutes(router)

	port := os.Getenv("PORT")
	if port == "" {
		port = "9090"
	}
	srv := &http.Server{Addr: ":" + port, Handler: router}
	go func() {
		var err error
		if os.Getenv("TLS_ENABLE") == "true" {
			cwd, _ := os.Getwd()
			certpath := path.Join(cwd, "certificates", "localhost.pem")
			keypath := path.Join(cwd, "certificates", "localhost-key.pem")
			err = srv.ListenAndServeTLS(certpath, keypath)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down server: %s\n", err.Error())
	}
}
