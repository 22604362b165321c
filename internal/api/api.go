package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/viper"

	"github.com/ougirez/facilities/internal/api/controller"
	"github.com/ougirez/facilities/internal/pkg/constants"
	"github.com/ougirez/facilities/internal/pkg/logger"
	"github.com/ougirez/facilities/internal/pkg/metrics"
	"github.com/ougirez/facilities/internal/pkg/store"
	"github.com/ougirez/facilities/internal/service"
	"github.com/ougirez/facilities/internal/service/ingest"
)

type APIService struct {
	router  *echo.Echo
	service *service.Service
}

func (svc *APIService) Serve(addr string) {
	err := svc.router.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal(context.Background(), err)
	}
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func (svc *APIService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc.router.ServeHTTP(w, r)
}

func NewAPIService(ctx context.Context, store store.Store) (*APIService, error) {
	svc := &APIService{router: echo.New()}
	svc.router.HideBanner = true

	var err error
	svc.service, err = service.NewService(ctx, store, ingest.Options{
		Workers: viper.GetInt(constants.ViperIngestWorkersKey),
		Retries: viper.GetUint64(constants.ViperIngestRetriesKey),
	})
	if err != nil {
		return nil, fmt.Errorf("service.NewService: %w", err)
	}

	svc.router.Logger.SetLevel(log.WARN)
	if viper.GetBool(constants.ViperLogDevelopmentKey) {
		svc.router.Logger.SetLevel(log.DEBUG)
	}
	svc.router.JSONSerializer = JSONSerializer{}
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(svc.RequestIDMiddleware)
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: viper.GetStringSlice(constants.ViperHTTPAllowOriginsKey),
		AllowMethods: []string{echo.GET, echo.PUT, echo.POST, echo.DELETE},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, constants.HeaderKeyRequestID},
	}))

	svc.router.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := svc.router.Group("/api/v1")
	cntrl := controller.NewController(svc.service)

	variables := api.Group("/variables")
	variables.GET("/list", cntrl.ListVariables)
	variables.GET("/:slug", cntrl.GetVariable)
	variables.POST("/register", cntrl.RegisterVariable, svc.AdminMiddleware)

	keyRenames := api.Group("/key_renames")
	keyRenames.GET("/:data_source", cntrl.ListKeyRenames)
	keyRenames.POST("/register", cntrl.RegisterKeyRename, svc.AdminMiddleware)
	api.POST("/normalize", cntrl.Normalize)

	facilities := api.Group("/facilities")
	facilities.POST("/register", cntrl.RegisterFacility, svc.AdminMiddleware)
	facilities.GET("/:id", cntrl.GetFacility)
	facilities.POST("/:id/records", cntrl.WriteRecord, svc.AdminMiddleware)
	facilities.GET("/:id/latest", cntrl.GetLatestData)
	facilities.GET("/:id/latest/:variable", cntrl.GetLatestValue)
	facilities.GET("/:id/data", cntrl.GetAllData)
	facilities.GET("/:id/dates", cntrl.GetDates)
	facilities.GET("/:id/sector", cntrl.GetSector)
	facilities.GET("/:id/calculated", cntrl.GetCalculated)

	lgas := api.Group("/lgas")
	lgas.GET("/:lga/facilities", cntrl.ListFacilities)
	lgas.GET("/:lga/latest", cntrl.GetLatestDataByLGA)
	lgas.GET("/:lga/sum/:variable", cntrl.GetSum)
	lgas.GET("/:lga/average/:variable", cntrl.GetAverage)

	api.POST("/ingest", cntrl.Ingest, svc.AdminMiddleware)

	return svc, nil
}
