package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"c2paview/src/app"
	cfg "c2paview/src/configuration"
	"c2paview/src/metaapi"
	db "c2paview/src/repository"
	"c2paview/src/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Dependencies are the collaborators the router is wired with. Archive is
// nil when S3 archiving is disabled.
type Dependencies struct {
	Fetcher     session.Fetcher
	Credentials db.CredentialsDB
	Archive     Archiver
	Logger      *logrus.Logger
}

// RunServer serves until ctx is done, then shuts down gracefully.
func RunServer(ctx context.Context, config *cfg.Properties, logger *logrus.Logger) error {
	if logger.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	credentials, err := db.NewCredentialsDataBase(config, logger)
	if err != nil {
		return fmt.Errorf("credentials store: %w", err)
	}
	if !credentials.Connect() {
		return fmt.Errorf("can not connect to credentials store")
	}
	defer credentials.Close()

	deps := Dependencies{
		Fetcher:     metaapi.NewClient(config, logger),
		Credentials: credentials,
		Logger:      logger,
	}
	if config.S3.Enabled {
		clientS3, err := app.NewMinioS3Client(config, logger)
		if err != nil {
			logger.WithError(err).Warn("upload archive disabled")
		} else {
			deps.Archive = clientS3
		}
	}

	router := NewRouter(config, deps)
	logger.WithFields(logrus.Fields{
		"port":     config.Server.Port,
		"metadata": config.MetadataAPI.Host,
		"archive":  deps.Archive != nil,
	}).Info("starting viewer")
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: config.Server.ReadTimeout,
	}
	served := make(chan error, 1)
	go func() { served <- srv.ListenAndServe() }()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down viewer")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-served; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// corsConfig treats an empty list or "*" as any origin.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Cache-Control"},
		ExposeHeaders: []string{"Content-Length", "X-Cache"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	return c
}

// NewRouter registers every route on a fresh gin engine.
func NewRouter(config *cfg.Properties, deps Dependencies) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(corsConfig(config.Server.AllowOrigins)))
	if config.Server.Pprof {
		pprof.Register(router)
	}

	handler := NewHandler(config, deps.Fetcher, deps.Logger)
	external := NewExternalHandler(config, deps.Fetcher, deps.Credentials, deps.Archive, deps.Logger)

	// Register Routes
	router.GET("/health", handler.GetHealth)
	router.GET("/", handler.Root)
	router.POST("/", handler.PostRoot)

	api := router.Group("/api")
	api.GET("/view", external.GetView)
	api.POST("/upload", external.PostUpload)
	api.GET("/credentials", external.GetCredentials)
	if deps.Archive != nil {
		s3 := NewS3Handler(deps.Archive)
		api.GET("/uploads", s3.GetUploadList)
		api.DELETE("/uploads", s3.DeleteUpload)
	}

	router.NoRoute(func(ctx *gin.Context) { ctx.JSON(http.StatusNotFound, gin.H{}) })
	return router
}
