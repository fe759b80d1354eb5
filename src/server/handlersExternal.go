package server

import (
	"context"
	"net/http"

	"c2paview/src/app"
	cfg "c2paview/src/configuration"
	"c2paview/src/presenter"
	db "c2paview/src/repository"
	"c2paview/src/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type (
	// Archiver keeps uploaded originals. *app.MinioS3Client is the
	// production implementation.
	Archiver interface {
		Archive(ctx context.Context, filename string, data []byte) (app.ArchivedUpload, error)
		ListArchived(ctx context.Context, filters []string) ([]app.ArchivedUpload, error)
		DeleteArchived(ctx context.Context, key string) error
	}

	// ExternalHandler exposes the metadata service through the viewer's
	// display model.
	ExternalHandler struct {
		fetcher     session.Fetcher
		credentials db.CredentialsDB
		archive     Archiver
		opts        presenter.Options
		viewerURL   string
		maxUpload   int64
		logger      *logrus.Logger
	}

	UploadResponse struct {
		presenter.Display
		Archived *app.ArchivedUpload `json:"archived,omitempty"`
	}
)

func NewExternalHandler(config *cfg.Properties, fetcher session.Fetcher, credentials db.CredentialsDB, archive Archiver, logger *logrus.Logger) *ExternalHandler {
	return &ExternalHandler{
		fetcher:     fetcher,
		credentials: credentials,
		archive:     archive,
		opts:        presenter.Options{MapSearchURL: config.Viewer.MapSearchURL},
		viewerURL:   config.Viewer.PublicURL,
		maxUpload:   config.Server.MaxUpload,
		logger:      logger,
	}
}

// GetView returns the display model for ?uri=. A primary fetch failure is
// answered with 502 and the error state.
func (e *ExternalHandler) GetView(c *gin.Context) {
	uri, ok := c.GetQuery(uriQueryParam)
	if !ok || uri == "" {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"message": "error", "error": "Image URI is required"})
		return
	}
	viewer := session.NewViewer(e.fetcher, e.opts, e.logger)
	var err error
	if c.Query(combinedQueryParam) == "true" {
		err = viewer.LoadCombined(c.Request.Context(), uri)
	} else {
		err = viewer.Load(c.Request.Context(), uri)
	}
	d := viewer.Snapshot()
	if err != nil {
		c.IndentedJSON(http.StatusBadGateway, gin.H{"message": "error", "error": d.Error, "payload": d})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "payload": d})
}

// PostUpload inspects an uploaded file and archives the original when an
// archive is configured.
func (e *ExternalHandler) PostUpload(c *gin.Context) {
	filename, data, err := readUpload(c, e.maxUpload)
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"message": "error", "error": err.Error()})
		return
	}
	viewer := session.NewViewer(e.fetcher, e.opts, e.logger)
	if err := viewer.Upload(c.Request.Context(), filename, data); err != nil {
		d := viewer.Snapshot()
		c.IndentedJSON(http.StatusBadGateway, gin.H{"message": "error", "error": d.Error, "payload": d})
		return
	}
	response := UploadResponse{Display: viewer.Snapshot()}
	if e.archive != nil {
		archived, err := e.archive.Archive(c.Request.Context(), filename, data)
		if err != nil {
			e.logger.WithField("filename", filename).WithError(err).Warn("can not archive upload")
		} else {
			response.Archived = &archived
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "payload": response})
}

// GetCredentials returns the compact credentials summary for ?uri=.
// Successful summaries are cached. A failed fetch answers Unverified and is
// never cached.
func (e *ExternalHandler) GetCredentials(c *gin.Context) {
	uri, ok := c.GetQuery(uriQueryParam)
	if !ok || uri == "" {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"message": "error", "error": "Image URI is required"})
		return
	}
	if summary, hit := e.credentials.Get(uri); hit {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, gin.H{"status": "success", "payload": summary})
		return
	}
	res, err := e.fetcher.C2PA(c.Request.Context(), uri)
	if err != nil {
		e.logger.WithField("uri", uri).WithError(err).Info("credentials unavailable, answering unverified")
		c.Header("X-Cache", "MISS")
		c.JSON(http.StatusOK, gin.H{"status": "success", "payload": presenter.Summarize(nil, uri, e.viewerURL)})
		return
	}
	summary := presenter.Summarize(res, uri, e.viewerURL)
	if err := e.credentials.Put(uri, summary); err != nil {
		e.logger.WithField("uri", uri).WithError(err).Warn("can not cache credentials")
	}
	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, gin.H{"status": "success", "payload": summary})
}
