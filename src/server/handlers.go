package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	cfg "c2paview/src/configuration"
	"c2paview/src/presenter"
	"c2paview/src/render"
	"c2paview/src/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	uriQueryParam      = "uri"
	combinedQueryParam = "combined"
	uploadFormField    = "file"
	contentTypeHTML    = "text/html; charset=utf-8"
)

type (
	// AppHandler serves the viewer page itself.
	AppHandler struct {
		fetcher   session.Fetcher
		opts      presenter.Options
		page      render.Page
		maxUpload int64
		logger    *logrus.Logger
	}
)

func NewHandler(config *cfg.Properties, fetcher session.Fetcher, logger *logrus.Logger) *AppHandler {
	return &AppHandler{
		fetcher:   fetcher,
		opts:      presenter.Options{MapSearchURL: config.Viewer.MapSearchURL},
		page:      render.Page{Title: "Image Metadata Viewer", UploadAction: "/"},
		maxUpload: config.Server.MaxUpload,
		logger:    logger,
	}
}

func (a *AppHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Root renders the viewer. With ?uri= it loads that image, without it shows
// the upload prompt.
func (a *AppHandler) Root(c *gin.Context) {
	viewer := session.NewViewer(a.fetcher, a.opts, a.logger)
	if uri := c.Query(uriQueryParam); uri != "" {
		load := viewer.Load
		if c.Query(combinedQueryParam) == "true" {
			load = viewer.LoadCombined
		}
		// The failure is already part of the display model.
		_ = load(c.Request.Context(), uri)
	}
	a.writePage(c, viewer.Snapshot())
}

// PostRoot handles the upload form of the viewer page.
func (a *AppHandler) PostRoot(c *gin.Context) {
	viewer := session.NewViewer(a.fetcher, a.opts, a.logger)
	filename, data, err := readUpload(c, a.maxUpload)
	if err != nil {
		a.writePage(c, presenter.Display{State: presenter.StateError, Error: err.Error()})
		return
	}
	_ = viewer.Upload(c.Request.Context(), filename, data)
	a.writePage(c, viewer.Snapshot())
}

func (a *AppHandler) writePage(c *gin.Context, d presenter.Display) {
	var buffer bytes.Buffer
	if err := render.HTML(&buffer, a.page, d); err != nil {
		a.logger.WithError(err).Error("can not render viewer page")
		c.String(http.StatusInternalServerError, "can not render page")
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, buffer.Bytes())
}

// readUpload reads the multipart file field, refusing bodies over limit.
func readUpload(c *gin.Context, limit int64) (string, []byte, error) {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	file, header, err := c.Request.FormFile(uploadFormField)
	if err != nil {
		return "", nil, fmt.Errorf("can not find %q in request: %w", uploadFormField, err)
	}
	defer file.Close()

	var buffer bytes.Buffer
	if _, err = io.Copy(&buffer, file); err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}
	return header.Filename, buffer.Bytes(), nil
}
