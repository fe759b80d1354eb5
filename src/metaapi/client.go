package metaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	cfg "c2paview/src/configuration"
	"c2paview/src/presenter"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// uploadField is the multipart field the service reads the file from.
const uploadField = "file"

type (
	// Client talks to the external metadata service. It is safe for
	// concurrent use.
	Client struct {
		host           string
		metadataPath   string
		exifPath       string
		c2paPath       string
		thumbnailsPath string
		uploadPath     string
		timeout        time.Duration
		httpClient     *http.Client
		logger         *logrus.Logger
	}
)

func NewClient(config *cfg.Properties, logger *logrus.Logger) *Client {
	api := config.MetadataAPI
	return &Client{
		host:           strings.TrimRight(api.Host, "/"),
		metadataPath:   api.MetadataPath,
		exifPath:       api.ExifPath,
		c2paPath:       api.C2PAPath,
		thumbnailsPath: api.ThumbnailsPath,
		uploadPath:     api.UploadPath,
		timeout:        api.Timeout,
		httpClient: &http.Client{Transport: &http.Transport{
			MaxIdleConns:    10,
			IdleConnTimeout: api.Timeout,
		}},
		logger: logger,
	}
}

// Exif fetches the fast EXIF/IPTC/GPS record for uri.
func (c *Client) Exif(ctx context.Context, uri string) (*presenter.MetadataRecord, error) {
	return get(ctx, c, c.exifPath, uri, decodeEnveloped[presenter.MetadataRecord])
}

// Metadata fetches the combined record of the legacy single-call flow.
func (c *Client) Metadata(ctx context.Context, uri string) (*presenter.Bundle, error) {
	return get(ctx, c, c.metadataPath, uri, decodeEnveloped[presenter.Bundle])
}

// C2PA fetches the provenance chain, thumbnails, source type and author.
func (c *Client) C2PA(ctx context.Context, uri string) (*presenter.C2PAResult, error) {
	return get(ctx, c, c.c2paPath, uri, decodeObject[presenter.C2PAResult])
}

func (c *Client) Thumbnails(ctx context.Context, uri string) (*presenter.Thumbnails, error) {
	return get(ctx, c, c.thumbnailsPath, uri, decodeObject[presenter.Thumbnails])
}

// Upload posts the file bytes and returns the single bundled result.
func (c *Client) Upload(ctx context.Context, filename string, data []byte) (*presenter.Bundle, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.host + c.uploadPath
	pipe := RequestPipeline[*presenter.Bundle]{
		requestPrepare: func(ctx context.Context) (*http.Request, error) {
			body, contentType, err := prepareMultipartFile(filename, data)
			if err != nil {
				return nil, err
			}
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", contentType)
			return req, nil
		},
		postProcess: decodeEnveloped[presenter.Bundle],
	}
	res, err := pipe.run(ctx, c.httpClient, c.logger)
	if err != nil {
		c.logFailure(endpoint, filename, err)
		return nil, fmt.Errorf("upload %s: %w", filename, err)
	}
	return res, nil
}

func get[T any](ctx context.Context, c *Client, path, uri string, decode func([]byte) (*T, error)) (*T, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	endpoint := c.host + path + "?uri=" + url.QueryEscape(uri)
	pipe := RequestPipeline[*T]{
		requestPrepare: func(ctx context.Context) (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			return req, nil
		},
		postProcess: decode,
	}
	res, err := pipe.run(ctx, c.httpClient, c.logger)
	if err != nil {
		c.logFailure(c.host+path, uri, err)
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	return res, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) logFailure(endpoint, subject string, err error) {
	c.logger.WithFields(logrus.Fields{
		"endpoint": endpoint,
		"subject":  subject,
		"status":   StatusCode(err),
	}).WithError(err).Debug("metadata service call failed")
}

func prepareMultipartFile(filename string, data []byte) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(uploadField, filename)
	if err != nil {
		return nil, "", err
	}
	if _, err = part.Write(data); err != nil {
		return nil, "", err
	}
	if err = writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

// decodeEnveloped unwraps `{ <anyKey>: record }` by taking the first key in
// document order.
func decodeEnveloped[T any](body []byte) (*T, error) {
	root, err := parseObject(body)
	if err != nil {
		return nil, err
	}
	var inner gjson.Result
	found := false
	root.ForEach(func(_, value gjson.Result) bool {
		inner, found = value, true
		return false
	})
	if !found {
		return nil, fmt.Errorf("%w: empty envelope", ErrMalformed)
	}
	if !inner.IsObject() {
		return nil, fmt.Errorf("%w: envelope does not wrap an object", ErrMalformed)
	}
	return decodeObject[T]([]byte(inner.Raw))
}

func decodeObject[T any](body []byte) (*T, error) {
	if _, err := parseObject(body); err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &out, nil
}

func parseObject(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrMalformed)
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}
	return root, nil
}

// errorDetail pulls the service's message out of an error body. FastAPI
// answers with "detail", the older Flask service with "error".
func errorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, key := range []string{"detail", "error", "message"} {
		if v := gjson.GetBytes(body, key); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
