package metaapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cfg "c2paview/src/configuration"
	"c2paview/src/presenter"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	config := &cfg.Properties{MetadataAPI: cfg.MetadataAPIProperties{
		Host:           srv.URL + "/",
		Timeout:        2 * time.Second,
		MetadataPath:   "/api/metadata",
		ExifPath:       "/api/exif_metadata",
		C2PAPath:       "/api/c2pa_metadata",
		ThumbnailsPath: "/api/extract_thumbnails",
		UploadPath:     "/api/upload",
	}}
	logger, _ := test.NewNullLogger()
	return NewClient(config, logger)
}

func TestClient_ExifUnwrapsEnvelope(t *testing.T) {
	var gotURI string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/exif_metadata", r.URL.Path)
		gotURI = r.URL.Query().Get("uri")
		io.WriteString(w, `{"z_last.jpg": {"filename": "z_last.jpg", "width": 10}, "a_second": {"filename": "wrong"}}`)
	}))

	rec, err := client.Exif(context.Background(), "https://img.example/a b.jpg?x=1")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/a b.jpg?x=1", gotURI)
	name, _ := rec.Filename.Text()
	assert.Equal(t, "z_last.jpg", name, "first key in document order wins")
}

func TestClient_C2PA(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"provenance": [{"name": "Action", "action": "c2pa.opened"}, 17],
			"thumbnails": {"claim_thumbnail": "AAAA"},
			"c2pa_data": {"ignored": true}
		}`)
	}))

	res, err := client.C2PA(context.Background(), "u")
	require.NoError(t, err)
	require.Len(t, res.Provenance, 2)
	require.NotNil(t, res.Thumbnails)
	assert.Equal(t, "AAAA", res.Thumbnails.Claim)
}

func TestClient_WrongTypedBlocksResolveToUnknown(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"a.jpg": {
			"filename": "a.jpg",
			"photography": "bad",
			"iptc": 12,
			"gps": [],
			"exif": "none"
		}}`)
	}))

	rec, err := client.Exif(context.Background(), "u")
	require.NoError(t, err)
	fields := presenter.ResolveFields(rec)
	assert.Equal(t, "a.jpg", fields.Filename)
	assert.Equal(t, presenter.Unknown, fields.CameraMake)
	assert.Equal(t, presenter.Unknown, fields.Title)
	assert.Equal(t, presenter.Unknown, fields.ExposureMode)
	assert.Nil(t, presenter.FormatGPS(rec.GPS, ""))
}

func TestClient_C2PAWrongTypedBlocks(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{
			"provenance": {"a": 1},
			"thumbnails": {"claim_thumbnail": 5, "ingredient_thumbnail": "SU5HUg=="},
			"digital_source_type": "trainedAlgorithmicMedia",
			"author_info": ["x"]
		}`)
	}))

	res, err := client.C2PA(context.Background(), "u")
	require.NoError(t, err)
	assert.Empty(t, res.Provenance)
	require.NotNil(t, res.Thumbnails)
	assert.Empty(t, res.Thumbnails.Claim)
	assert.Equal(t, "SU5HUg==", res.Thumbnails.Ingredient)
	assert.Nil(t, presenter.ResolveSourceType(res.DigitalSourceType))
	assert.Nil(t, presenter.BuildContact(res.AuthorInfo))
}

func TestClient_MetadataBundleKeepsBothHalves(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"a.jpg": {
			"filename": "a.jpg",
			"photography": {"camera_make": "Canon"},
			"provenance": [{"name": "Verification", "verification": "Signature Valid"}],
			"image_data": 7
		}}`)
	}))

	bundle, err := client.Metadata(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "Canon", presenter.ResolveFields(&bundle.MetadataRecord).CameraMake)
	require.Len(t, bundle.Provenance, 1)
	assert.Empty(t, bundle.ImageData)
}

func TestClient_Thumbnails(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/extract_thumbnails", r.URL.Path)
		io.WriteString(w, `{"claim_thumbnail": null, "ingredient_thumbnail": "SU5HUg=="}`)
	}))

	thumbs, err := client.Thumbnails(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, "SU5HUg==", thumbs.Ingredient)
	assert.Empty(t, thumbs.Claim)
}

func TestClient_HTTPStatusError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"detail": "Failed to download image"}`)
	}))

	_, err := client.Metadata(context.Background(), "u")
	require.Error(t, err)
	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "Failed to download image", statusErr.Detail)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Contains(t, err.Error(), "HTTP error! status: 500")
}

func TestClient_Malformed(t *testing.T) {
	bodies := map[string]string{
		"not json":        `<html>oops</html>`,
		"array":           `[1, 2]`,
		"empty envelope":  `{}`,
		"scalar envelope": `{"a.jpg": "nope"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				io.WriteString(w, body)
			}))
			_, err := client.Exif(context.Background(), "u")
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := srv.URL
	srv.Close()

	logger, _ := test.NewNullLogger()
	client := NewClient(&cfg.Properties{MetadataAPI: cfg.MetadataAPIProperties{Host: host, ExifPath: "/x"}}, logger)
	_, err := client.Exif(context.Background(), "u")
	require.Error(t, err)
	assert.Zero(t, StatusCode(err))
	assert.NotErrorIs(t, err, ErrMalformed)
}

func TestClient_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := client.C2PA(ctx, "u")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Upload(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "photo.jpg", header.Filename)
		assert.Equal(t, []byte("JPEGDATA"), data)

		io.WriteString(w, `{"photo.jpg": {
			"filename": "photo.jpg",
			"image_data": "data:image/jpeg;base64,SlBFRw==",
			"provenance": [{"name": "Verification", "verification": "Signature Valid"}],
			"thumbnails": {"ingredient_thumbnail": "SU5HUg=="}
		}}`)
	}))

	res, err := client.Upload(context.Background(), "photo.jpg", []byte("JPEGDATA"))
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,SlBFRw==", res.ImageData)
	name, _ := res.Filename.Text()
	assert.Equal(t, "photo.jpg", name)
	assert.Len(t, res.Provenance, 1)
	require.NotNil(t, res.Thumbnails)
	assert.Equal(t, "SU5HUg==", res.Thumbnails.Ingredient)
}

func TestRequestPipeline_RecoversPanic(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pipe := RequestPipeline[int]{
		requestPrepare: func(context.Context) (*http.Request, error) { panic("boom") },
	}
	_, err := pipe.run(context.Background(), http.DefaultClient, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "request pipeline panicked", hook.LastEntry().Message)
}
