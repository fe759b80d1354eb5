package session

import (
	"context"
	"errors"
	"sync"

	"c2paview/src/metaapi"
	"c2paview/src/presenter"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the metadata service as seen by the viewer.
type Fetcher interface {
	Exif(ctx context.Context, uri string) (*presenter.MetadataRecord, error)
	Metadata(ctx context.Context, uri string) (*presenter.Bundle, error)
	C2PA(ctx context.Context, uri string) (*presenter.C2PAResult, error)
	Thumbnails(ctx context.Context, uri string) (*presenter.Thumbnails, error)
	Upload(ctx context.Context, filename string, data []byte) (*presenter.Bundle, error)
}

// Observer receives every display model the viewer applies. Observers run
// under the viewer's lock and must not call back into it.
type Observer func(presenter.Display)

// Viewer owns the single active image. Every load starts a new generation;
// results that arrive for an older generation are dropped.
type Viewer struct {
	fetcher Fetcher
	opts    presenter.Options
	logger  *logrus.Logger

	mu         sync.Mutex
	generation uint64
	input      presenter.Input
	observers  []Observer
}

func NewViewer(fetcher Fetcher, opts presenter.Options, logger *logrus.Logger) *Viewer {
	return &Viewer{fetcher: fetcher, opts: opts, logger: logger}
}

func (v *Viewer) Subscribe(o Observer) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.observers = append(v.observers, o)
}

// Snapshot returns the current display model.
func (v *Viewer) Snapshot() presenter.Display {
	v.mu.Lock()
	defer v.mu.Unlock()
	return presenter.Compose(v.input, v.opts)
}

func (v *Viewer) Generation() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation
}

// Clear drops the active image and returns to the empty state. In-flight
// results for it are discarded when they arrive.
func (v *Viewer) Clear() {
	v.begin(presenter.Input{})
}

// Load fetches the fast EXIF record and the slow C2PA result for uri
// concurrently and applies each as it arrives. Only an EXIF failure is
// returned; a C2PA failure shows as "no provenance".
func (v *Viewer) Load(ctx context.Context, uri string) error {
	gen := v.begin(presenter.Input{URI: uri, Loading: true})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := v.fetcher.Exif(gctx, uri)
		if err != nil {
			v.apply(gen, "exif", failed(loadFailure, err))
			return err
		}
		v.apply(gen, "exif", func(in *presenter.Input) {
			in.Loading = false
			in.Record = rec
		})
		return nil
	})
	g.Go(func() error {
		res, err := v.fetcher.C2PA(gctx, uri)
		if err != nil {
			v.secondaryFailure(uri, "c2pa", err)
			res = nil
		}
		v.apply(gen, "c2pa", func(in *presenter.Input) {
			in.C2PALoaded = true
			in.C2PA = res
		})
		return nil
	})
	return g.Wait()
}

// LoadCombined is the legacy flow: one metadata call carrying everything
// but thumbnails, plus a separate thumbnails call.
func (v *Viewer) LoadCombined(ctx context.Context, uri string) error {
	gen := v.begin(presenter.Input{URI: uri, Loading: true})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bundle, err := v.fetcher.Metadata(gctx, uri)
		if err != nil {
			v.apply(gen, "metadata", failed(loadFailure, err))
			return err
		}
		v.apply(gen, "metadata", func(in *presenter.Input) {
			in.Loading = false
			in.Record = &bundle.MetadataRecord
			in.C2PALoaded = true
			in.C2PA = &bundle.C2PAResult
		})
		return nil
	})
	g.Go(func() error {
		thumbs, err := v.fetcher.Thumbnails(gctx, uri)
		if err != nil {
			v.secondaryFailure(uri, "thumbnails", err)
			return nil
		}
		v.apply(gen, "thumbnails", func(in *presenter.Input) {
			in.Thumbnails = thumbs
		})
		return nil
	})
	return g.Wait()
}

// Upload sends raw file bytes and applies the single bundled response.
func (v *Viewer) Upload(ctx context.Context, filename string, data []byte) error {
	gen := v.begin(presenter.Input{Loading: true})

	bundle, err := v.fetcher.Upload(ctx, filename, data)
	if err != nil {
		v.apply(gen, "upload", failed(uploadFailure, err))
		return err
	}
	v.apply(gen, "upload", func(in *presenter.Input) {
		in.Loading = false
		in.ImageData = bundle.ImageData
		in.Record = &bundle.MetadataRecord
		in.C2PALoaded = true
		in.C2PA = &bundle.C2PAResult
	})
	return nil
}

// begin clears all state for the previous image and starts a generation.
func (v *Viewer) begin(in presenter.Input) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.input = in
	v.notify()
	return v.generation
}

// apply mutates the input only while gen is still current.
func (v *Viewer) apply(gen uint64, source string, mutate func(*presenter.Input)) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.generation {
		v.logger.WithFields(logrus.Fields{
			"source":     source,
			"generation": gen,
			"current":    v.generation,
		}).Warn("dropping stale response")
		return false
	}
	mutate(&v.input)
	v.notify()
	return true
}

func (v *Viewer) notify() {
	if len(v.observers) == 0 {
		return
	}
	d := presenter.Compose(v.input, v.opts)
	for _, o := range v.observers {
		o(d)
	}
}

func (v *Viewer) secondaryFailure(uri, source string, err error) {
	v.logger.WithFields(logrus.Fields{
		"uri":    uri,
		"source": source,
		"status": metaapi.StatusCode(err),
	}).WithError(err).Info("secondary fetch failed")
}

const (
	loadFailure   = "Failed to load metadata"
	uploadFailure = "Failed to upload image"
)

func failed(prefix string, err error) func(*presenter.Input) {
	return func(in *presenter.Input) {
		in.Loading = false
		in.Error = prefix + ": " + reason(err)
	}
}

// reason picks the innermost message worth showing to a user.
func reason(err error) string {
	var statusErr *metaapi.HTTPStatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Error()
	case errors.Is(err, metaapi.ErrMalformed):
		return metaapi.ErrMalformed.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	return err.Error()
}
