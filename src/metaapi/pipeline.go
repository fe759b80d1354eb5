package metaapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

type (
	// RequestPipeline runs one call to the metadata service: build the
	// request, send it, read the body, decode it.
	RequestPipeline[T any] struct {
		requestPrepare func(ctx context.Context) (*http.Request, error)
		postProcess    func(responseBody []byte) (T, error)
	}
)

// Execute performs the call and delivers exactly one value on either result
// or errs. Both channels must be buffered.
func (r RequestPipeline[T]) Execute(ctx context.Context, client *http.Client, result chan<- T, errs chan<- error) {
	request, err := r.requestPrepare(ctx)
	if err != nil {
		errs <- fmt.Errorf("error during request prepare: %w", err)
		return
	}
	resp, err := client.Do(request)
	if err != nil {
		errs <- fmt.Errorf("error during request sending: %w", err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		errs <- fmt.Errorf("error during body response: %w", err)
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errs <- &HTTPStatusError{
			URL:        request.URL.Redacted(),
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(body),
		}
		return
	}
	res, err := r.postProcess(body)
	if err != nil {
		errs <- err
		return
	}
	result <- res
}

// run executes the pipeline on its own goroutine and waits for it or for ctx.
// A panic inside the pipeline comes back as an error.
func (r RequestPipeline[T]) run(ctx context.Context, client *http.Client, logger *logrus.Logger) (T, error) {
	result := make(chan T, 1)
	errs := make(chan error, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.WithField("stack", string(debug.Stack())).Error("request pipeline panicked")
				errs <- fmt.Errorf("recovered from: %v", recovered)
			}
		}()
		r.Execute(ctx, client, result, errs)
	}()

	var zero T
	select {
	case res := <-result:
		return res, nil
	case err := <-errs:
		return zero, err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
