package retry

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/xerrors"
)

// Transport retries round trips rejected by Policy, sleeping between
// attempts as Backoff says. Requests with a body are retried only when
// GetBody is set.
type Transport struct {
	Base    http.RoundTripper
	Backoff Backoff
	Policy  *Policy
}

func (t *Transport) RoundTrip(request *http.Request) (*http.Response, error) {
	ctx := request.Context()

	for attempt := uint(0); ; attempt++ {
		req, err := rewind(request, attempt)
		if err != nil {
			return nil, err
		}

		response, err := t.base().RoundTrip(req)
		if !t.retryable(request, response, err) {
			return response, err
		}
		delay, ok := t.backoff().Delay(attempt)
		if !ok {
			return response, err
		}
		if response != nil {
			_, _ = io.Copy(io.Discard, response.Body)
			response.Body.Close()
		}

		slog.DebugContext(ctx, "retrying request",
			slog.String("method", request.Method),
			slog.String("url", request.URL.String()),
			slog.Uint64("attempt", uint64(attempt+1)),
			slog.Duration("delay", delay),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (t *Transport) retryable(request *http.Request, response *http.Response, err error) bool {
	if t.Policy == nil || !replayable(request) {
		return false
	}
	if err != nil {
		return t.Policy.RetryError(err)
	}
	return t.Policy.RetryResponse(response)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) backoff() Backoff {
	if t.Backoff != nil {
		return t.Backoff
	}
	return Never()
}

func replayable(request *http.Request) bool {
	return request.Body == nil || request.Body == http.NoBody || request.GetBody != nil
}

func rewind(request *http.Request, attempt uint) (*http.Request, error) {
	if attempt == 0 || request.Body == nil || request.Body == http.NoBody {
		return request, nil
	}

	body, err := request.GetBody()
	if err != nil {
		return nil, xerrors.Errorf("failed to rewind request body: %w", err)
	}
	clone := request.Clone(request.Context())
	clone.Body = body
	return clone, nil
}
