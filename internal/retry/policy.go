package retry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/xerrors"
)

// Policy decides which responses and transport errors are worth another
// attempt. Condition names follow Envoy's x-envoy-retry-on header.
type Policy struct {
	serverError    bool
	gatewayError   bool
	connectFailure bool
	reset          bool
	retriable4xx   bool
	statusCodes    map[int]struct{}
}

func DefaultPolicy() *Policy {
	return &Policy{
		gatewayError:   true,
		connectFailure: true,
		reset:          true,
		retriable4xx:   true,
		statusCodes:    map[int]struct{}{},
	}
}

// ParsePolicy reads a comma separated list such as "gateway-error,429".
func ParsePolicy(s string) (*Policy, error) {
	p := &Policy{statusCodes: map[int]struct{}{}}
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		switch field {
		case "":
		case "5xx":
			p.serverError = true
		case "gateway-error":
			p.gatewayError = true
		case "connect-failure":
			p.connectFailure = true
		case "reset":
			p.reset = true
		case "retriable-4xx":
			p.retriable4xx = true
		default:
			code, err := strconv.Atoi(field)
			if err != nil || code < 100 || code > 599 {
				return nil, xerrors.Errorf("invalid retry condition: %q", field)
			}
			p.statusCodes[code] = struct{}{}
		}
	}
	return p, nil
}

func (p *Policy) RetryResponse(response *http.Response) bool {
	code := response.StatusCode
	switch {
	case p.serverError && code >= 500 && code < 600:
		return true
	case p.gatewayError && code >= 502 && code <= 504:
		return true
	case p.retriable4xx && code == http.StatusConflict:
		return true
	}
	_, ok := p.statusCodes[code]
	return ok
}

// RetryError reports whether a transport error is retried. Errors caused by
// the request context are never retried.
func (p *Policy) RetryError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	// 5xx implies connect-failure and reset in Envoy.
	if (p.connectFailure || p.serverError) && isConnectFailure(err) {
		return true
	}
	if (p.reset || p.serverError) && isReset(err) {
		return true
	}
	return false
}

func isConnectFailure(err error) bool {
	type temporary interface{ Temporary() bool }
	var terr temporary
	if errors.As(err, &terr) && terr.Temporary() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func isReset(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET)
}
