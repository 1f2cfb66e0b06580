// Package clients talks to the third-party HTTP services the attendance
// backend depends on: the WeChat code exchange and the AMap geocoder.
package clients

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// getJSON performs a GET with query params and decodes the JSON body into v.
// The effective timeout is the smaller of the client timeout and the context deadline.
func getJSON(ctx context.Context, endpoint string, params url.Values, timeout time.Duration, v any) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, hasDeadline := ctx.Deadline()
	timeout, err := clampTimeout(timeout, deadline, hasDeadline, time.Now())
	if err != nil {
		return 0, err
	}

	agent := fiber.Get(endpoint)
	agent.QueryString(params.Encode())
	agent.Timeout(timeout)

	code, _, errs := agent.Struct(v)
	if len(errs) > 0 {
		return code, fmt.Errorf("get %s: %w", endpoint, errors.Join(errs...))
	}
	return code, nil
}

// clampTimeout shortens timeout to the time left before deadline. The Agent
// treats a non-positive timeout as unbounded, so an elapsed deadline is an error.
func clampTimeout(timeout time.Duration, deadline time.Time, hasDeadline bool, now time.Time) (time.Duration, error) {
	if !hasDeadline {
		return timeout, nil
	}
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return 0, context.DeadlineExceeded
	}
	if remaining < timeout {
		return remaining, nil
	}
	return timeout, nil
}
