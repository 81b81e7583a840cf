package fetch

import "errors"

var (
	// ErrInvalidURL is returned when a target URL is empty, relative,
	// or uses a scheme other than http or https.
	ErrInvalidURL = errors.New("invalid target url: must be absolute http or https")

	// ErrMissingEndpoint is returned when a gateway client is constructed
	// without an endpoint URL.
	ErrMissingEndpoint = errors.New("gateway endpoint is not set")

	// ErrGatewayStatus is returned when the render gateway answers with a
	// non-2xx status code. The wrapping error carries the status.
	ErrGatewayStatus = errors.New("gateway returned non-success status")

	// ErrEmptyResponse is returned when the gateway answers 2xx but the
	// body cannot be decoded into a fetch result.
	ErrEmptyResponse = errors.New("gateway returned an undecodable response")

	// ErrProbeFailed is returned when a content-type probe gets a
	// non-success status from the target.
	ErrProbeFailed = errors.New("content-type probe failed")

	// ErrBrowserClosed is returned when a fetch is attempted on a Browser
	// whose Close method has already been called.
	ErrBrowserClosed = errors.New("browser fetcher is closed")
)
