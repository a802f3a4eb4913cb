// Package prober executes a single HTTP probe against a URL and classifies
// the outcome. It performs no persistence and holds no shared mutable state,
// so probes are trivially parallelizable.
package prober

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pulseboard/pulseboard/internal/model"
)

// maxErrorMessageLen bounds the stored error message.
const maxErrorMessageLen = 500

// Result holds the observable outcome of one probe, matching the fields
// recorded on a Check.
type Result struct {
	Up           bool
	LatencyMS    *int64
	HTTPStatus   *int
	ErrorKind    model.ErrorKind
	ErrorMessage *string
}

// Probe issues a single HTTP GET against rawURL with the given wall-clock
// deadline covering DNS, connect, TLS handshake, request, and body read.
// Redirects are followed; the final response decides the outcome. A status
// in [200, 299] yields Up=true.
func Probe(ctx context.Context, rawURL string, timeout time.Duration, verifyTLS bool) Result {
	start := time.Now()

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		// Pre-flight validation failure: no transport error to classify.
		return failure(start, model.ErrorKindUnknown, "Invalid URL: no hostname")
	}

	client := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: !verifyTLS},
		},
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return failure(start, model.ErrorKindUnknown, err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		return failure(start, classifyError(err), err.Error())
	}
	// The status counts only once the body has been fully read; a mid-body
	// failure leaves HTTPStatus null.
	_, readErr := io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return failure(start, classifyError(readErr), readErr.Error())
	}

	latency := time.Since(start).Milliseconds()
	status := resp.StatusCode

	if status >= 200 && status <= 299 {
		return Result{
			Up:         true,
			LatencyMS:  &latency,
			HTTPStatus: &status,
			ErrorKind:  model.ErrorKindUnknown,
		}
	}

	msg := "HTTP " + strconv.Itoa(status)
	return Result{
		Up:           false,
		LatencyMS:    &latency,
		HTTPStatus:   &status,
		ErrorKind:    model.ErrorKindHTTP,
		ErrorMessage: &msg,
	}
}

func failure(start time.Time, kind model.ErrorKind, msg string) Result {
	latency := time.Since(start).Milliseconds()
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}
	return Result{
		Up:           false,
		LatencyMS:    &latency,
		ErrorKind:    kind,
		ErrorMessage: &msg,
	}
}

// classifyError maps a transport error to an ErrorKind. First match wins:
// tls, then timeout, then dns, then connect, then http, then unknown.
// Unlike HTTP clients that fold name resolution into dial failures, Go
// surfaces *net.DNSError, so dns is a real class here.
func classifyError(err error) model.ErrorKind {
	if err == nil {
		return model.ErrorKindUnknown
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuthority x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var certInvalid x509.CertificateInvalidError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuthority) ||
		errors.As(err, &hostnameErr) || errors.As(err, &certInvalid) ||
		errors.As(err, &recordErr) {
		return model.ErrorKindTLS
	}
	msg := err.Error()
	if strings.Contains(msg, "tls:") || strings.Contains(msg, "handshake failure") {
		return model.ErrorKindTLS
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrorKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.ErrorKindTimeout
	}
	if strings.Contains(msg, "Client.Timeout exceeded") {
		return model.ErrorKindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.ErrorKindDNS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return model.ErrorKindConnect
	}
	if strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "unreachable") {
		return model.ErrorKindConnect
	}

	if strings.Contains(msg, "malformed HTTP") {
		return model.ErrorKindHTTP
	}

	return model.ErrorKindUnknown
}
