package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// LoggingTransport wraps an http.RoundTripper and dumps each catalog
// exchange to a dedicated log file. The apikey query parameter is redacted.
type LoggingTransport struct {
	Transport http.RoundTripper
	logFile   *os.File
	logger    *log.Logger
	mu        sync.Mutex
}

// NewLoggingTransport opens logFilePath for appending and wraps transport.
func NewLoggingTransport(transport http.RoundTripper, logFilePath string) (*LoggingTransport, error) {
	f, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open API log file %s: %w", logFilePath, err)
	}
	if transport == nil {
		transport = http.DefaultTransport
	}

	logger := log.New()
	logger.SetOutput(f)
	logger.SetLevel(log.DebugLevel)
	logger.SetFormatter(&log.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		DisableQuote:     true,
		QuoteEmptyFields: true,
	})

	return &LoggingTransport{Transport: transport, logFile: f, logger: logger}, nil
}

// RoundTrip executes a single HTTP transaction, logging details.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	target := RedactURL(req.URL)

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	t.mu.Lock()
	defer t.mu.Unlock()

	entry := t.logger.WithFields(log.Fields{
		"method":   req.Method,
		"url":      target,
		"duration": duration.Round(time.Millisecond),
	})
	if err != nil {
		entry.WithError(err).Error("Request failed")
		return resp, err
	}
	entry = entry.WithField("status", resp.StatusCode)

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		entry.Debug("Response received (body not logged)")
		return resp, nil
	}

	bodyBytes, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	if readErr != nil {
		entry.WithError(readErr).Warn("Failed to read response body for logging")
		return resp, nil
	}

	headers, dumpErr := httputil.DumpResponse(resp, false)
	if dumpErr != nil {
		headers = []byte(resp.Status)
	}
	entry.Debugf("\n%s\n%s", strings.TrimSpace(string(headers)), string(bodyBytes))
	return resp, nil
}

// Close closes the underlying log file.
func (t *LoggingTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.logFile.Close()
}

// RedactURL returns u as a string with any apikey value masked.
func RedactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if q.Get("apikey") == "" {
		return u.String()
	}
	q.Set("apikey", "REDACTED")
	clone := *u
	clone.RawQuery = q.Encode()
	return clone.String()
}
