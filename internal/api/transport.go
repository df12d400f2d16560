package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/studyhall-ai/studyhall-go/pkg/logger"
	"github.com/studyhall-ai/studyhall-go/pkg/metrics"
)

// loggingTransport wraps a RoundTripper with request logging, correlation
// ids, and request metrics.
type loggingTransport struct {
	base http.RoundTripper
	log  *logger.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	correlationID := req.Header.Get("X-Correlation-ID")
	if correlationID == "" {
		correlationID = uuid.New().String()
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.log.Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Duration("duration", duration),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		return nil, err
	}

	t.log.Debug("request completed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.String("correlation_id", correlationID),
	)
	metrics.APIRequestDuration.WithLabelValues(
		req.Method, req.URL.Path, strconv.Itoa(resp.StatusCode),
	).Observe(duration.Seconds())

	return resp, nil
}
