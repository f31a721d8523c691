package faceapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var ErrUpstream = errors.New("face embedding service unavailable")

// Client talks to the external recognizer that turns stored faces into embeddings.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "application/json")
	return &Client{http: http, logger: logger}
}

// Embeddings returns the upstream JSON document verbatim.
func (c *Client) Embeddings(ctx context.Context, companyID int64) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("companyId", strconv.FormatInt(companyID, 10)).
		Get("/api/face/embeddings")
	if err != nil {
		c.logger.Error("embedding service call failed", zap.Int64("company_id", companyID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.IsError() {
		c.logger.Error("embedding service returned error",
			zap.Int64("company_id", companyID),
			zap.Int("status_code", resp.StatusCode()),
		)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode())
	}
	body := resp.Body()
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid json body", ErrUpstream)
	}
	return json.RawMessage(body), nil
}
