// Package convert calls the external PDF-to-spreadsheet conversion API.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/kestrelfin/kestrel/internal/common"
	"github.com/kestrelfin/kestrel/internal/service"
)

// DefaultTimeout bounds one conversion call, including retries of the
// underlying request. Past it the call fails with ErrConversionAborted.
const DefaultTimeout = 2 * time.Minute

// maxResponseSize caps the converted payload we are willing to read.
const maxResponseSize = 32 << 20

// Client is a thin wrapper over the hosted conversion endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a conversion client. An empty timeout applies
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{},
		baseURL:    baseURL,
		timeout:    timeout,
	}
}

// ConvertPDF uploads a PDF statement and returns the converted CSV bytes.
// Transient upstream failures are retried with backoff; the whole call is
// bounded by the client timeout.
func (c *Client) ConvertPDF(ctx context.Context, fileName string, pdf []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: conversion endpoint not configured", common.ErrMissingConfig)
	}
	if len(pdf) == 0 {
		return nil, fmt.Errorf("%w: empty file", common.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var converted []byte
	err := common.WithRetry(ctx, func() error {
		data, reqErr := c.doConvert(ctx, fileName, pdf)
		if reqErr != nil {
			return reqErr
		}
		converted = data
		return nil
	}, service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
	})

	if errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: timed out after %s", common.ErrConversionAborted, c.timeout)
	}
	if err != nil {
		return nil, err
	}
	return converted, nil
}

func (c *Client) doConvert(ctx context.Context, fileName string, pdf []byte) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}
	if _, err := part.Write(pdf); err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/convert", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.RetryableError{Err: err, Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if readErr != nil {
			return nil, fmt.Errorf("failed to read converted payload: %w", readErr)
		}
		return data, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("%w: upstream returned %s", common.ErrConversionFailed, resp.Status),
			Retryable: true,
		}
	default:
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("%w: upstream returned %s", common.ErrConversionFailed, resp.Status),
			Retryable: false,
		}
	}
}
