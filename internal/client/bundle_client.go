package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/classdesk/diary-api/pkg/archive"
	"github.com/classdesk/diary-api/pkg/config"
	appErrors "github.com/classdesk/diary-api/pkg/errors"
)

// BundleClient is the desktop-side downloader: it logs in against the
// server's process endpoint and unpacks the returned archive locally.
type BundleClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewBundleClient constructs a bundle client from configuration.
func NewBundleClient(cfg config.ClientConfig, logger *zap.Logger) *BundleClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BundleClient{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// Login posts credentials to the process endpoint and unpacks the returned
// zip into destDir. The whole body is read before anything is written, so a
// transport failure never leaves a partially applied bundle.
func (c *BundleClient) Login(ctx context.Context, login, password, destDir string) error {
	body, err := json.Marshal(map[string][]string{"message": {login, password}})
	if err != nil {
		return fmt.Errorf("encode login payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/process", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("download bundle: %w", err)
	}

	if err := archive.Extract(data, destDir); err != nil {
		return err
	}

	c.logger.Info("bundle applied",
		zap.String("login", login),
		zap.String("dest", destDir),
		zap.Int("bytes", len(data)))
	return nil
}

func (c *BundleClient) decodeError(resp *http.Response) error {
	var envelope struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil && envelope.Error != nil {
		return appErrors.New(envelope.Error.Code, resp.StatusCode, envelope.Error.Message)
	}
	return appErrors.New(appErrors.ErrInternal.Code, resp.StatusCode, fmt.Sprintf("server returned status %d", resp.StatusCode))
}
