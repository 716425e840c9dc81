package dbi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	healthEndpoint     = "/"
	predictURLEndpoint = "/predict/url"
	uploadEndpoint     = "/predict/upload"

	// uploadField is the multipart field the prediction service reads the image from.
	uploadField = "file"

	requestIDHeader = "X-Request-Id"
)

// Client talks to the prediction service. Responses are handed back exactly as
// decoded: neither the HTTP status nor the envelope's success flag is
// interpreted here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	userAgent  string
	strict     bool
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithStrictEnvelope makes the client reject bodies that are valid JSON but
// miss one of the envelope fields. An envelope with success=false is still
// returned as data.
func WithStrictEnvelope() ClientOption {
	return func(c *Client) {
		c.strict = true
	}
}

func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("base url must be absolute, got %q", baseURL)
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) CheckHealth(ctx context.Context) (*CommonResponse[string], error) {
	return doRequest[string](ctx, c, http.MethodGet, healthEndpoint, nil, "")
}

// PredictFromURL asks the service to classify the image at imageURL. The URL is
// sent as given; callers are expected to run ValidateImageURL first.
func (c *Client) PredictFromURL(ctx context.Context, imageURL string) (*CommonResponse[PredictionResponse], error) {
	jsonData, err := json.Marshal(PredictURLRequest{URL: imageURL})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	return doRequest[PredictionResponse](ctx, c, http.MethodPost, predictURLEndpoint, bytes.NewReader(jsonData), "application/json")
}

func (c *Client) PredictFromFile(ctx context.Context, file ImageFile) (*CommonResponse[PredictionResponse], error) {
	body, contentType, err := encodeUpload(file)
	if err != nil {
		return nil, err
	}

	return doRequest[PredictionResponse](ctx, c, http.MethodPost, uploadEndpoint, body, contentType)
}

func encodeUpload(file ImageFile) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, uploadField, escapeQuotes(file.Name)))
	header.Set("Content-Type", mimetype.Detect(file.Content).String())

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("error creating form file: %w", err)
	}

	if _, err := part.Write(file.Content); err != nil {
		return nil, "", fmt.Errorf("error writing form file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("error closing multipart writer: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func doRequest[T any](ctx context.Context, c *Client, method, endpoint string, body io.Reader, contentType string) (*CommonResponse[T], error) {
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("sending request",
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("url", req.URL.String()))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	c.logger.Debug("received response",
		zap.String("request_id", requestID),
		zap.Int("http_status", resp.StatusCode),
		zap.Int("bytes", len(data)))

	if c.strict {
		if err := validateEnvelope(data); err != nil {
			return nil, err
		}
	}

	var envelope CommonResponse[T]
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}

	return &envelope, nil
}
