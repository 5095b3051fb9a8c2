package domoticz

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/muurk/multical/internal/logging"
)

const (
	// DefaultPort is the port a stock Domoticz installation listens on
	DefaultPort = 8080

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries is the default number of retry attempts for failed requests
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the default delay between retry attempts
	DefaultRetryDelay = 1 * time.Second

	// DefaultMaxRetryDelay is the maximum delay for exponential backoff
	DefaultMaxRetryDelay = 30 * time.Second
)

// Client represents an HTTP client for a Domoticz server
type Client struct {
	// BaseURL is the base URL for the server (e.g., "http://127.0.0.1:8080")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts
	RetryDelay time.Duration

	// MaxRetryDelay is the maximum delay for exponential backoff
	MaxRetryDelay time.Duration

	// UseExponentialBackoff enables exponential backoff for retries
	UseExponentialBackoff bool
}

// NewClient creates a new store client
// host: Server host name or IP address (e.g., "127.0.0.1")
// port: Server HTTP port (typically 8080)
func NewClient(host string, port int) *Client {
	return NewClientWithURL(fmt.Sprintf("http://%s:%d", host, port))
}

// NewClientWithURL creates a new client with a full base URL
// baseURL: Full base URL (e.g., "http://127.0.0.1:8080")
func NewClientWithURL(baseURL string) *Client {
	return &Client{
		BaseURL:               baseURL,
		HTTPClient:            &http.Client{Timeout: DefaultTimeout},
		MaxRetries:            DefaultMaxRetries,
		RetryDelay:            DefaultRetryDelay,
		MaxRetryDelay:         DefaultMaxRetryDelay,
		UseExponentialBackoff: true, // Enable by default
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetRetry configures retry behavior
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
}

// Ping performs a health check against the server's getversion command.
// Returns the server version string, or an error if the server is
// unreachable or unhealthy.
func (c *Client) Ping() (string, error) {
	var status statusResponse
	if err := c.getJSON(VersionURL(c.BaseURL), &status); err != nil {
		return "", err
	}
	if status.Status != statusOK {
		return "", NewAPIError(status.Status, "getversion failed")
	}
	return status.Version, nil
}

// Device retrieves a single device by its idx.
// Retries transient failures with exponential backoff.
func (c *Client) Device(idx int) (*Device, error) {
	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(currentDelay)

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		device, err := c.deviceAttempt(idx)
		if err == nil {
			return device, nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return nil, err
		}
	}

	return nil, lastErr
}

// AllDevices retrieves every device the server knows about. Used by
// connection tests to help the user find the idx of their virtual sensors.
func (c *Client) AllDevices() ([]Device, error) {
	var devices devicesResponse
	if err := c.getJSON(DevicesURL(c.BaseURL), &devices); err != nil {
		return nil, err
	}

	if devices.Status != statusOK {
		return nil, NewAPIError(devices.Status, "device list query failed")
	}
	// A server without devices answers OK with no result array.
	return devices.Result, nil
}

// deviceAttempt performs a single attempt to retrieve a device
func (c *Client) deviceAttempt(idx int) (*Device, error) {
	var devices devicesResponse
	if err := c.getJSON(DeviceURL(c.BaseURL, idx), &devices); err != nil {
		return nil, err
	}

	if devices.Status != statusOK {
		return nil, NewAPIError(devices.Status, fmt.Sprintf("device query for idx %d failed", idx))
	}
	if len(devices.Result) == 0 {
		return nil, NewNotFoundError(idx)
	}

	return &devices.Result[0], nil
}

// CurrentValue retrieves the numeric value a device currently holds.
// Domoticz renders values as "number" or "number unit"; only the number is
// returned.
func (c *Client) CurrentValue(idx int) (float64, error) {
	device, err := c.Device(idx)
	if err != nil {
		return 0, err
	}

	value, err := device.NumericData()
	if err != nil {
		return 0, NewParseError("device data is not numeric", err)
	}
	return value, nil
}

// UpdateValue pushes a new value to a virtual sensor. The value is rounded
// to two decimals before sending, matching the precision the meter delivers.
// Retries transient failures with exponential backoff.
func (c *Client) UpdateValue(idx int, value float64) error {
	svalue := FormatValue(value)

	var lastErr error
	currentDelay := c.RetryDelay

	// Retry loop with exponential backoff
	for attempt := 0; attempt <= c.MaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(currentDelay)

			if c.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > c.MaxRetryDelay {
					currentDelay = c.MaxRetryDelay
				}
			}
		}

		err := c.updateAttempt(idx, svalue)
		if err == nil {
			return nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		if !IsRetryable(err) {
			return err
		}
	}

	return lastErr
}

// updateAttempt performs a single attempt to push a value
func (c *Client) updateAttempt(idx int, svalue string) error {
	var status statusResponse
	if err := c.getJSON(UpdateURL(c.BaseURL, idx, svalue), &status); err != nil {
		return err
	}

	if status.Status != statusOK {
		return NewAPIError(status.Status, fmt.Sprintf("update for idx %d failed", idx))
	}
	return nil
}

// getJSON performs one GET request and decodes the JSON body into out
func (c *Client) getJSON(url string, out any) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return NewNetworkError("failed to create GET request", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return NewNetworkError("GET request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogStoreRequest(http.MethodGet, url, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewNetworkError("failed to read response body", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		logging.LogRawBytes("Unparseable store response", body)
		return NewParseError("failed to parse JSON response", err)
	}
	return nil
}

// FormatValue renders a value the way the update endpoint expects: rounded
// to two decimals, no trailing zeros.
func FormatValue(value float64) string {
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
