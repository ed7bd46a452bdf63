package harness

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const serviceQueryInterval = time.Millisecond * 100

// AwaitService polls the service's base URL until it answers with any HTTP response, so that a run
// started alongside the service does not fail its first fixture with a connection error.
func (c *Client) AwaitService(ctx context.Context, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to service at %s", c.baseURL)

	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
		if err != nil {
			fmt.Fprintln(output)
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			fmt.Fprintln(output)
			fmt.Fprintf(output, "Service responded with HTTP %d\n", resp.StatusCode)
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return ctx.Err()
		case <-time.After(serviceQueryInterval):
		}
	}
}
