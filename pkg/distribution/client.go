package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/relief-ops/supply-allocator/pkg/config"
	"github.com/relief-ops/supply-allocator/pkg/core"
)

// returned when the server replies with an error message
var ErrServer = errors.New("server error")

// Client of the distribution server
type Client struct {
	Address string
	Timeout time.Duration
	Backoff wait.Backoff
	Raw     bool // send bare names instead of JSON requests
}

func NewClient(address string) *Client {
	return &Client{
		Address: address,
		Timeout: config.DefaultClientTimeout,
		Backoff: DefaultClientBackoff,
	}
}

// Reply for one sink name
type Reply struct {
	Name     string
	Resource float64
	Err      error
}

// Request asks for the quantity allocated to the named sink
func (c *Client) Request(ctx context.Context, name string) (float64, error) {
	return c.request(ctx, name, c.Raw)
}

// RequestRaw sends the bare sink name instead of a JSON request
func (c *Client) RequestRaw(ctx context.Context, name string) (float64, error) {
	return c.request(ctx, name, true)
}

func (c *Client) request(ctx context.Context, name string, raw bool) (float64, error) {
	req, err := EncodeRequest(name, raw)
	if err != nil {
		return 0, err
	}
	conn, err := c.dial(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(c.Timeout)); err != nil {
		return 0, err
	}
	if _, err := conn.Write(req); err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	data, err := io.ReadAll(io.LimitReader(conn, config.MaxRequestBytes))
	if err != nil {
		return 0, fmt.Errorf("failed to read reply: %w", err)
	}
	return decodeReply(data)
}

// RequestAll requests all names concurrently; replies are in input order
func (c *Client) RequestAll(ctx context.Context, names []string) []Reply {
	replies := make([]Reply, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		i, name := i, name
		wg.Add(1)
		go func() {
			defer wg.Done()
			q, err := c.Request(ctx, name)
			replies[i] = Reply{Name: name, Resource: q, Err: err}
		}()
	}
	wg.Wait()
	return replies
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	var conn net.Conn
	var lastErr error
	d := net.Dialer{Timeout: c.Timeout}
	err := wait.ExponentialBackoffWithContext(ctx, c.Backoff, func(ctx context.Context) (bool, error) {
		var err error
		if conn, err = d.DialContext(ctx, "tcp", c.Address); err != nil {
			lastErr = err
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		if lastErr != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", c.Address, lastErr)
		}
		return nil, err
	}
	return conn, nil
}

func decodeReply(data []byte) (float64, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, fmt.Errorf("malformed reply %q: %w", data, err)
	}
	switch {
	case resp.Error != "" && strings.HasPrefix(resp.Error, config.UnknownSinkMessage):
		return 0, fmt.Errorf("%w: %w: %s", ErrServer, core.ErrUnknownSink, resp.Error)
	case resp.Error != "":
		return 0, fmt.Errorf("%w: %s", ErrServer, resp.Error)
	case resp.Resource == nil:
		return 0, fmt.Errorf("malformed reply %q: no resource", data)
	}
	return *resp.Resource, nil
}
