// Package httptask is the shared HTTP transfer base every network-facing
// task kind builds on (§4.3): one POST/GET against the MMSC, chunked
// through a bearer-bound client, classifying the result into "done",
// "retry" or "give up" the way the C original's Soup-based task did.
package httptask

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/retry.v1"

	"github.com/nemomobile/mms-engine-sub000/bearer"
	"github.com/nemomobile/mms-engine-sub000/mmserr"
)

// DefaultChunkSize mirrors MMS_HTTP_MAX_CHUNK.
const DefaultChunkSize = 4096

// ContentType is the wire content-type every MMS PDU is POSTed as.
const ContentType = "application/vnd.wap.mms-message"

// ClientOptions configures the HTTP client used for one transfer.
type ClientOptions struct {
	Proxy     string
	UserAgent string
	UAProf    string
	ChunkSize int
	Timeout   time.Duration
}

func (o ClientOptions) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return DefaultChunkSize
}

// NewClient builds an http.Client bound to a bearer connection's proxy,
// tagging every request with the SIM's user-agent and UAProf header.
//
// The C original also binds the socket to the bearer's network interface
// (SIOCGIFADDR + SOUP_SESSION_LOCAL_ADDRESS); net/http has no portable
// equivalent short of a raw syscall.Control dialer, and nothing else in
// the retrieval pack demonstrates interface-bound HTTP clients, so this
// relies on the bearer manager having already made conn's interface the
// default route for the process (true of connman-managed bearers).
func NewClient(opts ClientOptions) (*http.Client, error) {
	transport := &http.Transport{}
	if opts.Proxy != "" {
		proxyURL, err := url.Parse(normalizeProxy(opts.Proxy))
		if err != nil {
			return nil, mmserr.New(mmserr.Args, "httptask.NewClient", fmt.Errorf("parse proxy %q: %w", opts.Proxy, err))
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	return &http.Client{
		Transport: &loggedTransport{base: transport, userAgent: opts.UserAgent, uaProf: opts.UAProf},
		Timeout:   opts.Timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			// SOUP_MESSAGE_NO_REDIRECT: the MMSC URL is authoritative.
			return http.ErrUseLastResponse
		},
	}, nil
}

func normalizeProxy(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "http://" + raw
}

type loggedTransport struct {
	base      http.RoundTripper
	userAgent string
	uaProf    string
}

func (t *loggedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if t.uaProf != "" {
		req.Header.Set("x-wap-profile", t.uaProf)
	}
	return t.base.RoundTrip(req)
}

// Outcome classifies a completed transfer the way mms_task_http_finished
// classifies a SoupStatus: StatusCode 0 means a transport-level failure
// (no response at all), otherwise it's the HTTP status actually received.
type Outcome struct {
	StatusCode int
	Retryable  bool
}

// Successful reports whether the transfer completed the transaction.
func (o Outcome) Successful() bool { return o.StatusCode >= 200 && o.StatusCode < 300 }

// Post uploads body against uri (conn.MMSCURL if uri == ""), or performs
// a GET if body is nil, streaming the response through chunkSize-sized
// reads the way the C original streamed "got-chunk" signals to disk.
func Post(ctx context.Context, conn *bearer.Connection, opts ClientOptions, uri string, body []byte) ([]byte, Outcome, error) {
	client, err := NewClient(opts)
	if err != nil {
		return nil, Outcome{}, err
	}

	target := uri
	if target == "" {
		target = conn.MMSCURL
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", ContentType)
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}
	if err != nil {
		return nil, Outcome{}, mmserr.New(mmserr.Args, "httptask.Post", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, Outcome{Retryable: true}, mmserr.New(mmserr.IO, "httptask.Post", err)
	}
	defer resp.Body.Close()

	data, err := readChunked(resp.Body, opts.chunkSize())
	if err != nil {
		return nil, Outcome{Retryable: true}, mmserr.New(mmserr.IO, "httptask.Post", err)
	}

	outcome := Outcome{StatusCode: resp.StatusCode}
	if !outcome.Successful() {
		outcome.Retryable = isTransportError(resp.StatusCode)
	}
	return data, outcome, nil
}

func readChunked(r io.Reader, chunkSize int) ([]byte, error) {
	var buf bytes.Buffer
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// isTransportError mirrors SOUP_STATUS_IS_TRANSPORT_ERROR: server trouble
// that's worth retrying, as opposed to a permanent 4xx rejection.
func isTransportError(status int) bool {
	return (status >= 100 && status < 200) || status >= 500
}

// RetryStrategy returns a capped exponential backoff: five attempts,
// starting at 5s and doubling. No task kind calls it; task.Sleep
// schedules retries with task.DefaultRetryStrategy.
func RetryStrategy() retry.Strategy {
	return retry.LimitCount(5, retry.Exponential{
		Initial: 5 * time.Second,
		Factor:  2,
	})
}

// SaveToFile writes data under dir/name (creating dir if needed),
// mirroring the C original's practice of keeping each PDU as an on-disk
// file (Decode.ind, Acknowledge.ind, ...) between task runs.
func SaveToFile(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("httptask: mkdir %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("httptask: write %s: %w", path, err)
	}
	return path, nil
}
