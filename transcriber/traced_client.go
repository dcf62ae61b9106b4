package transcriber

import (
	"context"
	"crypto/tls"
	"io"
	"net/http"
	"net/http/httptrace"
	"time"
)

// Timing breaks one upload into the phases that dominate dictation latency:
// getting a connection, sending the audio, and waiting for the model.
type Timing struct {
	DNS     time.Duration
	Connect time.Duration
	TLS     time.Duration
	Upload  time.Duration // first header byte written to request fully sent
	Wait    time.Duration // request sent to first response byte
	Total   time.Duration
	Reused  bool
}

// Setup is the time spent before any audio left the machine.
func (t Timing) Setup() time.Duration { return t.DNS + t.Connect + t.TLS }

// timer collects httptrace callbacks for a single request. Callbacks for one
// request run sequentially, so no locking is needed.
type timer struct {
	Timing
	start, dnsAt, dialAt, tlsAt, connAt, sentAt time.Time
}

func (t *timer) trace() *httptrace.ClientTrace {
	return &httptrace.ClientTrace{
		DNSStart:          func(httptrace.DNSStartInfo) { t.dnsAt = time.Now() },
		DNSDone:           func(httptrace.DNSDoneInfo) { t.DNS = time.Since(t.dnsAt) },
		ConnectStart:      func(string, string) { t.dialAt = time.Now() },
		ConnectDone:       func(string, string, error) { t.Connect = time.Since(t.dialAt) },
		TLSHandshakeStart: func() { t.tlsAt = time.Now() },
		TLSHandshakeDone:  func(tls.ConnectionState, error) { t.TLS = time.Since(t.tlsAt) },
		GotConn: func(info httptrace.GotConnInfo) {
			t.connAt = time.Now()
			t.Reused = info.Reused
		},
		WroteRequest: func(httptrace.WroteRequestInfo) {
			t.sentAt = time.Now()
			t.Upload = t.sentAt.Sub(t.connAt)
		},
		GotFirstResponseByte: func() { t.Wait = time.Since(t.sentAt) },
	}
}

// TracedClient sends transcription uploads over a small keep-alive pool and
// reports per-phase timings for each.
type TracedClient struct {
	client *http.Client
}

func NewTracedClient() *TracedClient {
	return &TracedClient{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     2 * time.Minute,
				ForceAttemptHTTP2:   true,
			},
		},
	}
}

// Response is a fully read reply; transcripts are small.
type Response struct {
	StatusCode int
	Body       []byte
	Timing     Timing
}

func (c *TracedClient) Do(req *http.Request) (*Response, error) {
	t := &timer{start: time.Now()}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), t.trace()))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	t.Total = time.Since(t.start)
	return &Response{StatusCode: resp.StatusCode, Body: body, Timing: t.Timing}, nil
}

// Warm sends a HEAD request so the pool holds an open connection when the
// user stops talking. It returns the connection setup time, or 0 on failure.
func (c *TracedClient) Warm(url string) time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	t := &timer{}
	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, t.trace()), http.MethodHead, url, nil)
	if err != nil {
		return 0
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return t.Setup()
}

func (c *TracedClient) CloseIdleConnections() { c.client.CloseIdleConnections() }
