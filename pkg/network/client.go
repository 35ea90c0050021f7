// Package network builds the HTTP clients and azuretls sessions the feed
// fetcher uses, with optional proxy support.
package network

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/Noooste/azuretls-client"
)

// ProxyProvider supplies an optional proxy URL for outbound requests.
// Defined here, rather than accepted as a concrete type, so the fetcher's
// configuration source can change without this package depending on it.
type ProxyProvider interface {
	GetProxyURL(ctx context.Context) string
}

// NoopProxyProvider never returns a proxy, for use when no proxy is
// configured.
type NoopProxyProvider struct{}

func (NoopProxyProvider) GetProxyURL(ctx context.Context) string { return "" }

// ClientFactory builds *http.Client and azuretls.Session values configured
// with whatever proxy the ProxyProvider currently returns.
type ClientFactory struct {
	proxyProvider ProxyProvider

	testHTTPClient *http.Client // test-only override
}

// NewClientFactory returns a factory that consults provider for proxy
// configuration on every call.
func NewClientFactory(provider ProxyProvider) *ClientFactory {
	if provider == nil {
		provider = NoopProxyProvider{}
	}
	return &ClientFactory{proxyProvider: provider}
}

// NewClientFactoryForTest returns a factory whose NewHTTPClient always
// returns client, ignoring proxy configuration.
func NewClientFactoryForTest(client *http.Client) *ClientFactory {
	return &ClientFactory{proxyProvider: NoopProxyProvider{}, testHTTPClient: client}
}

// NewHTTPClient returns an *http.Client with the given per-request timeout
// and any configured proxy applied.
func (f *ClientFactory) NewHTTPClient(ctx context.Context, timeout time.Duration) *http.Client {
	if f.testHTTPClient != nil {
		return f.testHTTPClient
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: f.NewHTTPTransport(ctx),
	}
}

// NewHTTPTransport returns an *http.Transport configured with any proxy the
// provider currently returns. An invalid or unsupported proxy URL
// (including socks5, which net/http.ProxyURL does not support) is ignored
// rather than causing requests to fail outright.
func (f *ClientFactory) NewHTTPTransport(ctx context.Context) *http.Transport {
	transport := &http.Transport{}

	proxyURL := f.proxyProvider.GetProxyURL(ctx)
	if proxyURL == "" {
		return transport
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return transport
	}
	transport.Proxy = http.ProxyURL(parsed)
	return transport
}

// NewAzureSession returns a browser-impersonating azuretls session with the
// given timeout and any configured proxy. The feed fetcher does not use it:
// every fetch goes through the *http.Client from NewHTTPClient.
func (f *ClientFactory) NewAzureSession(ctx context.Context, timeout time.Duration) *azuretls.Session {
	session := azuretls.NewSession()
	session.Browser = azuretls.Chrome
	session.SetTimeout(timeout)

	if proxyURL := f.proxyProvider.GetProxyURL(ctx); proxyURL != "" {
		_ = session.SetProxy(proxyURL)
	}
	return session
}

// GetProxyURL returns the proxy currently configured, if any.
func (f *ClientFactory) GetProxyURL(ctx context.Context) string {
	return f.proxyProvider.GetProxyURL(ctx)
}

// TestProxy issues a GET against testURL through the currently configured
// proxy, returning any error as a liveness check.
func (f *ClientFactory) TestProxy(ctx context.Context, testURL string) error {
	return f.TestProxyWithConfig(ctx, f.GetProxyURL(ctx), testURL)
}

// TestProxyWithConfig issues a GET against testURL through proxyURL without
// persisting that proxy to the factory, useful for validating a candidate
// configuration before committing to it.
func (f *ClientFactory) TestProxyWithConfig(ctx context.Context, proxyURL, testURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	if proxyURL != "" {
		if parsed, err := url.Parse(proxyURL); err == nil {
			client.Transport = &http.Transport{Proxy: http.ProxyURL(parsed)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, testURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return nil
}

// ExtractHost returns the host:port portion of rawURL, or "" if rawURL does
// not parse or carries no host.
func ExtractHost(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(parsed.Host); err == nil {
		if port := parsed.Port(); port != "" {
			return net.JoinHostPort(host, port)
		}
	}
	return parsed.Host
}
