package gateway

import (
	"net/http"
	"net/url"

	"golang.org/x/net/http/httpproxy"
)

// newProxyFunc builds the transport proxy function. Explicit settings
// override the matching environment variables; the rest still come from
// HTTP_PROXY / HTTPS_PROXY / NO_PROXY.
func newProxyFunc(httpProxy, httpsProxy, noProxy string) func(*http.Request) (*url.URL, error) {
	cfg := httpproxy.FromEnvironment()
	if httpProxy != "" {
		cfg.HTTPProxy = httpProxy
	}
	if httpsProxy != "" {
		cfg.HTTPSProxy = httpsProxy
	}
	if noProxy != "" {
		cfg.NoProxy = noProxy
	}

	proxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}
