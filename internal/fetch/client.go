package fetch

import (
	"hash/fnv"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"localch-scraper/common"
)

const defaultConnectTimeout = 10 * time.Second

// ClientOptions configures the shared HTTP client.
type ClientOptions struct {
	Timeout   time.Duration
	ProxyURL  string
	ProxyPool string // comma-separated; one entry is picked per hostname
	Hostname  string
}

// NewHTTPClient returns the client shared by every fetch in a run. Connect and
// response-header timeouts are bounded by the total request timeout so a hung
// request releases its worker.
func NewHTTPClient(opts ClientOptions, log zerolog.Logger) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	connect := defaultConnectTimeout
	if connect > timeout {
		connect = timeout
	}
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: connect}).DialContext,
		ResponseHeaderTimeout: timeout,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
	}

	proxyURL := opts.ProxyURL
	if proxyURL == "" && opts.ProxyPool != "" {
		proxyURL = SelectProxyFromPool(opts.ProxyPool, opts.Hostname)
		if proxyURL != "" {
			log.Debug().Str("hostname", opts.Hostname).Str("proxy", proxyURL).Msg("proxy selected from pool")
		}
	}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			log.Warn().Err(err).Msg("invalid proxy URL, connecting directly")
		} else {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// SelectProxyFromPool returns one URL from pool (comma-separated) by hashing
// hostname, so the same host always egresses through the same proxy. An empty
// pool yields "".
func SelectProxyFromPool(pool, hostname string) string {
	valid := common.SplitList(pool)
	if len(valid) == 0 {
		return ""
	}
	if hostname == "" {
		hostname = "0"
	}
	h := fnv.New32a()
	h.Write([]byte(hostname))
	return valid[h.Sum32()%uint32(len(valid))]
}
