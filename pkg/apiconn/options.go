package apiconn

import (
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/samvad-hq/apiconnection-toolkit/pkg/httpclient"
)

// DefaultTimeout bounds each call made through the default resty transport.
const DefaultTimeout = 100 * time.Second

type options struct {
	transport httpclient.Client
	log       Logger
	timeout   time.Duration
}

// Option customizes a Connection at construction time.
type Option func(*options)

// WithTransport replaces the default resty transport.
func WithTransport(t httpclient.Client) Option {
	return func(o *options) { o.transport = t }
}

// WithRestyClient sends calls through an already configured resty client,
// e.g. one with custom TLS settings or a proxy.
func WithRestyClient(c *resty.Client) Option {
	return func(o *options) { o.transport = httpclient.WrapResty(c) }
}

// WithLogger attaches a logger; requests are logged at debug level.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// WithTimeout sets the per-call timeout of the default transport.
// It has no effect when WithTransport is also given.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

func buildOptions(opts []Option) options {
	o := options{timeout: DefaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.transport == nil {
		o.transport = httpclient.NewRestyClient(o.timeout)
	}
	o.log = ensureLogger(o.log)
	return o
}
