package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/NDP4/CompanyLock-Manager/internal/core/domain"
	"github.com/NDP4/CompanyLock-Manager/internal/infra/buildinfo"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/logger"
	"github.com/NDP4/CompanyLock-Manager/internal/telemetry/metric"
)

// User-visible notices raised by the inbound stage.
const (
	NoticeSessionExpired = "session expired, please log in again"
	NoticeServerError    = "server error, please try again"
)

// RequestIDHeader carries the per-request ULID.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error body is read for the reason.
const maxErrorBody = 64 << 10

// Session is the pipeline's view of the session store.
type Session interface {
	AuthorizationHeader() http.Header
	Logout()
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Client performs the network stage. Defaults to a client with Timeout.
	Client *http.Client

	// Timeout applies when Client is nil. Default: 10s.
	Timeout time.Duration

	// Session supplies the authorization header and is logged out on 401.
	Session Session

	// Notifier receives session-expired and server-error notices.
	Notifier domain.Notifier

	// Limiter, when set, paces outbound requests.
	Limiter *rate.Limiter

	// Metrics, when set, records request counters and latency.
	Metrics *metric.Registry

	// UserAgent defaults to companylock-cli/<version>.
	UserAgent string

	Logger logger.Logger
}

// Pipeline wraps every request to the remote service.
//
// The outbound stage runs synchronously before the network; the inbound
// stage runs exactly once per response before the caller sees it. Callers
// receive either a 2xx response or a *domain.DomainError.
type Pipeline struct {
	client    *http.Client
	session   Session
	notifier  domain.Notifier
	limiter   *rate.Limiter
	metrics   *metric.Registry
	userAgent string
	log       logger.Logger
}

// NewPipeline creates a Pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = domain.NopNotifier
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = buildinfo.UserAgent("companylock-cli")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return &Pipeline{
		client:    client,
		session:   cfg.Session,
		notifier:  notifier,
		limiter:   cfg.Limiter,
		metrics:   cfg.Metrics,
		userAgent: ua,
		log:       log.With("component", "pipeline"),
	}
}

// Do runs req through the outbound, network and inbound stages.
func (p *Pipeline) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	p.outbound(req)

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	route := routeLabel(req.URL.Path)
	start := time.Now()
	resp, err := p.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		p.observe(req.Method, route, 0, elapsed)
		p.log.Debug("request failed", "method", req.Method, "route", route, "error", err)
		return nil, fmt.Errorf("%s %s: %w", req.Method, route, err)
	}

	p.observe(req.Method, route, resp.StatusCode, elapsed)
	p.log.Debug("request completed",
		"method", req.Method,
		"route", route,
		"status", resp.StatusCode,
		"request_id", req.Header.Get(RequestIDHeader),
		"elapsed", elapsed)

	return p.inbound(req, resp)
}

// outbound merges the session header and fills the default headers.
// A caller-set Content-Type is never overwritten.
func (p *Pipeline) outbound(req *http.Request) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if p.session != nil {
		for k, vs := range p.session.AuthorizationHeader() {
			req.Header[k] = append([]string(nil), vs...)
		}
	}
	if req.Body != nil && req.Body != http.NoBody && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", p.userAgent)
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, ulid.Make().String())
	}
}

// inbound maps failures to the error taxonomy. Every 401 forces a logout
// and raises the session-expired notice, whether or not a credential was
// sent; 5xx raises a generic notice; other failures have no side effect.
func (p *Pipeline) inbound(req *http.Request, resp *http.Response) (*http.Response, error) {
	if resp.StatusCode < 400 {
		return resp, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	reason := ExtractReason(body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if p.session != nil {
			p.session.Logout()
		}
		if p.metrics != nil {
			p.metrics.AuthFailures.Inc()
		}
		p.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: NoticeSessionExpired})
		p.log.Info("authentication rejected, session cleared", "route", routeLabel(req.URL.Path))
	case resp.StatusCode >= 500:
		p.notifier.Notify(domain.Notice{Level: domain.NoticeError, Message: NoticeServerError})
		p.log.Warn("server error", "route", routeLabel(req.URL.Path), "status", resp.StatusCode)
	}

	return nil, StatusError(resp.StatusCode, reason)
}

func (p *Pipeline) observe(method, route string, status int, elapsed time.Duration) {
	if p.metrics == nil {
		return
	}
	p.metrics.RequestsTotal.WithLabelValues(method, route, metric.StatusClass(status)).Inc()
	p.metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// StatusError maps an HTTP failure status to the error taxonomy.
func StatusError(status int, reason string) error {
	var base *domain.DomainError
	switch {
	case status == http.StatusUnauthorized:
		base = domain.ErrAuthentication
	case status == http.StatusForbidden:
		base = domain.ErrAuthorization
	case status == http.StatusNotFound:
		base = domain.ErrNotFound
	case status >= 500:
		base = domain.ErrServer
	default:
		base = domain.ErrRejected
	}
	e := base.WithStatus(status)
	if reason != "" {
		e = e.WithDetails(reason)
	}
	return e
}

// ExtractReason returns the remote reason from an error body: "detail"
// (string or list of {msg}) or "message". Empty when none is present.
func ExtractReason(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ""
	}

	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	if len(envelope.Detail) > 0 {
		var s string
		if err := json.Unmarshal(envelope.Detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(envelope.Detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return envelope.Message
}

var numericSegment = regexp.MustCompile(`/\d+(/|$)`)

// routeLabel collapses numeric path segments for metric labels.
func routeLabel(path string) string {
	return numericSegment.ReplaceAllString(path, "/:id$1")
}
