// Package farm implements the HTTP client for the render-farm web
// service: job submission, job queries and scheduling-class listings.
package farm

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"yqhp/farm-submit/pkg/logger"
	"yqhp/farm-submit/pkg/types"
)

const (
	// DefaultTimeout bounds every farm request.
	DefaultTimeout = 10 * time.Second

	jobsPath = "/api/jobs"
)

// Config holds the connection settings for one farm web service.
type Config struct {
	// URL is the base address of the farm web service, without a
	// trailing slash.
	URL string

	// Username and Password enable HTTP basic auth when both are
	// non-empty.
	Username string
	Password string

	// SkipTLSVerify disables certificate verification for farms behind
	// self-signed certificates.
	SkipTLSVerify bool

	// RequestTimeout overrides DefaultTimeout when positive.
	RequestTimeout time.Duration
}

// Timeout returns the effective request timeout.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return DefaultTimeout
}

// Client talks to one farm web service.
type Client struct {
	config *Config
	client *fasthttp.Client
}

// NewClient creates a farm client from the given config.
func NewClient(config *Config) *Client {
	return &Client{
		config: config,
		client: &fasthttp.Client{
			MaxConnsPerHost:     64,
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         config.Timeout(),
			WriteTimeout:        config.Timeout(),
			TLSConfig: &tls.Config{
				InsecureSkipVerify: config.SkipTLSVerify,
			},
		},
	}
}

// URL returns the base address this client points at.
func (c *Client) URL() string {
	return strings.TrimRight(c.config.URL, "/")
}

// SubmitJob posts one job payload and returns the farm-assigned job id.
func (c *Client) SubmitJob(ctx context.Context, payload *types.SubmissionPayload) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", NewSubmissionError("encode submission payload", err)
	}

	respBody, err := c.do(ctx, fasthttp.MethodPost, c.URL()+jobsPath, body)
	if err != nil {
		return "", err
	}

	jobID, err := ExtractJobID(respBody)
	if err != nil {
		return "", err
	}
	logger.Debug("job submitted: id=%s name=%v", jobID, payload.JobInfo["Name"])
	return jobID, nil
}

// GetJobStatus queries one job by id. A nil status with a nil error
// means the farm does not know the job.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (*types.JobStatus, error) {
	reqURL := fmt.Sprintf("%s%s?JobID=%s", c.URL(), jobsPath, url.QueryEscape(jobID))
	respBody, err := c.do(ctx, fasthttp.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	var jobs []types.JobStatus
	if err := json.Unmarshal(respBody, &jobs); err != nil {
		return nil, NewProtocolError("decode job status response", string(respBody), err)
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return &jobs[0], nil
}

// ListPools returns the farm's pool names, the "none" sentinel first.
func (c *Client) ListPools(ctx context.Context) ([]string, error) {
	return c.listNames(ctx, "/api/pools")
}

// ListGroups returns the farm's group names, the "none" sentinel first.
func (c *Client) ListGroups(ctx context.Context) ([]string, error) {
	return c.listNames(ctx, "/api/groups")
}

// ListLimitGroups returns the farm's limit group names.
func (c *Client) ListLimitGroups(ctx context.Context) ([]string, error) {
	return c.listNames(ctx, "/api/limitgroups")
}

// ListWorkers returns the farm's worker names.
func (c *Client) ListWorkers(ctx context.Context) ([]string, error) {
	return c.listNames(ctx, "/api/workers")
}

// ServerInfo fetches every scheduling-class list in one call.
func (c *Client) ServerInfo(ctx context.Context) (*types.ServerInfo, error) {
	pools, err := c.ListPools(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := c.ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	limitGroups, err := c.ListLimitGroups(ctx)
	if err != nil {
		return nil, err
	}
	workers, err := c.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}
	return &types.ServerInfo{
		Pools:       pools,
		Groups:      groups,
		LimitGroups: limitGroups,
		Workers:     workers,
	}, nil
}

func (c *Client) listNames(ctx context.Context, apiPath string) ([]string, error) {
	respBody, err := c.do(ctx, fasthttp.MethodGet, c.URL()+apiPath+"?NamesOnly=true", nil)
	if err != nil {
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(respBody, &names); err != nil {
		return nil, NewProtocolError("decode name list response", string(respBody), err)
	}
	sortNoneFirst(names)
	return names, nil
}

// do runs one request with the configured deadline and maps transport
// and HTTP-level failures to farm errors. It returns a copy of the
// response body.
func (c *Client) do(ctx context.Context, method, reqURL string, body []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewSubmissionError("request cancelled", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI(reqURL)
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}
	if c.config.Username != "" && c.config.Password != "" {
		cred := c.config.Username + ":" + c.config.Password
		req.Header.Set(fasthttp.HeaderAuthorization,
			"Basic "+base64.StdEncoding.EncodeToString([]byte(cred)))
	}

	deadline := time.Now().Add(c.Timeout())
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		if err == fasthttp.ErrTimeout {
			return nil, NewSubmissionError(
				fmt.Sprintf("farm request timed out after %s", c.Timeout()), err)
		}
		return nil, NewSubmissionError("farm request failed", err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return nil, NewRejectionError(status, string(resp.Body()))
	}

	// resp.Body() references an internal buffer that is recycled on
	// release.
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}

// Timeout returns the client's effective request timeout.
func (c *Client) Timeout() time.Duration {
	return c.config.Timeout()
}

// sortNoneFirst orders names alphabetically with the "none" sentinel
// pinned to the front, matching how farm frontends present the lists.
func sortNoneFirst(names []string) {
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == "none") != (names[j] == "none") {
			return names[i] == "none"
		}
		return names[i] < names[j]
	})
}
