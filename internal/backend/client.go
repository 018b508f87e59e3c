package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.uber.org/zap"

	"ProNetwork/config"
	"ProNetwork/pkg/logger"
	"ProNetwork/pkg/metrics"
)

const (
	RegisterPath = "/api/users/register/"
	LoginPath    = "/api/users/login/"
	ProfilePath  = "/api/users/me/"

	defaultTimeout = 10 * time.Second
)

// Options 描述后端 API 的连接方式
type Options struct {
	BaseURL    string
	AuthScheme string // Authorization 头前缀，Token 或 Bearer
	Timeout    time.Duration

	// BreakerFailures 连续失败多少次后熔断，0 表示不启用熔断
	BreakerFailures int
	BreakerReset    time.Duration
}

// OptionsFromConfig 从 config.Cfg 读取后端配置
func OptionsFromConfig() Options {
	return Options{
		BaseURL:    config.Cfg.BackendBaseURL,
		AuthScheme: config.Cfg.BackendAuthScheme,
		Timeout:    time.Duration(config.Cfg.BackendTimeoutSecs) * time.Second,

		BreakerFailures: config.Cfg.BackendBreakerFailures,
		BreakerReset:    time.Duration(config.Cfg.BackendBreakerResetSecs) * time.Second,
	}
}

// Client 调用后端用户 API：注册、登录、获取当前用户
type Client struct {
	cli     *client.Client
	opts    Options
	breaker *breaker // 可能为 nil
}

func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("backend base url is empty")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.AuthScheme == "" {
		opts.AuthScheme = "Token"
	}
	if opts.BreakerReset <= 0 {
		opts.BreakerReset = 30 * time.Second
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")

	cli, err := client.NewClient(
		client.WithDialTimeout(opts.Timeout),
		client.WithClientReadTimeout(opts.Timeout),
		client.WithWriteTimeout(opts.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	c := &Client{cli: cli, opts: opts}
	if opts.BreakerFailures > 0 {
		c.breaker = newBreaker(opts.BreakerFailures, opts.BreakerReset)
	}
	return c, nil
}

// reply 是一次请求的原始结果
type reply struct {
	contentType string
	body        []byte
	status      int
}

func (r reply) ok() bool { return r.status >= 200 && r.status < 300 }

func (r reply) isJSON() bool {
	return strings.Contains(strings.ToLower(r.contentType), "application/json")
}

// do 发出一次请求，不做任何重试
func (c *Client) do(ctx context.Context, method, path string, payload any, authToken string) (reply, error) {
	if c.breaker == nil {
		return c.send(ctx, method, path, payload, authToken)
	}
	if !c.breaker.allow() {
		return reply{}, fmt.Errorf("backend %s %s: %w", method, path, errBreakerOpen)
	}

	r, err := c.send(ctx, method, path, payload, authToken)
	c.breaker.record(err != nil || r.status >= consts.StatusInternalServerError)
	return r, err
}

func (c *Client) send(ctx context.Context, method, path string, payload any, authToken string) (reply, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetRequestURI(c.opts.BaseURL + path)
	req.SetMethod(method)
	req.Header.Set("Accept", "application/json")

	if payload != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return reply{}, fmt.Errorf("failed to encode request body: %w", err)
		}
		req.Header.SetContentTypeBytes([]byte(consts.MIMEApplicationJSON))
		req.SetBody(bytes.TrimRight(buf.Bytes(), "\n"))
	}

	if authToken != "" {
		req.Header.Set("Authorization", c.opts.AuthScheme+" "+authToken)
	}

	start := time.Now()
	err := c.cli.DoTimeout(ctx, req, resp, c.opts.Timeout)
	status := 0
	if err == nil {
		status = resp.StatusCode()
	}
	metrics.RecordBackendRequest(ctx, path, status, time.Since(start))

	if err != nil {
		return reply{}, fmt.Errorf("backend %s %s: %w", method, path, err)
	}

	out := reply{
		status:      resp.StatusCode(),
		contentType: string(resp.Header.ContentType()),
		body:        append([]byte(nil), resp.Body()...),
	}

	logger.Logger.Debug("Backend request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", out.status),
		zap.Duration("duration", time.Since(start)),
	)

	return out, nil
}

// messageFrom 依次取 keys 中第一个非空字段，非字符串的值转成文本
func messageFrom(body []byte, keys ...string) (string, bool) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return "", false
	}

	for _, key := range keys {
		if s := textOf(fields[key]); s != "" {
			return s, true
		}
	}
	return "", true
}

// textOf 列表按 ", " 拼接，对象原样输出 JSON；null、false、0 视为空
func textOf(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := textOf(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(raw)
	}
}
