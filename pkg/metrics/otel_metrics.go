package metrics

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 注册向导相关指标
	WizardTransitionTotal metric.Int64Counter
	RegistrationTotal     metric.Int64Counter
	ActiveSubmissions     metric.Int64UpDownCounter

	// 后端 API 调用
	BackendRequestTotal    metric.Int64Counter
	BackendRequestDuration metric.Float64Histogram

	// 事件发布
	EventPublishedTotal metric.Int64Counter

	// HTTP 相关指标
	HTTPServerRequestTotal   metric.Int64Counter
	HTTPServerDuration       metric.Float64Histogram
	HTTPServerActiveRequests metric.Int64UpDownCounter
}

var (
	metrics  *OTelMetrics
	initOnce sync.Once
	initErr  error
	// 全局 meter 会把调用转发给之后通过 otel.SetMeterProvider 设置的 provider
	meter = otel.Meter("pronetwork")
)

// InitMetrics 创建所有指标，只执行一次
func InitMetrics() error {
	initOnce.Do(func() {
		initErr = build()
	})
	return initErr
}

func build() error {
	m := &OTelMetrics{}
	var err error

	if m.WizardTransitionTotal, err = meter.Int64Counter(
		"wizard_transition_total",
		metric.WithDescription("Sign-up wizard actions by outcome"),
		metric.WithUnit("{action}"),
	); err != nil {
		return err
	}

	if m.RegistrationTotal, err = meter.Int64Counter(
		"registration_submission_total",
		metric.WithDescription("Registration submissions by outcome"),
		metric.WithUnit("{submission}"),
	); err != nil {
		return err
	}

	if m.ActiveSubmissions, err = meter.Int64UpDownCounter(
		"registration_active_submissions",
		metric.WithDescription("Registrations currently in flight"),
		metric.WithUnit("{submission}"),
	); err != nil {
		return err
	}

	if m.BackendRequestTotal, err = meter.Int64Counter(
		"backend_request_total",
		metric.WithDescription("Requests sent to the user backend"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	if m.BackendRequestDuration, err = meter.Float64Histogram(
		"backend_request_duration_seconds",
		metric.WithDescription("Latency of user backend requests"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if m.EventPublishedTotal, err = meter.Int64Counter(
		"event_published_total",
		metric.WithDescription("Domain events published"),
		metric.WithUnit("{event}"),
	); err != nil {
		return err
	}

	if m.HTTPServerRequestTotal, err = meter.Int64Counter(
		"http_server_request_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	if m.HTTPServerDuration, err = meter.Float64Histogram(
		"http_server_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if m.HTTPServerActiveRequests, err = meter.Int64UpDownCounter(
		"http_server_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{request}"),
	); err != nil {
		return err
	}

	metrics = m
	return nil
}

// GetMetrics 获取全局指标实例，初始化失败时返回 nil
func GetMetrics() *OTelMetrics {
	if err := InitMetrics(); err != nil {
		return nil
	}
	return metrics
}

// RecordWizardAction 记录一次向导操作，outcome 是 ok 或错误码
func RecordWizardAction(ctx context.Context, action, outcome string) {
	if m := GetMetrics(); m != nil {
		m.WizardTransitionTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", action),
			attribute.String("outcome", outcome),
		))
	}
}

// RecordRegistration 记录一次注册提交结果
func RecordRegistration(ctx context.Context, success bool) {
	if m := GetMetrics(); m != nil {
		status := "success"
		if !success {
			status = "failed"
		}
		m.RegistrationTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
}

// TrackSubmission 增加在途提交数，返回的函数用于结束时减回去
func TrackSubmission(ctx context.Context) func() {
	m := GetMetrics()
	if m == nil {
		return func() {}
	}
	m.ActiveSubmissions.Add(ctx, 1)
	return func() { m.ActiveSubmissions.Add(ctx, -1) }
}

// RecordBackendRequest 记录一次后端调用，status 为 0 表示网络错误
func RecordBackendRequest(ctx context.Context, path string, status int, duration time.Duration) {
	m := GetMetrics()
	if m == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("path", path),
		attribute.String("status_code", strconv.Itoa(status)),
	)
	m.BackendRequestTotal.Add(ctx, 1, attrs)
	m.BackendRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("path", path)))
}

// RecordEventPublished 记录事件发布
func RecordEventPublished(ctx context.Context, routingKey string, err error) {
	if m := GetMetrics(); m != nil {
		status := "success"
		if err != nil {
			status = "failed"
		}
		m.EventPublishedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("routing_key", routingKey),
			attribute.String("status", status),
		))
	}
}
