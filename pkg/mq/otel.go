package mq

import (
	"context"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	mqMessagesTotal   metric.Int64Counter
	mqMessageDuration metric.Float64Histogram
	mqErrors          metric.Int64Counter
	mqMetricsOnce     sync.Once
	mqMetricsErr      error
)

func initMQMetrics(meter metric.Meter) error {
	mqMetricsOnce.Do(func() {
		if mqMessagesTotal, mqMetricsErr = meter.Int64Counter(
			"mq.messages.total",
			metric.WithDescription("Total number of RabbitMQ messages"),
			metric.WithUnit("{message}"),
		); mqMetricsErr != nil {
			return
		}
		if mqMessageDuration, mqMetricsErr = meter.Float64Histogram(
			"mq.message.duration",
			metric.WithDescription("RabbitMQ publish and handling duration"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
		); mqMetricsErr != nil {
			return
		}
		mqErrors, mqMetricsErr = meter.Int64Counter(
			"mq.errors",
			metric.WithDescription("Number of RabbitMQ publish and consume errors"),
			metric.WithUnit("{error}"),
		)
	})
	return mqMetricsErr
}

// Tracer 负责消息的 span、追踪头传播和指标
type Tracer struct {
	propagators propagation.TextMapPropagator
	tracer      trace.Tracer
	serviceName string
}

func NewTracer(serviceName string) *Tracer {
	if err := initMQMetrics(otel.Meter(serviceName + ".rabbitmq")); err != nil {
		otel.Handle(err)
	}
	return &Tracer{
		propagators: otel.GetTextMapPropagator(),
		tracer:      otel.Tracer(serviceName + ".rabbitmq"),
		serviceName: serviceName,
	}
}

// Publish 在 span 内调用 publish，并把追踪上下文注入消息头
func (t *Tracer) Publish(ctx context.Context, exchange, routingKey string, msg amqp.Publishing,
	publish func(context.Context, amqp.Publishing) error,
) error {
	start := time.Now()
	ctx, span := t.tracer.Start(ctx, "rabbitmq.publish "+routingKey,
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingDestinationName(exchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(routingKey),
			semconv.MessagingMessageID(msg.MessageId),
			attribute.String("service.name", t.serviceName),
		))
	defer span.End()

	headers := make(amqp.Table, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	t.propagators.Inject(ctx, &MessageHeaderCarrier{Headers: headers})
	msg.Headers = headers

	err := publish(ctx, msg)
	t.finish(ctx, span, "publish", routingKey, err, start)
	return err
}

// Handle 从消息头恢复追踪上下文，在 span 内执行 handle
func (t *Tracer) Handle(ctx context.Context, d amqp.Delivery, handle func(context.Context) error) error {
	start := time.Now()
	ctx = t.propagators.Extract(ctx, &MessageHeaderCarrier{Headers: d.Headers})
	ctx, span := t.tracer.Start(ctx, "rabbitmq.process "+d.RoutingKey,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			semconv.MessagingSystem("rabbitmq"),
			semconv.MessagingDestinationName(d.Exchange),
			semconv.MessagingRabbitmqDestinationRoutingKey(d.RoutingKey),
			semconv.MessagingMessageID(d.MessageId),
			attribute.String("service.name", t.serviceName),
		))
	defer span.End()

	err := handle(ctx)
	t.finish(ctx, span, "process", d.RoutingKey, err, start)
	return err
}

func (t *Tracer) finish(ctx context.Context, span trace.Span, operation, routingKey string, err error, start time.Time) {
	status := "success"
	if err != nil {
		status = "error"
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if mqMessagesTotal == nil {
		return
	}
	labels := metric.WithAttributes(
		attribute.String("messaging.operation", operation),
		attribute.String("messaging.rabbitmq.routing_key", routingKey),
		attribute.String("messaging.status", status),
	)
	mqMessagesTotal.Add(ctx, 1, labels)
	mqMessageDuration.Record(ctx, time.Since(start).Seconds(), labels)
	if err != nil {
		mqErrors.Add(ctx, 1, labels)
	}
}

// MessageHeaderCarrier 实现 propagation.TextMapCarrier 接口
type MessageHeaderCarrier struct {
	Headers amqp.Table
}

func (m *MessageHeaderCarrier) Get(key string) string {
	if val, ok := m.Headers[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func (m *MessageHeaderCarrier) Set(key, value string) {
	if m.Headers == nil {
		m.Headers = make(amqp.Table)
	}
	m.Headers[key] = value
}

func (m *MessageHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	return keys
}
