package redis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	redisCommandsTotal   metric.Int64Counter
	redisCommandDuration metric.Float64Histogram
	redisCacheHits       metric.Int64Counter
	redisCacheMisses     metric.Int64Counter
	redisMetricsOnce     sync.Once
	redisMetricsErr      error
)

func initRedisMetrics(meter metric.Meter) error {
	redisMetricsOnce.Do(func() {
		if redisCommandsTotal, redisMetricsErr = meter.Int64Counter(
			"redis.commands.total",
			metric.WithDescription("Total number of Redis commands"),
			metric.WithUnit("{command}"),
		); redisMetricsErr != nil {
			return
		}
		if redisCommandDuration, redisMetricsErr = meter.Float64Histogram(
			"redis.command.duration",
			metric.WithDescription("Redis command duration"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
		); redisMetricsErr != nil {
			return
		}
		if redisCacheHits, redisMetricsErr = meter.Int64Counter(
			"redis.cache.hits",
			metric.WithDescription("Number of cache hits"),
			metric.WithUnit("{hit}"),
		); redisMetricsErr != nil {
			return
		}
		redisCacheMisses, redisMetricsErr = meter.Int64Counter(
			"redis.cache.misses",
			metric.WithDescription("Number of cache misses"),
			metric.WithUnit("{miss}"),
		)
	})
	return redisMetricsErr
}

// TracingHook 为每条命令创建 span 并记录指标
type TracingHook struct {
	tracer trace.Tracer
	attrs  []attribute.KeyValue
}

func NewTracingHook(serviceName string, db int) (*TracingHook, error) {
	if err := initRedisMetrics(otel.Meter(serviceName + ".redis")); err != nil {
		return nil, err
	}
	return &TracingHook{
		tracer: otel.Tracer(serviceName + ".redis"),
		attrs: []attribute.KeyValue{
			semconv.DBSystemRedis,
			semconv.DBRedisDBIndex(db),
			attribute.String("service.name", serviceName),
		},
	}, nil
}

func (th *TracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (th *TracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		name := strings.ToUpper(cmd.Name())
		ctx, span := th.tracer.Start(ctx, name,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		// 只记录命令和键名，不记录值
		span.SetAttributes(semconv.DBOperation(name))
		if keys := ExtractKeys(cmd.Args()); len(keys) > 0 {
			span.SetAttributes(attribute.StringSlice("redis.keys", keys))
		}

		start := time.Now()
		err := next(ctx, cmd)
		duration := time.Since(start).Seconds()

		status := "success"
		switch {
		case errors.Is(err, redis.Nil):
			status = "not_found"
			span.SetStatus(codes.Ok, "key not found")
		case err != nil:
			status = "error"
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		default:
			span.SetStatus(codes.Ok, "")
		}

		labels := metric.WithAttributes(
			attribute.String("redis.command", name),
			attribute.String("redis.status", status),
		)
		redisCommandsTotal.Add(ctx, 1, labels)
		redisCommandDuration.Record(ctx, duration, labels)

		if name == "GET" {
			if status == "not_found" {
				redisCacheMisses.Add(ctx, 1)
			} else if status == "success" {
				redisCacheHits.Add(ctx, 1)
			}
		}
		return err
	}
}

func (th *TracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		ctx, span := th.tracer.Start(ctx, "redis.pipeline",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(th.attrs...),
		)
		defer span.End()

		names := make([]string, 0, len(cmds))
		for _, cmd := range cmds {
			names = append(names, strings.ToUpper(cmd.Name()))
		}
		span.SetAttributes(
			attribute.Int("redis.pipeline.count", len(cmds)),
			attribute.String("redis.pipeline.commands", strings.Join(names, ";")),
		)

		err := next(ctx, cmds)

		failed := 0
		for _, cmd := range cmds {
			if e := cmd.Err(); e != nil && !errors.Is(e, redis.Nil) {
				failed++
			}
		}
		span.SetAttributes(attribute.Int("redis.pipeline.error_count", failed))

		redisCommandsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("redis.command", "PIPELINE")))
		return err
	}
}

// ExtractKeys 提取命令中的键名，最多 5 个
func ExtractKeys(args []interface{}) []string {
	keys := make([]string, 0, 5)
	// args[0] 是命令名
	for i := 1; i < len(args) && len(keys) < 5; i++ {
		if key, ok := args[i].(string); ok && strings.Contains(key, ":") {
			keys = append(keys, SanitizeKey(key))
		}
	}
	return keys
}

// SanitizeKey 隐藏 token 和 session 类键的后半段
func SanitizeKey(key string) string {
	for _, marker := range []string{"token", "password", "secret", "session"} {
		if strings.Contains(key, marker) {
			if i := strings.Index(key, ":"); i > 0 {
				return key[:i] + ":***"
			}
			return "***"
		}
	}
	if len(key) > 100 {
		return key[:100] + "..."
	}
	return key
}

// InstrumentClient 给客户端挂上 TracingHook
func InstrumentClient(client *redis.Client, serviceName string, db int) error {
	hook, err := NewTracingHook(serviceName, db)
	if err != nil {
		return err
	}
	client.AddHook(hook)
	return nil
}
