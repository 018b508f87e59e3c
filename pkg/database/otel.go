package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var (
	dbQueriesTotal  metric.Int64Counter
	dbQueryDuration metric.Float64Histogram
	dbMetricsOnce   sync.Once
	dbMetricsErr    error
)

var sensitiveSQL = []*regexp.Regexp{
	regexp.MustCompile(`password\s*=\s*'[^']*'`),
	regexp.MustCompile(`token\s*=\s*'[^']*'`),
	regexp.MustCompile(`secret\s*=\s*'[^']*'`),
}

// initDatabaseMetrics 注册查询计数和耗时，只注册一次
func initDatabaseMetrics(meter metric.Meter) error {
	dbMetricsOnce.Do(func() {
		dbQueriesTotal, dbMetricsErr = meter.Int64Counter(
			"db.queries.total",
			metric.WithDescription("Total number of database queries"),
			metric.WithUnit("{query}"),
		)
		if dbMetricsErr != nil {
			return
		}
		dbQueryDuration, dbMetricsErr = meter.Float64Histogram(
			"db.query.duration",
			metric.WithDescription("Database query duration"),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0),
		)
	})
	return dbMetricsErr
}

// OTELPlugin GORM OpenTelemetry 插件
type OTELPlugin struct {
	tracer trace.Tracer
	config PluginConfig
}

// PluginConfig 插件配置
type PluginConfig struct {
	ServiceName     string
	EnableSQLParams bool
	EnableMetrics   bool
	MaxSQLLength    int
}

// DefaultPluginConfig 默认插件配置
func DefaultPluginConfig() PluginConfig {
	return PluginConfig{
		ServiceName:   "pronetwork",
		EnableMetrics: true,
		MaxSQLLength:  500,
	}
}

func NewOTELPlugin(config PluginConfig) *OTELPlugin {
	if config.ServiceName == "" {
		config.ServiceName = "pronetwork"
	}
	if config.MaxSQLLength <= 0 {
		config.MaxSQLLength = 500
	}

	return &OTELPlugin{
		tracer: otel.Tracer(config.ServiceName + ".gorm"),
		config: config,
	}
}

func (p *OTELPlugin) Name() string {
	return "otel_plugin"
}

// Initialize 注册回调
func (p *OTELPlugin) Initialize(db *gorm.DB) error {
	if p.config.EnableMetrics {
		if err := initDatabaseMetrics(otel.Meter(p.config.ServiceName + ".gorm")); err != nil {
			return err
		}
	}

	cb := db.Callback()
	regs := []error{
		cb.Query().Before("gorm:query").Register("otel:before_query", p.before),
		cb.Query().After("gorm:query").Register("otel:after_query", p.after),
		cb.Create().Before("gorm:create").Register("otel:before_create", p.before),
		cb.Create().After("gorm:create").Register("otel:after_create", p.after),
		cb.Update().Before("gorm:update").Register("otel:before_update", p.before),
		cb.Update().After("gorm:update").Register("otel:after_update", p.after),
		cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before),
		cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after),
		cb.Row().Before("gorm:row").Register("otel:before_row", p.before),
		cb.Row().After("gorm:row").Register("otel:after_row", p.after),
		cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before),
		cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after),
	}
	return errors.Join(regs...)
}

func (p *OTELPlugin) before(db *gorm.DB) {
	ctx, span := p.tracer.Start(db.Statement.Context, "db."+db.Statement.Table,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	db.InstanceSet("otel:start_time", time.Now())
	db.InstanceSet("otel:span", span)
	db.Statement.Context = ctx
}

func (p *OTELPlugin) after(db *gorm.DB) {
	v, ok := db.InstanceGet("otel:span")
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	operation := operationName(db.Statement.SQL.String())
	span.SetName(operation)
	span.SetAttributes(p.attributes(db)...)

	err := db.Error
	switch {
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		span.SetStatus(codes.Ok, "")
	default:
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}

	if !p.config.EnableMetrics || dbQueriesTotal == nil {
		return
	}
	start, _ := db.InstanceGet("otel:start_time")
	startTime, ok := start.(time.Time)
	if !ok {
		return
	}
	p.record(db.Statement.Context, operation, err, time.Since(startTime).Seconds())
}

// operationName 从 SQL 前缀推断操作类型
func operationName(sql string) string {
	sql = strings.ToUpper(strings.TrimSpace(sql))
	switch {
	case sql == "":
		return "db.unknown"
	case strings.HasPrefix(sql, "SELECT"):
		return "db.select"
	case strings.HasPrefix(sql, "INSERT"):
		return "db.insert"
	case strings.HasPrefix(sql, "UPDATE"):
		return "db.update"
	case strings.HasPrefix(sql, "DELETE"):
		return "db.delete"
	default:
		return "db.query"
	}
}

func (p *OTELPlugin) attributes(db *gorm.DB) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.DBSystemPostgreSQL,
		attribute.String("service.name", p.config.ServiceName),
		attribute.Int64("db.rows_affected", db.Statement.RowsAffected),
	}
	if table := db.Statement.Table; table != "" {
		attrs = append(attrs, attribute.String("db.table", table))
	}

	sql := db.Statement.SQL.String()
	if len(sql) > p.config.MaxSQLLength {
		sql = sql[:p.config.MaxSQLLength] + "..."
	}
	attrs = append(attrs, semconv.DBStatement(SanitizeSQL(sql)))

	// 只记录参数个数
	if p.config.EnableSQLParams && len(db.Statement.Vars) > 0 {
		attrs = append(attrs, attribute.Int("db.parameter_count", len(db.Statement.Vars)))
	}
	return attrs
}

// SanitizeSQL 遮盖 SQL 里的密码、token、secret 字面量
func SanitizeSQL(sql string) string {
	sql = strings.ToLower(sql)
	for _, re := range sensitiveSQL {
		sql = re.ReplaceAllStringFunc(sql, func(m string) string {
			return m[:strings.Index(m, "=")+1] + "'***'"
		})
	}
	return sql
}

func (p *OTELPlugin) record(ctx context.Context, operation string, err error, seconds float64) {
	status := "success"
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		status = "error"
	}
	labels := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.status", status),
	)
	dbQueriesTotal.Add(ctx, 1, labels)
	dbQueryDuration.Record(ctx, seconds, labels)
}
