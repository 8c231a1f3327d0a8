package tracing

import (
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/honeycombio/honeycomb-opentelemetry-go"
	"github.com/honeycombio/otel-config-go/otelconfig"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var GlobalTracer = otel.Tracer("gymtracker")

// EndSpanWithErrCheck ends the span, marking it as failed when err is set.
func EndSpanWithErrCheck(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	}
	span.End()
}

type HoneycombParams struct {
	Enabled     bool
	ApiKey      string
	ServiceName string
}

// HoneycombSetup configures the OpenTelemetry SDK to export to honeycomb
// and instruments the redis client, if given. The returned func flushes
// and shuts down the exporters.
func HoneycombSetup(params HoneycombParams, rdb *redis.Client) (func(), error) {
	if !params.Enabled {
		return func() {}, nil
	}

	if rdb != nil {
		rdb.AddHook(redisotel.NewTracingHook())
	}

	opts := []otelconfig.Option{
		otelconfig.WithServiceName(params.ServiceName),
	}
	if params.ApiKey != "" {
		opts = append(opts, honeycomb.WithApiKey(params.ApiKey))
	} else {
		log.Warnln("honeycomb enabled, but api key not set")
	}

	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(opts...)
	if err != nil {
		return nil, err
	}

	log.Debugf("honeycomb tracing set up for service [%s]", params.ServiceName)
	return otelShutdown, nil
}
