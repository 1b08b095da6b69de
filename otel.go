package smile_request_report

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// InitTracerProvider installs a global tracer provider exporting to an OTLP
// gRPC collector. The returned func flushes and shuts it down.
func InitTracerProvider(ctx context.Context, logger *zap.Logger, hostName string, port int, serviceName, env string) (func(), error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			// the service name used to display traces in backends
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String(env),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("Cannot create OTel trace resource: %v", err)
	}

	endpoint := fmt.Sprintf("%s:%d", hostName, port)
	logger.Info("Sending traces to gRPC endpoint", zap.String("endpoint", endpoint))
	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithInsecure(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithBlock()),
	)
	if err != nil {
		return nil, fmt.Errorf("Cannot create OTel trace exporter: %v", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return func() {
		logger.Info("Shutting down OTel trace provider")
		if err := tracerProvider.Shutdown(ctx); err != nil {
			logger.Warn("OTel trace provider shutdown failed", zap.Error(err))
		}
	}, nil
}
