// Package observability provides OpenTelemetry tracing and metrics for batch
// writing and validation.
//
// Tracing:
//
//	cfg := observability.DefaultTracerConfig("openbatch")
//	tp, err := observability.InitTracer(ctx, &cfg)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanVerifyFile)
//	defer span.End()
//
// Metrics:
//
//	mcfg := observability.DefaultMeterConfig("openbatch")
//	mp, err := observability.InitMeter(ctx, &mcfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("openbatch"))
//	w, err := batch.Open("out.jsonl", batch.WithMetrics(metrics))
//
// Without InitMeter the global provider is a no-op and recording costs nothing.
package observability
