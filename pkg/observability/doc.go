/*
Package observability turns editor lifecycle hooks into Prometheus metrics and audit logs.

Both producers return domain.LifecycleHooks, so they compose with Merge:

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.AuditHooks(logger))
	editor := arbor.New(arbor.WithLifecycleHooks(hooks))
*/
package observability
