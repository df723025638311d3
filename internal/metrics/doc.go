// Package metrics provides optional observability for refbuilder runs.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, a null object whose methods inline away. To enable metrics,
// inject NewPrometheusRecorder with a registry; no other code changes are
// required. This keeps the batch tool zero-overhead in the common case while
// allowing operators running refbuilder under a scheduler to scrape stage and
// asset counters.
package metrics
