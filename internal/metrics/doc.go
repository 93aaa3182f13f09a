// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Websocket connections, inbound events and room occupancy
//   - Mutation outcomes and persistence latency per kind
//   - Fanout deliveries and dropped frames
//   - Cluster bus traffic
//   - HTTP request rates and latencies
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics
