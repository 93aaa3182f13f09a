// Package poller implements the periodic health prober.
//
// The prober:
//   - Pings the project store on a fixed interval with a per-probe timeout
//   - Publishes the result as the store_up gauge and resamples room gauges
//   - Logs only on state changes (up to down, down to up)
//   - Keeps the last result for callers that want a cached health view
package poller
