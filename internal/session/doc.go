// Package session owns websocket connections for the realtime scene protocol.
//
// Each connection has one read goroutine and one write goroutine. The read
// goroutine handles that connection's events strictly in order: validate,
// persist, publish, then read the next frame. Outbound frames are queued on
// an unbounded outbox drained by the write goroutine, so a slow socket never
// blocks room fanout.
//
// A connection may join any number of rooms. When it goes away for any
// reason (client close, read error, missed pongs, server shutdown) it leaves
// every room exactly once and each room is told via presenceLeft.
package session
