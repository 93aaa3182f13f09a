// Package api serves the project REST surface under /api/projects.
//
// Every response uses the same envelope:
//
//	{"success": bool, "data": ..., "count": n, "pagination": {...}, "message": "...", "error": "..."}
//
// Annotation and chat mutations go through the same reconciler as the
// websocket path and are published to the project's live room, so connected
// clients see REST-originated changes too.
package api
