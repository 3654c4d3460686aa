// Package server exposes the progress store over a small local HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("GET /courses/{id}").
//
// # Middleware
//
//   - [Recover] : converts handler panics into 500 responses
//   - [Logging] : one structured log line per request
//   - [RateLimit] : token bucket limiting backed by golang.org/x/time/rate
//
// # Routes
//
// [API.Register] installs:
//
//	GET    /health
//	GET    /courses
//	GET    /courses/{id}
//	GET    /progress
//	GET    /progress/{id}
//	PUT    /progress/{id}
//	DELETE /progress/{id}
//	GET    /notifications?kind=&course=&unread=&limit=
//	POST   /notifications/read
//	POST   /notifications/{id}/read
//
// PUT bodies use the persisted progress layout and pass the same structural check as stored values.
// The server recomputes the overall percentage and stamps lastAccessTime; last write wins.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
