// Package server provides HTTP routing, middleware, and the login callback receiver used by the CLI and TUI.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Login Callback
//
// [CallbackHandler] is where the browser lands after the external login. In handoff mode the location carries
// ?s=<handoff id>, in fragment mode it carries #token=<jwt>. Browsers never send fragments to a server, so the
// handler first serves a relay page that moves the fragment into the query string and reloads.
//
// The handler reports the reconstructed location once through [CallbackHandler.Result]; the session gateway
// then treats it as the page load to complete. Later requests are refused so a stale login link cannot be
// replayed against the running client.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
