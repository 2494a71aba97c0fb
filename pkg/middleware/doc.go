// Package middleware provides the HTTP authorization and rate limiting middleware.
//
// # Bearer authentication
//
//	bearer := middleware.NewBearerAuth(authenticator, logger, metrics)
//	protected.Use(bearer.Handler)
//
// The resolved *auth.AuthContext is read back with middleware.GetAuthContext(r).
//
// # Static token
//
//	static := middleware.NewStaticToken(auth.NewStaticToken(apiToken), logger, metrics)
//	users.Handle("/api/users", static.Handler(listUsers))
//
// Both middlewares answer every failure with 401 {"error":"Unauthorized request"};
// the failure reason is only logged and counted.
//
// # Rate limiting
//
//	limiter := middleware.NewRateLimiter(middleware.DefaultLoginRateLimitConfig())
//	// or middleware.NewDistributedRateLimiter(redisClient, cfg, "npsexplorer:ratelimit", metrics)
//	login := middleware.NewRateLimitMiddleware("login", limiter, trustProxy, logger, metrics)
//
// The in-memory limiter is a token bucket per client. The Redis limiter is a fixed
// window shared across instances and lets requests through when Redis fails.
package middleware
