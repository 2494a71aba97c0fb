// Package api is the HTTP surface of the NPS Explorer backend.
//
// # Routes
//
// All routes live under /api and are grouped by resource:
//
//	POST   /api/auth/login                       open, rate limited per client IP
//	GET    /api/users                            static API token
//	POST   /api/users                            static API token
//	GET    /api/users/favorites/{user_account}   bearer token
//	GET    /api/users/{user_id}                  bearer token
//	PATCH  /api/users/{user_id}                  bearer token
//	DELETE /api/users/{user_id}                  bearer token
//	GET    /api/comments[/{comment_id}]          bearer token
//	POST   /api/comments                         bearer token
//	PATCH  /api/comments/{comment_id}            bearer token
//	DELETE /api/comments/{comment_id}            bearer token
//	GET    /api/favorites[/{favorite_id}]        bearer token
//	POST   /api/favorites                        bearer token
//	PATCH  /api/favorites/{favorite_id}          bearer token
//	DELETE /api/favorites/{favorite_id}          bearer token
//
// Authorization is attached per route, so an unauthorized request never
// reaches a handler. Every rejection answers 401 {"error":"Unauthorized request"}.
//
// # Usage
//
//	server := api.NewServer(api.Dependencies{
//		Authenticator: authenticator,
//		Hasher:        hasher,
//		StaticToken:   auth.NewStaticToken(cfg.Auth.APIToken),
//		Users:         userStore,
//		Comments:      commentStore,
//		Favorites:     favoriteStore,
//		LoginLimiter:  limiter,
//		Logger:        logger,
//		Metrics:       metrics,
//	}, api.Options{CORSOrigins: cfg.Server.CORSOrigins})
//	http.ListenAndServe(":8000", server)
//
// # Responses
//
// Text fields that clients supplied (names, comments, park codes) are passed
// through the sanitize package before they are written. Password hashes are
// never serialized. Unhandled failures are logged with the request id and
// answered with 500 {"error":"server error"}.
package api
