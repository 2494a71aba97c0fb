// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, comments)
//	httputil.WriteCreated(w, "/api/comments/4", comment)
//	httputil.WriteInfo(w, http.StatusOK, "Request completed")
//
// Error bodies come in two shapes:
//
//	httputil.WriteErrorMessage(w, http.StatusNotFound, "Comment doesn't exist") // {"error": "..."}
//	httputil.WriteErrorObject(w, http.StatusNotFound, "User doesn't exist")     // {"error": {"message": "..."}}
//
// Fixed bodies:
//
//	httputil.WriteUnauthorized(w)         // 401 {"error":"Unauthorized request"}
//	httputil.WriteServerError(w)          // 500 {"error":"server error"}
//	httputil.WriteTooManyRequests(w, 30)  // 429 {"error":"rate limit exceeded","retry_after":30}
//
// # Request Parsing
//
//	var req CreateCommentRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//	id, err := httputil.ParsePathInt64(r, "comment_id")
//
// An empty body decodes to the zero value so handlers can report the absent field.
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.SecurityHeadersMiddleware,
//		httputil.CORSMiddleware(origins),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Authentication and rate limiting middleware
package httputil
