// Package connection talks to the CompanyLock remote service.
//
//   - pipeline.go: the request pipeline every call passes through
//     (authorization header, request IDs, rate limit, uniform failure
//     handling with forced logout on 401)
//   - http.go: base URL handling and JSON helpers over the pipeline
//   - api.go: typed methods for each remote endpoint
//   - notice.go: notifier helpers
//   - manager.go: connection lifecycle owned by the CLI
package connection
