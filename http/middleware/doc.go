/*
The middleware package defines what a middleware is in messleave and a set of basic middlewares.

The available middlewares are:
- CORS
- CurrentUser
- InjectIPAddress
- LogRequest
- RateLimit
- ReportPanic
- RequestID
- RequireAuthed

Due to the amount of configuration required, middleware does not provide a default middleware chain.
Instead, the following can be copy-pasted:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.InjectIPAddress(),
		middleware.RateLimit(vs),
		middleware.RequestID(),
		middleware.LogRequest(log),
		middleware.CORS(baseURL),
		middleware.CurrentUser(responder, codec),
	}
*/
package middleware
