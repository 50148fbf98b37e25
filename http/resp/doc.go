/*
Package resp builds JSON HTTP responses from composable functional options.

A [*Responder] is configured once at boot and shared by every handler.
Handlers supply per-request state through [Fn] options:

	d.Json(w, r, resp.Code(http.StatusOK), resp.Data(payload))
	d.Json(w, r, resp.Code(http.StatusUnauthorized), resp.Err(err), resp.Data(body))

Errors attached with [Err] are logged, not written; clients only ever see
the payload set with [Data] or, through [*Responder.Err], the status text.
*/
package resp
