// Package http provides thin request and response helpers for handlers.
//
// # Request
//
//	req := armhttp.NewRequest(r)
//
//	// Bind JSON / form body into a struct
//	var payload struct {
//	    Name string `json:"name"`
//	}
//	if err := req.Bind(&payload); err != nil { ... }
//
//	// Input retrieval (query string + POST body)
//	name := req.Input("name", "default")
//	page := req.Query("page", "1")
//
//	// Route params (requires the chi router)
//	id := req.RouteParam("id")
//
// # Response
//
//	res := armhttp.NewResponse(w)
//
//	res.JSON(200, data)          // raw JSON with status
//	res.Success(data)            // 200 {"data": ...}
//	res.Created(data)            // 201 {"data": ...}
//	res.NoContent()              // 204
//	res.Error(409, "conflict")   // {"message": "conflict"}
//	res.BadRequest()             // 400 {"message": "Bad request."}
//	res.NotFound()               // 404 {"message": "Not found."}
//	res.ServerError()            // 500 {"message": "Server Error."}
//	res.ValidationError(errs)    // 422 {"errors": {"field": ["msg"]}}
package http
