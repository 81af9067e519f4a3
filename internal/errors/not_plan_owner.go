package errors

import "net/http"

var ErrNotPlanOwner = &Exception{
	Message:    "only the plan owner can do this",
	StatusCode: http.StatusForbidden,
}
