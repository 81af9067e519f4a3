package errors

import "net/http"

var ErrTaskNotInPlan = &Exception{
	Message:    "task does not belong to this plan",
	StatusCode: http.StatusBadRequest,
}
