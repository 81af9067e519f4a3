package errors

import "net/http"

var ErrReviewOwnPlan = &Exception{
	Message:    "cannot review your own plan",
	StatusCode: http.StatusConflict,
}
