package dto

import domainErrors "github.com/polkiloo/rigshop/internal/domain/errors"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string                    `json:"error"`
	Message string                    `json:"message"`
	Fields  []domainErrors.FieldError `json:"fields,omitempty"`
	Details string                    `json:"details,omitempty"`
}
