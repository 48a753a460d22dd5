package admission

import "github.com/pkg/errors"

var (
	ErrExpiredOrMissing = errors.New("validation request expired or never issued")
	ErrSignature        = errors.New("signature could not be verified")
	ErrPayload          = errors.New("star information is not valid")
)
