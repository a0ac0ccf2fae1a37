package transition

import "errors"

var (
	ErrStepFailed = errors.New("brightness write was not applied")
)
