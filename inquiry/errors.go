package inquiry

import (
	"fmt"

	"github.com/pkg/errors"
)

var errMissingName = errors.New("submission command missing required name")

type fieldTypeError struct {
	key string
}

func (e *fieldTypeError) Error() string {
	return fmt.Sprintf("submission field %q is not a string", e.key)
}
