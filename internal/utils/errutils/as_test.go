package errutils

import (
	"fmt"
	"testing"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
)

type codeError struct{ Code int }

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.Code) }

func TestAs(t *testing.T) {
	err := errors.Wrap(&codeError{Code: 404}, "fetching")
	got, ok := As[*codeError](err)
	assert.True(t, ok)
	assert.Equal(t, 404, got.Code)

	_, ok = As[*codeError](errors.New("plain"))
	assert.False(t, ok)

	_, ok = As[*codeError](nil)
	assert.False(t, ok)
}
