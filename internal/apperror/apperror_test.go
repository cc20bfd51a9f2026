package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:   http.StatusBadRequest,
		KindUnauthorized: http.StatusUnauthorized,
		KindNotFound:     http.StatusNotFound,
		KindConflict:     http.StatusConflict,
		KindStorage:      http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status())
	}
}

func TestStorageHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused on 10.0.0.3")
	err := fmt.Errorf("load user: %w", Storage(cause))

	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, "Internal server error", MessageOf(err))
	assert.ErrorIs(t, err, cause)
}

func TestUnclassifiedErrorIsStorage(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, "Internal server error", MessageOf(err))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("register: %w", Conflict("An account with this email already exists"))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "An account with this email already exists", MessageOf(err))
}
