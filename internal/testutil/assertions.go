// Package testutil provides common test helpers for bridge values and errors.
package testutil

import (
	"testing"

	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// BufferText returns the contents of a buffer value as a string.
func BufferText(t *testing.T, v value.Value) string {
	t.Helper()
	view, err := value.BorrowBuffer(v)
	require.NoError(t, err)
	return string(view.Bytes())
}

// StringText returns the text of a string value.
func StringText(t *testing.T, v value.Value) string {
	t.Helper()
	text, err := value.ToUTF8String(v)
	require.NoError(t, err)
	return string(text)
}

// AssertErrorType asserts that err is non-nil and crosses the bridge with
// the given ErrorDetail type.
func AssertErrorType(t *testing.T, err error, wantType string, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Error(t, err, msgAndArgs...) {
		return false
	}
	return assert.Equal(t, wantType, bridgeerrors.ToErrorDetail(err).Type, msgAndArgs...)
}
