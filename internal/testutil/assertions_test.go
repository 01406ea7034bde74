package testutil

import (
	"errors"
	"testing"

	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
)

func TestHelpers(t *testing.T) {
	if got := BufferText(t, value.Buffer([]byte("abc"))); got != "abc" {
		t.Fatalf("BufferText = %q", got)
	}
	if got := StringText(t, value.String("héllo")); got != "héllo" {
		t.Fatalf("StringText = %q", got)
	}
	AssertErrorType(t, &bridgeerrors.ArityError{Function: "add", Min: 2}, "arity")
	AssertErrorType(t, errors.New("boom"), "internal")
}
