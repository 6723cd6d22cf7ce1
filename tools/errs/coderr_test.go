package errs

import (
	"testing"

	"github.com/pkg/errors"
)

func TestClientMsg(t *testing.T) {
	if got := ClientMsg(ErrNoPartner); got != "No partner connected" {
		t.Errorf("ClientMsg=%q", got)
	}
	// detail stays server-side
	withDetail := ErrJoinFailed.WithDetail("redis: connection refused")
	if got := ClientMsg(withDetail); got != "Failed to join" {
		t.Errorf("ClientMsg leaked detail: %q", got)
	}
	// wrapped errors still resolve to their code
	wrapped := errors.Wrap(withDetail, "join")
	if Code(wrapped) != ErrJoinFailed.Code {
		t.Errorf("Code(wrapped)=%d", Code(wrapped))
	}
	// plain errors collapse to a generic message
	if got := ClientMsg(errors.New("boom")); got != "internal error" {
		t.Errorf("ClientMsg(plain)=%q", got)
	}
}

func TestWithDetailDoesNotMutate(t *testing.T) {
	base := NewCodeError(42, "m")
	_ = base.WithDetail("d1")
	if base.Detail != "" {
		t.Errorf("base mutated: %q", base.Detail)
	}
	d := base.WithDetail("d1").WithDetail("d2")
	if d.Detail != "d1, d2" {
		t.Errorf("detail chain %q", d.Detail)
	}
}
