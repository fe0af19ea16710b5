package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("Post not found."))
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected not found, got %s", KindOf(err))
	}
	if Message(err) != "Post not found." {
		t.Fatalf("unexpected message %q", Message(err))
	}
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("connection reset")
	if KindOf(err) != KindInternal {
		t.Fatalf("expected internal, got %s", KindOf(err))
	}
	if Message(err) != "Internal server error." {
		t.Fatalf("internal errors must not leak causes, got %q", Message(err))
	}
}

func TestInternalUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if Is(nil, KindInternal) {
		t.Fatalf("nil error has no kind")
	}
}
