package errs

import (
	"errors"
	"log/slog"
	"testing"
)

func TestWrapPreservesChain(t *testing.T) {
	root := errors.New("root cause")
	err := Wrapf(Wrap(root, "load qualification"), "complete qualification %d", 7)

	if !errors.Is(err, root) {
		t.Fatalf("errors.Is() = false, want true")
	}
	if got := err.Error(); got != "complete qualification 7: load qualification: root cause" {
		t.Fatalf("Error() = %q", got)
	}
	if Wrap(nil, "noop") != nil {
		t.Fatalf("Wrap(nil) should return nil")
	}
}

func TestCodeReadsOutermostCode(t *testing.T) {
	root := errors.New("bad date")
	err := Wrap(WithCode(root, "invalid_date"), "create qualification")

	if got := Code(err); got != "invalid_date" {
		t.Fatalf("Code() = %q, want invalid_date", got)
	}
	if !errors.Is(err, root) {
		t.Fatalf("errors.Is() = false, want true")
	}
	if Code(root) != "" {
		t.Fatalf("Code(root) = %q, want empty", Code(root))
	}
	if WithCode(root, "") != root {
		t.Fatalf("WithCode(err, \"\") should return err unchanged")
	}
}

func TestLoggableIncludesStackOnce(t *testing.T) {
	err := WithStack(errors.New("boom"))
	if WithStack(err) != err {
		t.Fatalf("WithStack() captured a second stack")
	}

	value := Loggable(Wrap(err, "outer")).LogValue()
	if value.Kind() != slog.KindGroup {
		t.Fatalf("LogValue() kind = %v, want group", value.Kind())
	}

	keys := map[string]bool{}
	for _, attr := range value.Group() {
		keys[attr.Key] = true
	}
	for _, key := range []string{"message", "chain", "stack"} {
		if !keys[key] {
			t.Fatalf("LogValue() missing %q, got %v", key, keys)
		}
	}
}
