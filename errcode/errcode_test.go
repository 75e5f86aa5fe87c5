package errcode

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesWrappedCode(t *testing.T) {
	cause := errors.New("nack")
	err := Wrap(BusTransaction, "sit5501.write", cause)

	if !errors.Is(err, BusTransaction) {
		t.Fatalf("errors.Is(%v, BusTransaction) = false", err)
	}
	if errors.Is(err, OutOfRange) {
		t.Fatalf("errors.Is(%v, OutOfRange) = true", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if got, want := err.Error(), "sit5501.write: bus_transaction: nack"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestOf(t *testing.T) {
	type C struct {
		err  error
		want Code
	}
	for _, c := range []C{
		{nil, OK},
		{Timeout, Timeout},
		{New(InvalidState, "gpt.start", "not configured"), InvalidState},
		{fmt.Errorf("outer: %w", New(OutOfRange, "", "")), OutOfRange},
		{errors.New("plain"), Error},
	} {
		if got := Of(c.err); got != c.want {
			t.Fatalf("Of(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(BusTransaction, "op", nil); err != nil {
		t.Fatalf("Wrap(nil) = %v, want nil", err)
	}
}
