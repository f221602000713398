// SPDX-License-Identifier: Unlicense OR MIT

package subrandr

import (
	"errors"
	"testing"
)

func TestErrorFormatsWithoutUnderlyingCause(t *testing.T) {
	err := newError(InvalidArgument, nil, "bad width %d", -1)
	want := "subrandr: InvalidArgument: bad width -1"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}

func TestErrorWrapsUnderlyingCause(t *testing.T) {
	cause := errors.New("boom")
	err := newError(IO, cause, "reading font")
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find the wrapped cause")
	}
}

func TestKindStringCoversEverySpecValue(t *testing.T) {
	cases := map[Kind]string{
		Other:              "Other",
		IO:                 "IO",
		InvalidArgument:    "InvalidArgument",
		UnrecognizedFormat: "UnrecognizedFormat",
	}
	for k, want := range cases {
		if got := k.String(); got != want {
			t.Fatalf("Kind(%d).String() = %q, want %q", k, got, want)
		}
	}
	if got := Kind(99).String(); got != "Unknown" {
		t.Fatalf("unrecognized Kind.String() = %q, want %q", got, "Unknown")
	}
}
