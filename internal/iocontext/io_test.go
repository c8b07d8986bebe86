// internal/iocontext/io_test.go
package iocontext

import (
	"bytes"
	"context"
	"os"
	"testing"
)

func TestDefaultIO(t *testing.T) {
	io := DefaultIO()
	if io.Out == nil || io.ErrOut == nil || io.In == nil {
		t.Error("DefaultIO should return non-nil streams")
	}
}

func TestWithIO(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	io := &IO{Out: out, ErrOut: errOut}
	ctx := WithIO(context.Background(), io)

	got := GetIO(ctx)
	if got.Out != out {
		t.Error("GetIO should return the IO set with WithIO")
	}
}

func TestGetIO_DefaultsWhenNotSet(t *testing.T) {
	ctx := context.Background()
	io := GetIO(ctx)
	if io == nil {
		t.Error("GetIO should return default IO when not set")
	}
}

func TestIsInteractive(t *testing.T) {
	if (&IO{In: &bytes.Buffer{}}).IsInteractive() {
		t.Error("a buffer is never interactive")
	}

	yes := true
	if !(&IO{In: &bytes.Buffer{}, Interactive: &yes}).IsInteractive() {
		t.Error("override should win")
	}

	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if (&IO{In: f}).IsInteractive() {
		t.Error("a regular file is not a terminal")
	}
}
