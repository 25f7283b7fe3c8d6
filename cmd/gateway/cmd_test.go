package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(out.String(), "gateway dev") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestServeRejectsInvalidPort(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"serve", "--port", "0"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "--port") {
		t.Fatalf("expected port error, got %v", err)
	}
}
