package main

import (
	"testing"
	"time"
)

func TestScenarios(t *testing.T) {
	cases := []string{
		"pipe-backpressure",
		"pipe-eof",
		"pipe-broken",
		"socket-echo",
		"connect-timeout",
		"process-reap",
		"thread-detach",
	}

	for _, name := range cases {
		name := name
		t.Run(name, func(t *testing.T) {
			if _, err := runScenario(name, 50*time.Millisecond); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
		})
	}
}

func TestRunScenarioUnknown(t *testing.T) {
	if _, err := runScenario("nope", time.Millisecond); err == nil {
		t.Fatalf("expected error for unknown scenario")
	}
}
