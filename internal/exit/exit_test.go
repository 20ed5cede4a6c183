package exit

import (
	"bytes"
	"os"
	"testing"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   *Result
		output   *os.File
		exitCode int
		message  string
	}{
		{"success", Success("ok\n"), os.Stdout, CodeSuccess, "ok\n"},
		{"error", Error("boom\n"), os.Stderr, CodeFailure, "boom\n"},
		{"errorf", Errorf("Error: %s\n", "bad"), os.Stderr, CodeFailure, "Error: bad\n"},
		{"usagef", Usagef("Error: %d args\n", 0), os.Stderr, CodeUsage, "Error: 0 args\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.result.Output != tt.output {
				t.Errorf("Output = %v, want %v", tt.result.Output, tt.output)
			}
			if tt.result.ExitCode != tt.exitCode {
				t.Errorf("ExitCode = %d, want %d", tt.result.ExitCode, tt.exitCode)
			}
			if tt.result.Message != tt.message {
				t.Errorf("Message = %q, want %q", tt.result.Message, tt.message)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := &Result{Output: &buf, Message: "hello"}
	r.Print()
	if buf.String() != "hello" {
		t.Errorf("Print() wrote %q", buf.String())
	}
}
