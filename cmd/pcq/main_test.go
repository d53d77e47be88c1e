// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"code.hybscloud.com/pcq"
)

func runCmd(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func checkSummary(t *testing.T, stdout string) {
	t.Helper()
	for _, want := range []string{
		"Generation completed. Total generation time: ",
		"Total execution time: ",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout %q: missing %q", stdout, want)
		}
	}
}

func TestRunQuiet(t *testing.T) {
	code, stdout, stderr := runCmd(t, "", "-n", "50", "-quiet")
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr %q)", code, stderr)
	}
	checkSummary(t, stdout)
	if strings.Contains(stdout, "number = ") {
		t.Fatalf("-quiet printed progress: %q", stdout)
	}
}

func TestRunProgress(t *testing.T) {
	code, stdout, stderr := runCmd(t, "", "-n", "20", "-cv", "-consumers", "3")
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr %q)", code, stderr)
	}
	checkSummary(t, stdout)
	if got := strings.Count(stdout, "number = "); got != 20 {
		t.Fatalf("progress lines: got %d, want 20", got)
	}
	if !strings.Contains(stderr, "mode=blocking") {
		t.Fatalf("stderr %q: -cv did not select blocking mode", stderr)
	}
}

func TestRunPrompt(t *testing.T) {
	code, stdout, stderr := runCmd(t, "30\n", "-quiet", "-mode", "backoff")
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr %q)", code, stderr)
	}
	if !strings.HasPrefix(stdout, "Please enter the number of elements to generate: ") {
		t.Fatalf("stdout %q: missing prompt", stdout)
	}
	checkSummary(t, stdout)
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	if err := os.WriteFile(path, []byte("count: 40\ncapacity: 4\nmode: blocking\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	code, stdout, stderr := runCmd(t, "", "-config", path, "-quiet", "-mode", "spin")
	if code != 0 {
		t.Fatalf("exit code: got %d, want 0 (stderr %q)", code, stderr)
	}
	checkSummary(t, stdout)
	if !strings.Contains(stderr, "count=40") || !strings.Contains(stderr, "mode=spin") {
		t.Fatalf("stderr %q: flag did not override config file", stderr)
	}
}

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestRunBrokenStdout(t *testing.T) {
	var errOut bytes.Buffer
	code := run([]string{"-n", "10"}, strings.NewReader(""), failWriter{}, &errOut)
	if code != 1 {
		t.Fatalf("exit code: got %d, want 1", code)
	}
	if !strings.Contains(errOut.String(), "broken pipe") {
		t.Fatalf("stderr %q: missing write error", errOut.String())
	}
}

func TestRunInvalid(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		code  int
	}{
		{"negative count", "", []string{"-n", "-5"}, 1},
		{"count above max", "", []string{"-n", strconv.Itoa(pcq.MaxCount + 1)}, 1},
		{"zero capacity", "", []string{"-n", "5", "-capacity", "0"}, 1},
		{"unknown mode", "", []string{"-n", "5", "-mode", "yield"}, 1},
		{"prompt garbage", "abc\n", nil, 1},
		{"prompt zero", "0\n", nil, 1},
		{"missing config", "", []string{"-config", "/nonexistent/run.yaml"}, 1},
		{"unknown flag", "", []string{"-bogus"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCmd(t, tt.stdin, tt.args...)
			if code != tt.code {
				t.Fatalf("exit code: got %d, want %d (stderr %q)", code, tt.code, stderr)
			}
			if stderr == "" {
				t.Fatal("stderr: got empty, want an error message")
			}
		})
	}
}
