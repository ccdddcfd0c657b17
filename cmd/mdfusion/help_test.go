package main

// Notes:
// - printFuseUsage is checked against the registered flags so the help text
//   cannot drift from the FlagSet.

import (
	"bytes"
	"strings"
	"testing"

	flag "github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// TestPrintUsage - Main usage output
// ---------------------------------------------------------------------------

func TestPrintUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printUsage(&buf)
	output := buf.String()

	for _, s := range []string{"Usage: mdfusion", "Commands:", "doctor", "version", "help"} {
		if !strings.Contains(output, s) {
			t.Errorf("printUsage output should contain %q", s)
		}
	}
}

// ---------------------------------------------------------------------------
// TestPrintFuseUsage - every flag is documented
// ---------------------------------------------------------------------------

func TestPrintFuseUsage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printFuseUsage(&buf)
	output := buf.String()

	fs := newFuseFlagSet(&fuseFlags{})
	fs.VisitAll(func(f *flag.Flag) {
		if !strings.Contains(output, "--"+f.Name) {
			t.Errorf("usage does not document --%s", f.Name)
		}
		if f.Shorthand != "" && !strings.Contains(output, "-"+f.Shorthand+", --"+f.Name) {
			t.Errorf("usage does not document -%s for --%s", f.Shorthand, f.Name)
		}
	})

	for name := range knownEnvVars {
		if !strings.Contains(output, name) {
			t.Errorf("usage does not mention %s", name)
		}
	}
}

// ---------------------------------------------------------------------------
// TestRunHelp - topic routing
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		args       []string
		wantStdout string
		wantStderr string
	}{
		{args: nil, wantStdout: "Commands:"},
		{args: []string{"merge"}, wantStdout: "--presentation"},
		{args: []string{"doctor"}, wantStdout: "mdfusion doctor [--json]"},
		{args: []string{"version"}, wantStdout: "mdfusion version"},
		{args: []string{"help"}, wantStdout: "mdfusion help [command]"},
		{args: []string{"bogus"}, wantStderr: "Unknown command: bogus"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv(t.TempDir())
			runHelp(tt.args, env)

			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}
