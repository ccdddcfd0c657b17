package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-mdfusion"
	"github.com/alnah/go-mdfusion/internal/fileutil"
	"github.com/alnah/go-mdfusion/internal/hints"
)

// checkLevel grades a single doctor check.
type checkLevel string

const (
	levelOK    checkLevel = "ok"
	levelWarn  checkLevel = "warn"
	levelError checkLevel = "error"
)

// Doctor statuses, from best to worst.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// check is one line of the doctor report.
type check struct {
	Section string     `json:"section"`
	Name    string     `json:"name"`
	Level   checkLevel `json:"level"`
	Detail  string     `json:"detail"`
	Hint    string     `json:"hint,omitempty"`
}

// doctorReport collects checks in the order they ran.
type doctorReport struct {
	Status string  `json:"status"`
	Checks []check `json:"checks"`
}

func (r *doctorReport) add(section, name string, level checkLevel, detail, hint string) {
	r.Checks = append(r.Checks, check{
		Section: section,
		Name:    name,
		Level:   level,
		Detail:  detail,
		Hint:    strings.TrimPrefix(hint, "\n  hint: "),
	})
}

// finish derives the overall status from the worst check.
func (r *doctorReport) finish() {
	r.Status = statusReady
	for _, c := range r.Checks {
		switch c.Level {
		case levelError:
			r.Status = statusErrors
			return
		case levelWarn:
			r.Status = statusWarnings
		}
	}
}

// doctorHost is what the checks read from the machine.
type doctorHost struct {
	LookPath func(string) (string, error)
	Version  func(path string) (string, error)
	Getenv   func(string) string
	Browser  func(chromiumPath string) (string, bool)
	TempDir  string
}

// systemHost inspects the real machine. lookPath may be nil.
func systemHost(lookPath func(string) (string, error)) doctorHost {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	return doctorHost{
		LookPath: lookPath,
		Version:  toolVersion,
		Getenv:   os.Getenv,
		Browser:  findBrowser,
		TempDir:  os.TempDir(),
	}
}

// runDoctorCmd executes the doctor command. It exits 1 only when a check
// failed; warnings still exit 0.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}

	report := runDoctor(systemHost(env.LookPath))

	if *asJSON {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(report)
	} else {
		printDoctorReport(env.Stdout, report)
	}

	if report.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor runs every check against p.
func runDoctor(p doctorHost) *doctorReport {
	r := &doctorReport{}

	// pandoc and XeLaTeX are needed for every PDF; the browser only for
	// presentations.
	checkTool(r, p, mdfusion.PandocBin)
	checkTool(r, p, mdfusion.PDFEngine)
	checkBrowser(r, p)
	checkEnvironment(r, p)
	checkTempDir(r, p.TempDir)

	r.finish()
	return r
}

func checkTool(r *doctorReport, p doctorHost, name string) {
	path, err := p.LookPath(name)
	if err != nil {
		r.add("Tools", name, levelError, "not found on PATH", hints.ForToolNotFound(name))
		return
	}

	version, err := p.Version(path)
	if err != nil {
		r.add("Tools", name, levelWarn, fmt.Sprintf("%s (version unknown: %v)", path, err), "")
		return
	}
	r.add("Tools", name, levelOK, fmt.Sprintf("%s (%s)", path, version), "")
}

// checkBrowser reports the browser used to print decks. A missing browser is
// a warning: rod downloads one on first use.
func checkBrowser(r *doctorReport, p doctorHost) {
	configured := p.Getenv("MDFUSION_CHROMIUM_PATH")
	path, ok := p.Browser(configured)
	if !ok {
		r.add("Browser", "chromium", levelWarn, "not found, presentations will download one on first use",
			hints.ForBrowserConnect(configured))
		return
	}

	detail := path
	if version, err := p.Version(path); err == nil {
		detail += " (" + version + ")"
	}
	r.add("Browser", "chromium", levelOK, detail, "")

	if p.Getenv("ROD_NO_SANDBOX") == "1" {
		r.add("Browser", "sandbox", levelOK, "disabled (ROD_NO_SANDBOX=1)", "")
	} else {
		r.add("Browser", "sandbox", levelOK, "enabled", "")
	}
}

func checkEnvironment(r *doctorReport, p doctorHost) {
	r.add("Environment", "platform", levelOK, runtime.GOOS+"/"+runtime.GOARCH+", "+runtime.Version(), "")

	container, signal := detectContainer(p.Getenv)
	if container {
		r.add("Environment", "container", levelOK, "detected ("+signal+")", "")
	}
	if hints.InCI() {
		r.add("Environment", "ci", levelOK, "detected", "")
	}
	if (container || hints.InCI()) && p.Getenv("ROD_NO_SANDBOX") != "1" {
		r.add("Environment", "sandbox", levelWarn, "container or CI without ROD_NO_SANDBOX",
			"set ROD_NO_SANDBOX=1 to print presentations")
	}
}

// detectContainer reports whether the process runs in a container and the
// signal that gave it away.
func detectContainer(getenv func(string) string) (bool, string) {
	switch {
	case getenv("MDFUSION_CONTAINER") == "1":
		return true, "MDFUSION_CONTAINER=1"
	case getenv("container") != "":
		return true, "container=" + getenv("container")
	case getenv("KUBERNETES_SERVICE_HOST") != "":
		return true, "KUBERNETES_SERVICE_HOST"
	case hints.IsInContainer():
		return true, "/.dockerenv"
	}
	return false, ""
}

// checkTempDir verifies the directory merged.md is written to by default.
func checkTempDir(r *doctorReport, dir string) {
	marker := filepath.Join(dir, "mdfusion-doctor-check")
	if err := os.WriteFile(marker, nil, 0o600); err != nil {
		r.add("System", "temp dir", levelError, dir+" is not writable", "use --merged-md to write the merged file elsewhere")
		return
	}
	_ = os.Remove(marker)
	r.add("System", "temp dir", levelOK, dir+" is writable", "")
}

// findBrowser resolves the browser the way deck printing does, then falls
// back to rod's lookup of installed browsers.
func findBrowser(chromiumPath string) (string, bool) {
	if bin := mdfusion.BrowserBin(chromiumPath); bin != "" {
		return bin, fileutil.FileExists(bin)
	}
	return launcher.LookPath()
}

// toolVersion returns the first line printed by "<path> --version".
func toolVersion(path string) (string, error) {
	out, err := exec.Command(path, "--version").Output() // #nosec G204 -- path comes from a PATH or browser lookup
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line), nil
}

var levelTags = map[checkLevel]string{
	levelOK:    "[OK]",
	levelWarn:  "[WARN]",
	levelError: "[ERROR]",
}

// printDoctorReport writes the report grouped by section.
func printDoctorReport(w io.Writer, r *doctorReport) {
	fmt.Fprintln(w, "mdfusion doctor")

	section := ""
	for _, c := range r.Checks {
		if c.Section != section {
			section = c.Section
			fmt.Fprintf(w, "\n%s\n", section)
		}
		fmt.Fprintf(w, "  %-7s %s: %s\n", levelTags[c.Level], c.Name, c.Detail)
		if c.Hint != "" {
			fmt.Fprintf(w, "          hint: %s\n", c.Hint)
		}
	}

	fmt.Fprintln(w)
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to merge")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	default:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
