// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vladus80/go-ffmpeg-qp-sweep/internal/sweep"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name    string // Name of the check
	Passed  bool   // Whether the check passed
	Warning bool   // True if it's a warning (non-fatal)
	Message string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks.
//
// Only a missing ffmpeg fails the run: ffprobe absence degrades the input
// info block, and a missing render node only downgrades hardware trials,
// so both are warnings.
func RunAll(ffmpegPath, ffprobePath string) *Result {
	result := &Result{
		Checks: make([]Check, 0, 3),
		Passed: true,
	}

	ffmpegCheck := checkBinary("ffmpeg", ffmpegPath)
	result.Checks = append(result.Checks, ffmpegCheck)
	if !ffmpegCheck.Passed {
		result.Passed = false
	}

	ffprobeCheck := checkBinary("ffprobe", ffprobePath)
	if !ffprobeCheck.Passed {
		ffprobeCheck.Passed = true
		ffprobeCheck.Warning = true
		ffprobeCheck.Message += " (stream info will be unavailable)"
	}
	result.Checks = append(result.Checks, ffprobeCheck)

	result.Checks = append(result.Checks, checkRenderNode())

	return result
}

// RunEssential executes only the fatal check: a runnable ffmpeg binary.
// This is the floor -skip-preflight cannot bypass; without an encoder no
// trial can run.
func RunEssential(ffmpegPath string) *Result {
	check := checkBinary("ffmpeg", ffmpegPath)
	return &Result{
		Checks: []Check{check},
		Passed: check.Passed,
	}
}

// checkBinary verifies the binary runs and extracts its version line.
func checkBinary(name, path string) Check {
	cmd := exec.Command(path, "-version")
	output, err := cmd.Output()

	if err != nil {
		return Check{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("not found at %s: %v", path, err),
		}
	}

	return Check{
		Name:    name,
		Passed:  true,
		Message: fmt.Sprintf("found at %s (version %s)", path, versionFromOutput(string(output))),
	}
}

// versionFromOutput extracts the version token from the first line of
// "ffmpeg -version" output ("ffmpeg version 6.1 Copyright ...").
func versionFromOutput(output string) string {
	line, _, _ := strings.Cut(output, "\n")
	parts := strings.Fields(line)
	if len(parts) >= 3 && parts[1] == "version" {
		return parts[2]
	}
	return "unknown"
}

// checkRenderNode reports VAAPI availability. Informational only: hardware
// trials downgrade to software when the node is missing.
func checkRenderNode() Check {
	if _, err := os.Stat(sweep.RenderNodePath); err != nil {
		return Check{
			Name:    "vaapi",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("%s not found, hardware trials will fall back to software", sweep.RenderNodePath),
		}
	}
	return Check{
		Name:    "vaapi",
		Passed:  true,
		Message: fmt.Sprintf("render node %s present", sweep.RenderNodePath),
	}
}

// PrintResults prints the preflight check results.
func PrintResults(result *Result) {
	fmt.Println("Preflight checks:")
	for _, check := range result.Checks {
		fmt.Println(check.String())
	}
	if !result.Passed {
		fmt.Println("Preflight failed.")
	}
}
