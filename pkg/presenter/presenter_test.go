package presenter

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	presenter := New()
	assert.NotNil(t, presenter)
	assert.Equal(t, os.Stdout, presenter.output)
	assert.Equal(t, os.Stderr, presenter.errorOutput)
	assert.False(t, presenter.quiet)
}

func TestNewWithOptions(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	assert.Equal(t, &output, presenter.output)
	assert.Equal(t, &errorOutput, presenter.errorOutput)
	assert.Equal(t, ColorNever, presenter.colorMode)
}

func TestDetectColorMode(t *testing.T) {
	tests := []struct {
		name       string
		noColor    string
		skillColor string
		expected   ColorMode
	}{
		{"NO_COLOR set", "1", "", ColorNever},
		{"SKILLS_MCP_COLOR always", "", "always", ColorAlways},
		{"SKILLS_MCP_COLOR force", "", "force", ColorAlways},
		{"SKILLS_MCP_COLOR never", "", "never", ColorNever},
		{"SKILLS_MCP_COLOR off", "", "off", ColorNever},
		{"SKILLS_MCP_COLOR auto", "", "auto", ColorAuto},
		{"default", "", "", ColorAuto},
		{"invalid value", "", "invalid", ColorAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)
			t.Setenv("SKILLS_MCP_COLOR", tt.skillColor)

			assert.Equal(t, tt.expected, detectColorMode())
		})
	}
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	assert.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
}

func TestError(t *testing.T) {
	var errorOutput bytes.Buffer
	presenter := NewWithOptions(nil, &errorOutput, ColorNever)

	err := errors.New("test error")
	presenter.Error(err, "test context")

	output := errorOutput.String()
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "test context")
	assert.Contains(t, output, "test error")

	errorOutput.Reset()
	presenter.Error(err, "")

	output = errorOutput.String()
	assert.Contains(t, output, "[ERROR]")
	assert.Contains(t, output, "test error")
	assert.NotContains(t, output, "test context")

	errorOutput.Reset()
	presenter.Error(nil, "context")
	assert.Empty(t, errorOutput.String())
}

func TestStatusMessagesGoToErrorOutput(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)

	presenter.Success("Operation completed")
	presenter.Warning("Careful")
	presenter.Info("FYI")

	assert.Empty(t, output.String())
	assert.Contains(t, errorOutput.String(), "✓ Operation completed")
	assert.Contains(t, errorOutput.String(), "⚠ Careful")
	assert.Contains(t, errorOutput.String(), "FYI")
}

func TestStatusMessagesQuietMode(t *testing.T) {
	var output, errorOutput bytes.Buffer
	presenter := NewWithOptions(&output, &errorOutput, ColorNever)
	presenter.SetQuiet(true)

	presenter.Success("Operation completed")
	presenter.Warning("Careful")
	presenter.Info("FYI")
	presenter.Section("Title")
	presenter.Separator()

	assert.Empty(t, output.String())
	assert.Empty(t, errorOutput.String())
}

func TestSection(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Section("Skills")
	assert.Equal(t, "Skills\n------\n", output.String())
}

func TestSkill(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Skill("deploy", "Ship code")
	presenter.Skill("notes", "")
	assert.Equal(t, "deploy\n  Ship code\nnotes\n", output.String())
}

func TestField(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Field("path", "/skills/deploy/SKILL.md")
	presenter.Field("headings", 3)
	assert.Equal(t, "path: /skills/deploy/SKILL.md\nheadings: 3\n", output.String())
}

func TestResult(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)
	presenter.SetQuiet(true)

	presenter.Result("# Available Skills\n\n")
	presenter.Result("No skills found.")
	assert.Equal(t, "# Available Skills\n\nNo skills found.\n", output.String())
}

func TestSeparator(t *testing.T) {
	var output bytes.Buffer
	presenter := NewWithOptions(&output, nil, ColorNever)

	presenter.Separator()
	assert.Contains(t, output.String(), "----")
}

func TestColorModeConfiguration(t *testing.T) {
	oldNoColor := color.NoColor
	defer func() { color.NoColor = oldNoColor }()

	presenter := NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorNever)
	assert.Equal(t, ColorNever, presenter.colorMode)
	assert.True(t, color.NoColor)

	presenter = NewWithOptions(&bytes.Buffer{}, &bytes.Buffer{}, ColorAlways)
	assert.Equal(t, ColorAlways, presenter.colorMode)
	assert.False(t, color.NoColor)
}

func TestGlobalFunctions(t *testing.T) {
	originalPresenter := defaultPresenter

	var output, errorOutput bytes.Buffer
	defaultPresenter = NewWithOptions(&output, &errorOutput, ColorNever)

	defer func() {
		defaultPresenter = originalPresenter
	}()

	Error(errors.New("test error"), "error context")
	assert.Contains(t, errorOutput.String(), "[ERROR] error context: test error")

	errorOutput.Reset()
	Success("success message")
	assert.Contains(t, errorOutput.String(), "success message")

	errorOutput.Reset()
	Warning("warning message")
	assert.Contains(t, errorOutput.String(), "warning message")

	errorOutput.Reset()
	Info("info message")
	assert.Contains(t, errorOutput.String(), "info message")

	output.Reset()
	Section("Test Section")
	assert.Contains(t, output.String(), "------------")

	output.Reset()
	Skill("deploy", "Ship code")
	Field("path", "x")
	Result("body")
	Separator()
	assert.Contains(t, output.String(), "deploy\n  Ship code\npath: x\nbody\n")

	SetQuiet(true)
	assert.True(t, IsQuiet())

	errorOutput.Reset()
	Info("should not appear")
	assert.Empty(t, errorOutput.String())

	SetQuiet(false)
	assert.False(t, IsQuiet())
}
