package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/clinical-doc-processor/pkg/converters"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\nocr:\n  engine: none\n"), 0o644))
	return path
}

func TestProcessCommand(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(note, []byte("Patient Name: Emily Chen\nDate of Birth: 12/08/1992\nMRN: x991"), 0o644))
	bad := filepath.Join(dir, "setup.exe")
	require.NoError(t, os.WriteFile(bad, []byte("MZ"), 0o644))

	out, err := runCLI(t, "process", "--config", writeConfig(t, dir), "--extended", note, bad)
	assert.ErrorIs(t, err, errProcessingFailed)

	var docs []converters.ProcessedDocument
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		var doc converters.ProcessedDocument
		require.NoError(t, json.Unmarshal(sc.Bytes(), &doc))
		docs = append(docs, doc)
	}
	require.Len(t, docs, 2)

	assert.Equal(t, converters.StatusCompleted, docs[0].Status)
	assert.Equal(t, "Emily", docs[0].Patient.FirstName)
	assert.Equal(t, "Chen", docs[0].Patient.LastName)
	assert.Equal(t, "12/08/1992", docs[0].Patient.DateOfBirth)
	assert.Equal(t, "X991", docs[0].Patient.MedicalRecordNumber)

	assert.Equal(t, converters.StatusFailed, docs[1].Status)
	assert.Contains(t, docs[1].Error, ".exe")
}

func TestProcessCommandRequiresArgs(t *testing.T) {
	_, err := runCLI(t, "process")
	assert.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, "validate", "--first", "John", "--last", "Doe", "--dob", "1990-05-15")
	require.NoError(t, err)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.True(t, report.Valid)
	assert.Equal(t, "05/15/1990", report.Patient.DateOfBirth)
}

func TestValidateCommandInvalid(t *testing.T) {
	out, err := runCLI(t, "validate", "--first", "J", "--dob", "13/45/2000")
	assert.ErrorIs(t, err, errInvalidPatient)

	var report validationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.False(t, report.Valid)
	assert.Equal(t, "First name must be between 2 and 50 characters", report.Errors["first_name"])
	assert.Equal(t, "Last name is required", report.Errors["last_name"])
	assert.Equal(t, "Invalid date of birth", report.Errors["date_of_birth"])
}

func TestFormatsCommand(t *testing.T) {
	out, err := runCLI(t, "formats")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[0], "EXTENSION"))
	assert.Contains(t, out, ".docx")
	assert.Contains(t, out, "pdf_to_image")
}
