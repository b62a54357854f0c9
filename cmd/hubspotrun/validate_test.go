package main

import (
	"strings"
	"testing"

	"github.com/loykin/hubspotrun/pkg/fixture"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCmd(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, fixture.TicketCreate())
	yamlFixture := writeFile(t, dir, "ticket.yaml", `info:
  api_key: ""
  api_location: https://api.hubapi.com
  enable_debug_logging: "false"
parameters:
  error_handling: Raise Error
  method: GET
  path: /crm/v3/objects/tickets
  body: ""
`)
	bad := writeFile(t, dir, "bad.json", `{
  "info": {"api_key": "", "api_location": "not a url", "enable_debug_logging": "maybe"},
  "parameters": {"error_handling": "Error Message", "method": "FETCH", "path": "", "body": "[1]"}
}`)

	out, err := run(t, validateCmd, good, yamlFixture)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "ok   "))

	out, err = run(t, validateCmd, good, bad)
	require.Error(t, err)
	assert.Contains(t, out, "ok   "+good)
	assert.Contains(t, out, "FAIL "+bad)
	assert.ErrorIs(t, err, fixture.ErrInvalidLocation)
	assert.ErrorIs(t, err, fixture.ErrInvalidMethod)
	assert.ErrorIs(t, err, fixture.ErrInvalidDebugFlag)
	assert.ErrorIs(t, err, fixture.ErrInvalidPath)
	assert.Equal(t, 5, strings.Count(out, "  - "))
}

func TestValidateCmd_UnsupportedExtension(t *testing.T) {
	p := writeFile(t, t.TempDir(), "fixture.txt", "{}")
	_, err := run(t, validateCmd, p)
	assert.ErrorIs(t, err, fixture.ErrUnsupportedFormat)
}
