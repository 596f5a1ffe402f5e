package cmd

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adalundhe/producticons/core/icontheme"
)

func TestValidateCmd_Definition(t *testing.T) {
	assert.Equal(t, "validate <theme.json>", validateCmd.Use)

	strict := validateCmd.Flags().Lookup("strict")
	require.NotNil(t, strict)
	assert.Equal(t, "false", strict.DefValue)
}

func TestValidateCmd_Valid(t *testing.T) {
	theme := writeFile(t, t.TempDir(), "product.json", testTheme)

	stdout, _, err := executeCommand(t, "validate", theme, "--json")
	require.NoError(t, err)

	var result validateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.Icons)
	assert.Equal(t, []string{"add", "close"}, result.IconIDs)
	assert.Equal(t, []string{"codicon"}, result.Fonts)
	assert.Empty(t, result.Warnings)
}

func TestValidateCmd_Warnings(t *testing.T) {
	theme := writeFile(t, t.TempDir(), "product.json", warningTheme)

	stdout, _, err := executeCommand(t, "validate", theme, "--json")
	require.NoError(t, err)

	var result validateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Icons)
	assert.Equal(t, []string{"add"}, result.IconIDs)
	assert.Equal(t, []string{
		"Invalid font weight in font 'codicon'. Ignoring setting.",
		"Skipping icon definition 'lost'. Unknown font.",
	}, result.Warnings)

	_, _, err = executeCommand(t, "validate", theme, "--strict")
	assert.True(t, errors.Is(err, ErrWarnings))
}

func TestValidateCmd_LocalizedWarnings(t *testing.T) {
	theme := writeFile(t, t.TempDir(), "product.json", warningTheme)

	stdout, _, err := executeCommand(t, "validate", theme, "--json", "--lang", "de")
	require.NoError(t, err)

	var result validateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Warnings, 2)
	assert.Contains(t, result.Warnings[0], "Ungültige Schriftstärke")
}

func TestValidateCmd_ParseError(t *testing.T) {
	theme := writeFile(t, t.TempDir(), "product.json", `{"fonts": [}`)

	stdout, _, err := executeCommand(t, "validate", theme, "--json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, icontheme.ErrParse))

	var result validateResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateCmd_ValidationError(t *testing.T) {
	theme := writeFile(t, t.TempDir(), "product.json", `{"fonts": []}`)

	stdout, _, err := executeCommand(t, "validate", theme)
	require.Error(t, err)
	assert.True(t, errors.Is(err, icontheme.ErrValidation))
	assert.Contains(t, stdout, "invalid")
}

func TestValidateCmd_MissingFile(t *testing.T) {
	_, _, err := executeCommand(t, "validate", "/nonexistent/product.json")
	assert.Error(t, err)
}
