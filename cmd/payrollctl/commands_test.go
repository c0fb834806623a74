package main

import (
	"bytes"
	"testing"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/formula"
	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormulaDump_Default(t *testing.T) {
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"formula", "dump"})

	// Act
	err := root.Execute()

	// Assert
	require.NoError(t, err)
	parsed, err := formula.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "v1", parsed.Version)
}

func TestRecompute_RequiresPeriodID(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"recompute"})

	// Act
	err := root.Execute()

	// Assert
	assert.ErrorContains(t, err, "period-id")
}

func TestRecompute_RejectsMalformedPeriodID(t *testing.T) {
	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"recompute", "--period-id", "abc"})

	// Act
	err := root.Execute()

	// Assert
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "id", verrs[0].Field)
}
