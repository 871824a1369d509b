package main

import (
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
)

func TestFatalInputReturnsUsageError(t *testing.T) {
	assert.Equal(t, subcommands.ExitUsageError, fatalInput("bad pair %q", "XYZ"))
}

func TestFatalOperationalReturnsFailure(t *testing.T) {
	assert.Equal(t, subcommands.ExitFailure, fatalOperational(assert.AnError))
}
