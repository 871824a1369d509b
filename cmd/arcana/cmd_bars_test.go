package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"arcana/internal/barspec"
)

func TestIsInputErrMatchesBadSpec(t *testing.T) {
	_, err := barspec.Parse("bogus_5")
	assert.True(t, isInputErr(err))
}

func TestIsInputErrRejectsOtherErrors(t *testing.T) {
	assert.False(t, isInputErr(errors.New("connection refused")))
}
