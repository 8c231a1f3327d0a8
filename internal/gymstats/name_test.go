package gymstats

import (
	"errors"
	"testing"

	"github.com/2beens/gymtracker/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	for _, valid := range []string{"Bench Press", "Push-ups (weighted)", "Ćučnjevi"} {
		assert.NoError(t, ValidateName("exercise", valid), valid)
	}

	for _, invalid := range []string{"", "   ", "Push/Pull", "/", "Squat/"} {
		err := ValidateName("exercise", invalid)
		assert.True(t, errors.Is(err, apperr.ErrInvalidInput), invalid)
	}
}
