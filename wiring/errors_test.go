package wiring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	err := illegalMode("digital_write", 15, Input(PullUp))
	assert.ErrorIs(t, err, ErrIllegalMode)
	assert.NotErrorIs(t, err, ErrConfiguration)
	assert.ErrorIs(t, err, &Error{Code: ErrIllegalMode})

	wrapped := fmt.Errorf("blink: %w", err)
	assert.ErrorIs(t, wrapped, ErrIllegalMode)
	assert.Equal(t, ErrIllegalMode, CodeOf(wrapped))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, Code(""), CodeOf(errors.New("other")))
	assert.Equal(t, ErrHardwareFailure, CodeOf(ErrHardwareFailure))
	assert.Equal(t, ErrConfiguration, CodeOf(configurationError("set_mode", 1, "")))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "wiring: digital_write pin 15: illegal_mode: pin is in input(pull_up) mode",
		illegalMode("digital_write", 15, Input(PullUp)).Error())
	assert.Equal(t, "wiring: i2c_read: hardware_failure (status -5)",
		hardwareFailure("i2c_read", -1, -5).Error())
}
