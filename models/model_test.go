package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTaskTime(t *testing.T) {
	cases := map[string]string{
		"14:30": "02:30 PM",
		"00:05": "12:05 AM",
		"12:00": "12:00 PM",
		"09:15": "09:15 AM",
	}
	for in, want := range cases {
		got, err := FormatTaskTime(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestFormatTaskTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "25:00", "2:30pm", "noon"} {
		_, err := FormatTaskTime(in)
		assert.Error(t, err, in)
	}
}

func TestProgress(t *testing.T) {
	assert.Equal(t, "No tasks yet", Progress(nil))

	tasks := []Task{
		{Status: StatusCompleted},
		{Status: StatusPending},
		{Status: StatusPending},
	}
	assert.Equal(t, "1/3 completed", Progress(tasks))
}
