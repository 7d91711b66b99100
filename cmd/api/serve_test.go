package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sailclub/internal/config"
)

func TestNewReminderScheduler(t *testing.T) {
	job := func(context.Context) {}

	s, err := newReminderScheduler(config.ReminderConfig{}, job)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = newReminderScheduler(config.ReminderConfig{Interval: time.Hour, Location: time.UTC}, job)
	require.NoError(t, err)
	require.NotNil(t, s)
	from := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	assert.True(t, s.Next(from).Equal(from.Add(time.Hour)))

	_, err = newReminderScheduler(config.ReminderConfig{Cron: "not a cron"}, job)
	assert.Error(t, err)
}
