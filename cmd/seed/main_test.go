package main

import (
	"testing"
	"time"

	"bookstore/internal/book"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedRows(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := seedRows(500, 42, now)
	require.Len(t, rows, 500)

	seen := map[string]bool{}
	for _, row := range rows {
		require.Len(t, row, len(seedColumns))

		genre := book.Genre(row[3].(string))
		assert.True(t, genre.Valid(), "unexpected genre %q", genre)
		assert.GreaterOrEqual(t, row[4].(int), 1)

		key := row[0].(string) + "|" + row[1].(string) + "|" + row[3].(string)
		assert.False(t, seen[key], "duplicate identity %s", key)
		seen[key] = true
	}
}

func TestSeedRows_Deterministic(t *testing.T) {
	now := time.Now()
	a := seedRows(20, 7, now)
	b := seedRows(20, 7, now)
	assert.Equal(t, a, b)
}

func TestSeedRows_RunsDoNotCollide(t *testing.T) {
	now := time.Now()
	first := seedRows(200, 1700000000000000001, now)
	second := seedRows(200, 1700000000000000002, now)

	names := map[string]bool{}
	for _, row := range first {
		names[row[0].(string)] = true
	}
	for _, row := range second {
		assert.False(t, names[row[0].(string)], "name %q reused across runs", row[0])
	}
}
