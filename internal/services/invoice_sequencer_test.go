package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Starlight373/Car-wash/internal/utils"
)

func TestInvoiceSequencer_Next(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_invoice_sequencer", "counters")
	sequencer := NewInvoiceSequencer(database)
	ctx := context.Background()

	day := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

	first, err := sequencer.Next(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260315-0001", first)

	second, err := sequencer.Next(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260315-0002", second)

	// A new day restarts the sequence at 0001.
	nextDay := day.AddDate(0, 0, 1)
	restarted, err := sequencer.Next(ctx, nextDay)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260316-0001", restarted)

	// The old day's counter keeps going where it left off.
	third, err := sequencer.Next(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, "INV-20260315-0003", third)
}

func TestInvoiceSequencer_Next_Concurrent(t *testing.T) {
	database := utils.SetupTestDB(t, "testdb_invoice_sequencer_concurrent", "counters")
	sequencer := NewInvoiceSequencer(database)
	day := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	const n = 20
	results := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := sequencer.Next(context.Background(), day)
			assert.NoError(t, err)
			results <- number
		}()
	}
	wg.Wait()
	close(results)

	// All numbers distinct and the full 0001..n range covered.
	seen := make(map[string]bool)
	for number := range results {
		assert.False(t, seen[number], "duplicate invoice number %s", number)
		seen[number] = true
	}
	for i := 1; i <= n; i++ {
		expected := fmt.Sprintf("INV-20260315-%04d", i)
		assert.True(t, seen[expected], "missing invoice number %s", expected)
	}
}
