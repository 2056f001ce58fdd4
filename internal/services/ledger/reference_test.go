package ledger

import (
	"regexp"
	"testing"
	"time"

	"fintrivox/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var referencePattern = regexp.MustCompile(`^(DEP|WDR|INV|PRF|CAP|REF)-\d{13}-[A-Z0-9]{4}$`)

func TestReferenceFormat(t *testing.T) {
	g := NewReferenceGenerator(nil)
	for txType, prefix := range referencePrefixes {
		ref, err := g.Generate(txType)
		require.NoError(t, err)
		assert.Regexp(t, referencePattern, ref)
		assert.Equal(t, prefix, ref[:3])
	}

	_, err := g.Generate("TRANSFER")
	assert.Error(t, err)
}

func TestReferencesAreUnique(t *testing.T) {
	g := NewReferenceGenerator(nil)
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		ref, err := g.Generate(models.TransactionTypeDeposit)
		require.NoError(t, err)
		_, dup := seen[ref]
		require.False(t, dup, "duplicate reference %s", ref)
		seen[ref] = struct{}{}
	}
}

func TestReferencesUniqueWithFrozenClock(t *testing.T) {
	frozen := time.UnixMilli(1709287200000)
	g := NewReferenceGenerator(func() time.Time { return frozen })

	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		ref, err := g.Generate(models.TransactionTypeWithdrawal)
		require.NoError(t, err)
		_, dup := seen[ref]
		require.False(t, dup)
		seen[ref] = struct{}{}
	}
}

func TestReferenceClockNeverGoesBackwards(t *testing.T) {
	now := time.UnixMilli(2000)
	g := NewReferenceGenerator(func() time.Time { return now })

	first, err := g.Generate(models.TransactionTypeProfit)
	require.NoError(t, err)
	now = time.UnixMilli(1000)
	second, err := g.Generate(models.TransactionTypeProfit)
	require.NoError(t, err)

	assert.Contains(t, first, "-2000-")
	assert.Contains(t, second, "-2000-")
}
