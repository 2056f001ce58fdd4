package ledger

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sync"
	"time"

	"fintrivox/internal/models"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// suffixSpace is the number of distinct four character suffixes.
const suffixSpace = 36 * 36 * 36 * 36

var referencePrefixes = map[string]string{
	models.TransactionTypeDeposit:       "DEP",
	models.TransactionTypeWithdrawal:    "WDR",
	models.TransactionTypeInvestment:    "INV",
	models.TransactionTypeProfit:        "PRF",
	models.TransactionTypeCapitalReturn: "CAP",
	models.TransactionTypeRefund:        "REF",
}

// ReferenceGenerator produces {PREFIX}-{unix millis}-{4 random chars}.
// Within one process the timestamp never goes backwards and a suffix is
// never reused for the same millisecond; the unique index on reference
// covers everything else.
type ReferenceGenerator struct {
	mu         sync.Mutex
	now        func() time.Time
	random     io.Reader
	lastMillis int64
	used       map[string]struct{}
}

func NewReferenceGenerator(now func() time.Time) *ReferenceGenerator {
	if now == nil {
		now = time.Now
	}
	return &ReferenceGenerator{
		now:    now,
		random: rand.Reader,
		used:   make(map[string]struct{}),
	}
}

// Generate returns a new reference for the transaction type.
func (g *ReferenceGenerator) Generate(txType string) (string, error) {
	prefix, ok := referencePrefixes[txType]
	if !ok {
		return "", fmt.Errorf("no reference prefix for transaction type %q", txType)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.now().UnixMilli()
	if millis < g.lastMillis {
		millis = g.lastMillis
	}
	if millis != g.lastMillis || len(g.used) >= suffixSpace {
		if millis == g.lastMillis {
			millis++
		}
		g.lastMillis = millis
		g.used = make(map[string]struct{})
	}

	for {
		suffix, err := g.randomSuffix()
		if err != nil {
			return "", err
		}
		key := prefix + suffix
		if _, dup := g.used[key]; dup {
			continue
		}
		g.used[key] = struct{}{}
		return fmt.Sprintf("%s-%d-%s", prefix, millis, suffix), nil
	}
}

func (g *ReferenceGenerator) randomSuffix() (string, error) {
	buf := make([]byte, 4)
	radix := big.NewInt(int64(len(referenceAlphabet)))
	for i := range buf {
		n, err := rand.Int(g.random, radix)
		if err != nil {
			return "", fmt.Errorf("failed to generate reference: %w", err)
		}
		buf[i] = referenceAlphabet[n.Int64()]
	}
	return string(buf), nil
}
