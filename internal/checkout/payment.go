package checkout

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var ErrPaymentFailed = errors.New("payment failed")

type PaymentResult struct {
	TransactionRef string `json:"transaction_ref"`
}

// Processor simulates a payment provider: a fixed processing delay, then
// success with the configured probability.
type Processor struct {
	Delay       time.Duration
	SuccessRate float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewProcessor(delay time.Duration, successRate float64) *Processor {
	return &Processor{
		Delay:       delay,
		SuccessRate: successRate,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewProcessorWithSource pins the randomness; tests use it for determinism.
func NewProcessorWithSource(delay time.Duration, successRate float64, src rand.Source) *Processor {
	return &Processor{Delay: delay, SuccessRate: successRate, rnd: rand.New(src)}
}

func (p *Processor) Charge(ctx context.Context, amountCents int64) (PaymentResult, error) {
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return PaymentResult{}, ctx.Err()
		}
	}

	p.mu.Lock()
	roll := p.rnd.Float64()
	token := fmt.Sprintf("%09x", p.rnd.Int63n(1<<36))
	p.mu.Unlock()

	if roll >= p.SuccessRate {
		return PaymentResult{}, ErrPaymentFailed
	}
	return PaymentResult{
		TransactionRef: fmt.Sprintf("TXN-%d-%s", time.Now().UnixMilli(), strings.ToUpper(token)),
	}, nil
}
