package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"fintrivox/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Ledger event types
const (
	EventTransactionCreated  = "transaction.created"
	EventTransactionUpdated  = "transaction.updated"
	EventInvestmentCreated   = "investment.created"
	EventInvestmentCompleted = "investment.completed"
	EventInvestmentCancelled = "investment.cancelled"
)

// Event is the JSON payload published for ledger changes.
type Event struct {
	ID              string          `json:"id"`
	Type            string          `json:"type"`
	UserID          uint            `json:"user_id"`
	Reference       string          `json:"reference,omitempty"`
	TransactionType string          `json:"transaction_type,omitempty"`
	InvestmentID    *uint           `json:"investment_id,omitempty"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	OccurredAt      time.Time       `json:"occurred_at"`
}

func NewTransactionEvent(eventType string, tx *models.Transaction) *Event {
	return &Event{
		ID:              uuid.NewString(),
		Type:            eventType,
		UserID:          tx.UserID,
		Reference:       tx.Reference,
		TransactionType: tx.Type,
		InvestmentID:    tx.InvestmentID,
		Status:          tx.Status,
		Amount:          tx.Amount,
		OccurredAt:      time.Now().UTC(),
	}
}

func NewInvestmentEvent(eventType string, inv *models.Investment) *Event {
	id := inv.ID
	return &Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		UserID:       inv.UserID,
		InvestmentID: &id,
		Status:       inv.Status,
		Amount:       inv.Amount,
		OccurredAt:   time.Now().UTC(),
	}
}

// EventPublisher ships ledger events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
}

// KafkaPublisher writes events keyed by user id so one user's events stay
// ordered within a partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.UserID), 10)),
		Value: payload,
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Event) error { return nil }
