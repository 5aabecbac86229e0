package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/trimly/accounts/internal/domain"
	"github.com/trimly/accounts/internal/metrics"
	pkgkafka "github.com/trimly/accounts/pkg/kafka"
)

// Kafka topic constants for account domain events.
const (
	TopicAccountRegistered = "trimly.account.registered"
	TopicAccountUpdated    = "trimly.account.updated"
	TopicServiceCreated    = "trimly.account.service_created"
	TopicPaymentRecorded   = "trimly.account.payment_recorded"
)

// Aggregate type constant.
const AggregateTypeAccount = "account"

// Source identifier for events originating from the accounts service.
const SourceAccountsService = "accounts-service"

// AccountRegisteredData is the payload for an account.registered event.
type AccountRegisteredData struct {
	Email             string `json:"email"`
	IsServiceProvider bool   `json:"is_service_provider"`
}

// AccountUpdatedData is the payload for an account.updated event.
type AccountUpdatedData struct {
	Email             string `json:"email"`
	FirstName         string `json:"first_name,omitempty"`
	LastName          string `json:"last_name,omitempty"`
	Location          string `json:"location,omitempty"`
	IsServiceProvider bool   `json:"is_service_provider"`
}

// ServiceCreatedData is the payload for an account.service_created event.
type ServiceCreatedData struct {
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	PriceID string  `json:"price_id"`
}

// PaymentRecordedData is the payload for an account.payment_recorded event.
type PaymentRecordedData struct {
	Email     string  `json:"email"`
	PaymentID string  `json:"payment_id"`
	Amount    float64 `json:"amount"`
}

// Producer publishes account domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the accounts service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishAccountRegistered publishes an account.registered event.
func (p *Producer) PublishAccountRegistered(ctx context.Context, account *domain.Account) error {
	data := AccountRegisteredData{
		Email:             account.Email,
		IsServiceProvider: account.IsServiceProvider,
	}
	return p.publish(ctx, TopicAccountRegistered, account.Email, data)
}

// PublishAccountUpdated publishes an account.updated event.
func (p *Producer) PublishAccountUpdated(ctx context.Context, account *domain.Account) error {
	data := AccountUpdatedData{
		Email:             account.Email,
		FirstName:         account.FirstName,
		LastName:          account.LastName,
		Location:          account.Location,
		IsServiceProvider: account.IsServiceProvider,
	}
	return p.publish(ctx, TopicAccountUpdated, account.Email, data)
}

// PublishServiceCreated publishes an account.service_created event.
func (p *Producer) PublishServiceCreated(ctx context.Context, email string, svc domain.Service) error {
	data := ServiceCreatedData{
		Email:   email,
		Name:    svc.Name,
		Cost:    svc.Cost,
		PriceID: svc.PriceID,
	}
	return p.publish(ctx, TopicServiceCreated, email, data)
}

// PublishPaymentRecorded publishes an account.payment_recorded event.
func (p *Producer) PublishPaymentRecorded(ctx context.Context, email string, record domain.PaymentRecord) error {
	data := PaymentRecordedData{
		Email:     email,
		PaymentID: record.ID,
		Amount:    record.Amount,
	}
	return p.publish(ctx, TopicPaymentRecorded, email, data)
}

func (p *Producer) publish(ctx context.Context, topic, email string, data any) error {
	evt, err := pkgkafka.NewEvent(topic, email, AggregateTypeAccount, SourceAccountsService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, evt); err != nil {
		metrics.EventPublishFailures.WithLabelValues(topic).Inc()
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}
