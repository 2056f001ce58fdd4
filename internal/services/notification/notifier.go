package notification

import (
	"context"
	"fmt"

	"fintrivox/internal/models"
	"fintrivox/internal/repositories"
)

// Effect names
const (
	EffectStore   = "notification.store"
	EffectEmail   = "notification.email"
	EffectPublish = "notification.publish"
)

// Message is what a service wants the user to know after a commit.
type Message struct {
	UserID uint
	Email  string
	Name   string
	Type   string
	Title  string
	Body   string

	// Event, when set, is published to the ledger topic.
	Event *Event
}

// Notifier turns a Message into the ordered effect list and dispatches it.
type Notifier struct {
	dispatcher *Dispatcher
	store      repositories.NotificationRepository
	mailer     Mailer
	publisher  EventPublisher
}

func NewNotifier(dispatcher *Dispatcher, store repositories.NotificationRepository, mailer Mailer, publisher EventPublisher) *Notifier {
	if mailer == nil {
		mailer = LogMailer{}
	}
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &Notifier{
		dispatcher: dispatcher,
		store:      store,
		mailer:     mailer,
		publisher:  publisher,
	}
}

// Notify dispatches the effects for msg.
func (n *Notifier) Notify(msg Message) {
	n.dispatcher.Dispatch(n.Effects(msg)...)
}

// Effects returns, in order: persist the notification, send the email,
// publish the event. Email and event are skipped when not applicable.
func (n *Notifier) Effects(msg Message) []Effect {
	effects := []Effect{{
		Name: EffectStore,
		Run: func(ctx context.Context) error {
			return n.store.Create(ctx, &models.Notification{
				UserID:  msg.UserID,
				Title:   msg.Title,
				Message: msg.Body,
				Type:    msg.Type,
			})
		},
	}}

	if msg.Email != "" {
		effects = append(effects, Effect{
			Name: EffectEmail,
			Run: func(ctx context.Context) error {
				html, err := RenderEmail(msg.Name, msg.Title, msg.Body)
				if err != nil {
					return fmt.Errorf("render email: %w", err)
				}
				return n.mailer.Send(ctx, msg.Email, msg.Title, html)
			},
		})
	}

	if msg.Event != nil {
		event := msg.Event
		effects = append(effects, Effect{
			Name: EffectPublish,
			Run: func(ctx context.Context) error {
				return n.publisher.Publish(ctx, event)
			},
		})
	}
	return effects
}
