package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"

	"github.com/google/uuid"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/pkg/logger"
	"github.com/allservices/marketplace-api/pkg/mailer"
	"github.com/allservices/marketplace-api/pkg/messaging"
	"github.com/allservices/marketplace-api/pkg/metrics"
)

type recipient int

const (
	toCustomer recipient = iota
	toProfessional
)

type notice struct {
	to      recipient
	subject string
	body    *template.Template
}

var notices = map[string]notice{
	model.EventBookingCreated: {
		to:      toProfessional,
		subject: "Nouvelle demande de réservation",
		body:    template.Must(template.New("created").Parse(`<p>Bonjour {{.Name}},</p><p>Vous avez une nouvelle demande pour le {{.StartAt}}.</p>`)),
	},
	model.EventBookingAccepted: {
		to:      toCustomer,
		subject: "Votre réservation est confirmée",
		body:    template.Must(template.New("accepted").Parse(`<p>Bonjour {{.Name}},</p><p>Votre réservation du {{.StartAt}} a été acceptée.</p>`)),
	},
	model.EventBookingRejected: {
		to:      toCustomer,
		subject: "Votre réservation a été refusée",
		body:    template.Must(template.New("rejected").Parse(`<p>Bonjour {{.Name}},</p><p>Votre réservation du {{.StartAt}} n'a pas pu être acceptée.</p>`)),
	},
	model.EventBookingCompleted: {
		to:      toCustomer,
		subject: "Prestation terminée, laissez un avis",
		body:    template.Must(template.New("completed").Parse(`<p>Bonjour {{.Name}},</p><p>Votre prestation du {{.StartAt}} est terminée. Donnez votre avis sur l'artisan.</p>`)),
	},
	model.EventBookingCancelled: {
		to:      toProfessional,
		subject: "Réservation annulée",
		body:    template.Must(template.New("cancelled").Parse(`<p>Bonjour {{.Name}},</p><p>La réservation du {{.StartAt}} a été annulée par le client.</p>`)),
	},
}

var reviewNotice = template.Must(template.New("review").Parse(`<p>Bonjour {{.Name}},</p><p>Un client vous a attribué la note de {{.Rating}}/5.</p>`))

// Service turns relayed domain events into emails.
type Service struct {
	users   repository.UserRepository
	mailer  mailer.Mailer
	metrics *metrics.Metrics
	logger  *logger.Logger
}

func NewService(users repository.UserRepository, m mailer.Mailer, mt *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{
		users:   users,
		mailer:  m,
		metrics: mt,
		logger:  log,
	}
}

// Register subscribes the service to every event type it sends mail for.
func (s *Service) Register(d *messaging.Dispatcher) {
	for eventType := range notices {
		d.Handle(eventType, s.HandleBookingEvent)
	}
	d.Handle(model.EventReviewSubmitted, s.HandleReviewEvent)
}

func (s *Service) HandleBookingEvent(ctx context.Context, msg messaging.Message) error {
	n, ok := notices[msg.Type]
	if !ok {
		return nil
	}

	var evt model.BookingEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}

	userID := evt.CustomerID
	if n.to == toProfessional {
		userID = evt.ProfessionalID
	}

	return s.send(ctx, msg.Type, userID, n.subject, n.body, map[string]interface{}{
		"StartAt": evt.StartAt.Format("02/01/2006 15:04"),
	})
}

func (s *Service) HandleReviewEvent(ctx context.Context, msg messaging.Message) error {
	var evt model.ReviewEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}
	return s.send(ctx, msg.Type, evt.ProfessionalID, "Nouvel avis reçu", reviewNotice, map[string]interface{}{
		"Rating": evt.Rating,
	})
}

func (s *Service) send(ctx context.Context, eventType string, userID uuid.UUID, subject string, tmpl *template.Template, data map[string]interface{}) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Notification recipient not found", "event_type", eventType, "user_id", userID.String())
			s.metrics.NotificationsSent.WithLabelValues(eventType, "skipped").Inc()
			return nil
		}
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	data["Name"] = user.FirstName
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", eventType, err)
	}

	if err := s.mailer.Send(ctx, user.Email, subject, body.String()); err != nil {
		s.metrics.NotificationsSent.WithLabelValues(eventType, "failed").Inc()
		return err
	}
	s.metrics.NotificationsSent.WithLabelValues(eventType, "sent").Inc()
	s.logger.Debug("Notification sent", "event_type", eventType, "user_id", userID.String())
	return nil
}
