package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/harborhealth/bookingbot/pkg/logging"
)

var bookingsTracer = otel.Tracer("bookingbot.internal.bookings")

// professionals maps a service type to the assigned practitioner. Unlisted
// service types fall through to the on-call professional.
var professionals = map[string]string{
	"general practitioner": "Dr. Alice Carter",
	"dentist":              "Dr. Omar Haque",
	"specialist":           "Dr. Elena Vasquez",
	"physiotherapist":      "Mr. David Okafor",
	"nurse":                "Nurse Joan Whitfield",
}

const onCallProfessional = "Dr. Alice Carter"

// Service exposes the booking operations the dialogue engine consumes. Its
// booking and cancellation results are (success, user-facing message) pairs;
// messages are surfaced to the user verbatim, so failures here are never
// fatal to the conversation.
type Service struct {
	repo   *Repository
	logger *logging.Logger
}

// NewService constructs a bookings service.
func NewService(repo *Repository, logger *logging.Logger) *Service {
	if repo == nil {
		panic("bookings: repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// BookAppointment re-checks slot availability and books. It returns the
// confirmation or failure message together with the new appointment id.
func (s *Service) BookAppointment(ctx context.Context, userID, date, timeOfDay, serviceType, displayName string) (bool, string, int64) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("bookingbot.user_id", userID),
		attribute.String("bookingbot.service_type", serviceType),
	)

	if err := s.repo.UpsertUser(ctx, userID, displayName); err != nil {
		span.RecordError(err)
		s.logger.Error("user upsert failed", "error", err, "user_id", userID)
		return false, "Sorry, we failed to make an appointment", 0
	}

	professional := ProfessionalFor(serviceType)
	id, err := s.repo.CreateAppointment(ctx, &Appointment{
		UserID:           userID,
		Date:             date,
		Time:             timeOfDay,
		ServiceType:      serviceType,
		ProfessionalName: professional,
	})
	if errors.Is(err, ErrSlotTaken) {
		return false, "No available slots for the requested time", 0
	}
	if err != nil {
		span.RecordError(err)
		s.logger.Error("booking insert failed", "error", err, "user_id", userID)
		return false, "Sorry, we failed to make an appointment", 0
	}

	s.logger.Info("appointment booked",
		"appointment_id", id,
		"user_id", userID,
		"service_type", serviceType,
		"date", date,
		"time", timeOfDay,
	)
	message := fmt.Sprintf("Your appointment with %s for %s on %s at %s is confirmed. Appointment ID is %d.",
		professional, serviceType, date, timeOfDay, id)
	return true, message, id
}

// CheckAvailability reports whether a date/time slot is free. Pass an
// excludingID > 0 to ignore an existing appointment, as a reschedule does
// when it re-validates its own slot.
func (s *Service) CheckAvailability(ctx context.Context, date, timeOfDay string, excludingID int64) (bool, error) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.check_availability")
	defer span.End()
	span.SetAttributes(
		attribute.String("bookingbot.date", date),
		attribute.String("bookingbot.time", timeOfDay),
	)

	free, err := s.repo.CheckAvailability(ctx, date, timeOfDay, excludingID)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("availability check failed", "error", err, "date", date, "time", timeOfDay)
		return false, err
	}
	return free, nil
}

// CancelAppointment removes an appointment by id.
func (s *Service) CancelAppointment(ctx context.Context, id int64) (bool, string) {
	ctx, span := bookingsTracer.Start(ctx, "bookings.cancel")
	defer span.End()
	span.SetAttributes(attribute.Int64("bookingbot.appointment_id", id))

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		s.logger.Error("cancellation failed", "error", err, "appointment_id", id)
		return false, "Your appointment has not been cancelled."
	}
	if !deleted {
		return false, "Appointment not found"
	}
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return true, "Your appointment has been successfully cancelled."
}

// GetAppointmentByID loads full appointment details; missing ids yield
// (nil, nil).
func (s *Service) GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// AppointmentExists reports whether an appointment id is known. Lookup
// errors read as "does not exist" so the dialogue layer re-prompts instead
// of failing the session.
func (s *Service) AppointmentExists(ctx context.Context, id int64) bool {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		s.logger.Error("existence check failed", "error", err, "appointment_id", id)
		return false
	}
	return exists
}

// ListAppointments returns the session user's appointments.
func (s *Service) ListAppointments(ctx context.Context, userID string) ([]Appointment, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ProfessionalFor resolves the practitioner assigned to a service type.
func ProfessionalFor(serviceType string) string {
	if name, ok := professionals[strings.ToLower(strings.TrimSpace(serviceType))]; ok {
		return name
	}
	return onCallProfessional
}
