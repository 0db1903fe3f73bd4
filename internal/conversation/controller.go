package conversation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/harborhealth/bookingbot/internal/bookings"
	"github.com/harborhealth/bookingbot/internal/intent"
	"github.com/harborhealth/bookingbot/internal/observability/metrics"
	"github.com/harborhealth/bookingbot/pkg/logging"
)

// Booker is the booking collaborator the controller drives. The booking and
// cancellation calls are the controller's only external side effects and are
// invoked at most once per confirmed user action.
type Booker interface {
	BookAppointment(ctx context.Context, userID, date, timeOfDay, serviceType, displayName string) (success bool, message string, appointmentID int64)
	CancelAppointment(ctx context.Context, appointmentID int64) (success bool, message string)
	GetAppointmentByID(ctx context.Context, appointmentID int64) (*bookings.Appointment, error)
	AppointmentExists(ctx context.Context, appointmentID int64) bool
}

const (
	promptBook   = "Wonderful, let's book an appointment. Could you please tell me the type of healthcare service you need? (e.g., general practitioner, dentist, specialist)"
	promptView   = "Ok, I'm going to need your appointment ID first please."
	promptCancel = "I'm sorry to hear that you'd like to cancel your appointment. Firstly, please provide your appointment ID."
	promptAsk    = "Please ask a question about our healthcare professionals."

	replyHowAreYou    = "I'm a chatbot, so I don't have feelings, but thanks for asking! How are you?"
	replyUnknown      = "I'm sorry, I didn't understand that. Could you rephrase or ask something else?"
	replyFallback     = "I'm not sure how to respond to that, could you rephrase that?"
	replyNameUnknown  = "I'm not sure of your name yet. Could you tell me your name again?"
	replyInvalidID    = "Invalid appointment ID. Please enter a valid appointment ID:"
	replyIDNotFound   = "Appointment details not found for the provided ID. Please enter a valid appointment ID:"
	replyYesNo        = "Please respond with 'yes' or 'no' to proceed with the cancellation."
	replyCancelAbort  = "Cancellation process has been aborted. Is there anything else I can help you with?"
	replyAskDate      = "Great! What date would you like to book the appointment for? (in DD-MM-YYYY format)"
	replyBadDate      = "Sorry, that's an invalid date format. Please enter the date in DD-MM-YYYY format."
	replyPastDate     = "Sorry, you cannot book an appointment for a past date. Please enter a future date."
	replyAskTime      = "What time would you like the appointment? (in HH:MM format)"
	replyBadTime      = "Sorry, that's an invalid time format. Please enter the time in HH:MM format."
	replyBooked       = " Your appointment is confirmed. Take care!"
	replyAskFallback  = "I'm not sure about that yet, but I'm learning more about our healthcare professionals every day."
	guestName         = "Guest User"
	confirmCancelLine = "\nWould you like to proceed with cancelling this appointment? (yes/no)"
)

var (
	datePattern = regexp.MustCompile(`\b(\d{2}-\d{2}-\d{4})\b`)
	timePattern = regexp.MustCompile(`\b(\d{2}:\d{2})\b`)

	positiveKeywords = []string{"good", "great", "well", "fantastic", "happy", "ecstatic"}
	negativeKeywords = []string{"bad", "sad", "unhappy", "terrible", "not well", "not great", "not good", "down"}
)

// statePrompts are the opening prompts re-emitted verbatim when a non-idle
// state receives empty input.
var statePrompts = map[State]string{
	StateBookAppointment:    promptBook,
	StateViewAppointments:   promptView,
	StateCancelAppointment:  promptCancel,
	StateAskQuestion:        promptAsk,
	StateRespondedHowAreYou: replyHowAreYou,
}

// Controller is the dialogue state machine. It owns no session state itself:
// all mutation happens on the Session passed into Respond, so one Controller
// serves any number of concurrent sessions.
type Controller struct {
	classifier *intent.Classifier
	booking    Booker
	responses  map[string][]string
	logger     *logging.Logger
	metrics    *metrics.ConversationMetrics

	// Overridable for tests.
	now  func() time.Time
	pick func(n int) int
}

// NewController wires the dialogue engine together. The responses map comes
// from the intents corpus and supplies reply pools for simple intents.
func NewController(classifier *intent.Classifier, booking Booker, responses map[string][]string, logger *logging.Logger, m *metrics.ConversationMetrics) *Controller {
	if classifier == nil {
		panic("conversation: classifier required")
	}
	if booking == nil {
		panic("conversation: booking collaborator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if responses == nil {
		responses = map[string][]string{}
	}
	return &Controller{
		classifier: classifier,
		booking:    booking,
		responses:  responses,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
		pick:       rand.IntN,
	}
}

// Respond processes one user turn to completion: it returns exactly one
// reply and leaves the session in its next state.
func (c *Controller) Respond(ctx context.Context, sess *Session, input string) string {
	c.metrics.ObserveTurn(sess.State.String())
	input = strings.TrimSpace(input)

	if sess.State == StateNone {
		return c.dispatch(ctx, sess, input)
	}

	// Empty or whitespace-only input in a transaction is a no-op re-prompt,
	// never data.
	if input == "" {
		return statePrompts[sess.State]
	}

	switch sess.State {
	case StateViewAppointments:
		return c.handleView(ctx, sess, input)
	case StateCancelAppointment:
		return c.handleCancel(ctx, sess, input)
	case StateRespondedHowAreYou:
		return c.handleWellbeing(sess, input)
	case StateAskQuestion:
		return c.handleQuestion(sess, input)
	case StateBookAppointment:
		return c.handleBooking(ctx, sess, input)
	default:
		return replyUnknown
	}
}

// dispatch handles a top-level utterance: classify, then either start a
// transaction, answer from the QA corpus, or fall back.
func (c *Controller) dispatch(ctx context.Context, sess *Session, input string) string {
	result := c.classifier.Classify(input)
	switch result.Kind {
	case intent.KindIntent:
		return c.dispatchIntent(sess, result.Tag)
	case intent.KindAnswer:
		return result.Answer
	default:
		return replyUnknown
	}
}

func (c *Controller) dispatchIntent(sess *Session, tag string) string {
	switch tag {
	case "name_query":
		return c.greetByName(sess)
	case "how_are_you":
		sess.State = StateRespondedHowAreYou
		return replyHowAreYou
	case "view_appointments":
		sess.State = StateViewAppointments
		return promptView
	case "book_appointment":
		sess.State = StateBookAppointment
		return promptBook
	case "cancel_appointment":
		sess.State = StateCancelAppointment
		return promptCancel
	case "ask_question":
		sess.State = StateAskQuestion
		return promptAsk
	default:
		// Simple-reply intents configured in the corpus.
		pool := c.responses[tag]
		if len(pool) == 0 {
			return replyFallback
		}
		return pool[c.pick(len(pool))]
	}
}

func (c *Controller) greetByName(sess *Session) string {
	name := sess.Identity.DisplayName
	if name == "" {
		return replyNameUnknown
	}
	pool := c.responses["name_query"]
	if len(pool) == 0 {
		return replyNameUnknown
	}
	template := pool[c.pick(len(pool))]
	return strings.ReplaceAll(template, "{detected_name}", name)
}

func (c *Controller) handleView(ctx context.Context, sess *Session, input string) string {
	id, ok := parseAppointmentID(input)
	if !ok || !c.booking.AppointmentExists(ctx, id) {
		return replyInvalidID
	}
	appt, err := c.booking.GetAppointmentByID(ctx, id)
	if err != nil || appt == nil {
		return replyIDNotFound
	}
	sess.State = StateNone
	return formatAppointment(appt)
}

func (c *Controller) handleCancel(ctx context.Context, sess *Session, input string) string {
	if sess.PendingCancelID == 0 {
		id, ok := parseAppointmentID(input)
		if !ok || !c.booking.AppointmentExists(ctx, id) {
			return replyInvalidID
		}
		appt, err := c.booking.GetAppointmentByID(ctx, id)
		if err != nil || appt == nil {
			return replyIDNotFound
		}
		sess.PendingCancelID = id
		return formatAppointment(appt) + confirmCancelLine
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "yes":
		id := sess.PendingCancelID
		success, message := c.booking.CancelAppointment(ctx, id)
		c.metrics.ObserveCancellation(success)
		if !success {
			// Stay in state so the user can retry or answer no.
			return message
		}
		sess.State = StateNone
		sess.PendingCancelID = 0
		return fmt.Sprintf("Your appointment with ID(%d) has been successfully cancelled.", id)
	case "no":
		sess.State = StateNone
		sess.PendingCancelID = 0
		return replyCancelAbort
	default:
		return replyYesNo
	}
}

// handleWellbeing classifies sentiment by keyword containment. Positive
// wins over negative when both match. Single-turn: always returns to idle.
func (c *Controller) handleWellbeing(sess *Session, input string) string {
	sess.State = StateNone
	lowered := strings.ToLower(input)
	for _, word := range positiveKeywords {
		if strings.Contains(lowered, word) {
			return "That's wonderful to hear!"
		}
	}
	for _, word := range negativeKeywords {
		if strings.Contains(lowered, word) {
			return "I'm sorry to hear that, hopefully you'll feel better soon. If your symptoms are severe, please consider calling 999 for immediate assistance."
		}
	}
	return "Thanks for sharing."
}

// handleQuestion answers from the domain zone of the similarity index,
// falling back to a holding reply when nothing clears the QA threshold.
// Single-turn: always returns to idle.
func (c *Controller) handleQuestion(sess *Session, input string) string {
	sess.State = StateNone
	if answer, ok := c.classifier.AnswerDomainQuestion(input); ok {
		return answer
	}
	return replyAskFallback
}

func (c *Controller) handleBooking(ctx context.Context, sess *Session, input string) string {
	switch {
	case sess.Draft.ServiceType == "":
		sess.Draft.ServiceType = titleCase(input)
		return replyAskDate

	case sess.Draft.Date == "":
		match := datePattern.FindStringSubmatch(input)
		if match == nil {
			return replyBadDate
		}
		parsed, err := time.Parse("02-01-2006", match[1])
		if err != nil {
			return replyBadDate
		}
		if parsed.Before(today(c.now())) {
			return replyPastDate
		}
		sess.Draft.Date = parsed.Format("02-01-2006")
		return replyAskTime

	default:
		match := timePattern.FindStringSubmatch(input)
		if match == nil {
			return replyBadTime
		}
		parsed, err := time.Parse("15:04", match[1])
		if err != nil {
			return replyBadTime
		}
		sess.Draft.Time = parsed.Format("15:04")

		if sess.Identity.UserID == "" {
			sess.Identity.UserID = uuid.NewString()
		}
		displayName := sess.Identity.DisplayName
		if displayName == "" {
			displayName = guestName
		}

		success, message, appointmentID := c.booking.BookAppointment(ctx,
			sess.Identity.UserID, sess.Draft.Date, sess.Draft.Time, sess.Draft.ServiceType, displayName)
		c.metrics.ObserveBooking(success)
		if !success {
			// Retry re-enters at the time step: the id, date, and service
			// type are still valid, so only the time slot is cleared.
			sess.Draft.Time = ""
			return message
		}

		c.logger.Info("booking transaction completed",
			"appointment_id", appointmentID,
			"user_id", sess.Identity.UserID,
		)
		sess.Reset(RetainUserID)
		return message + replyBooked
	}
}

// parseAppointmentID accepts a string of decimal digits only. Signed forms
// like "+5" are rejected.
func parseAppointmentID(input string) (int64, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, false
	}
	for _, r := range trimmed {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func formatAppointment(appt *bookings.Appointment) string {
	return fmt.Sprintf("Here are your appointment details for Appointment ID(%d): Service: %s, Date: %s, Time: %s, Doctor: %s",
		appt.ID, appt.ServiceType, appt.Date, appt.Time, appt.ProfessionalName)
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}
