package conversation

// State is the dialogue position a session is in. StateNone means the next
// utterance is a fresh top-level request; every other state is an in-flight
// transaction awaiting more input.
type State int

const (
	StateNone State = iota
	StateBookAppointment
	StateViewAppointments
	StateCancelAppointment
	StateAskQuestion
	StateRespondedHowAreYou
)

func (s State) String() string {
	switch s {
	case StateBookAppointment:
		return "book_appointment"
	case StateViewAppointments:
		return "view_appointments"
	case StateCancelAppointment:
		return "cancel_appointment"
	case StateAskQuestion:
		return "ask_question"
	case StateRespondedHowAreYou:
		return "responded_how_are_you"
	default:
		return "none"
	}
}

// Identity is the session-scoped user record. The user id is ephemeral and
// never persisted across sessions.
type Identity struct {
	UserID      string
	DisplayName string
}

// BookingDraft accumulates the booking slots in strict order: service type,
// then date, then time. A later slot being set implies every earlier slot is
// already validated and present.
type BookingDraft struct {
	ServiceType string
	Date        string // DD-MM-YYYY
	Time        string // HH:MM
}

// Session is the mutable per-conversation state. Each session is exclusively
// owned by one conversation; nothing here is shared.
type Session struct {
	State    State
	Identity Identity
	Draft    BookingDraft

	// PendingCancelID is the appointment a cancellation is awaiting yes/no
	// confirmation for; zero means no id has been captured yet.
	PendingCancelID int64
}

// NewSession returns an idle session with no identity.
func NewSession() *Session {
	return &Session{}
}

// RetainFlag selects what survives a Reset.
type RetainFlag uint8

const (
	RetainUserID RetainFlag = 1 << iota
	RetainName
)

// RetainIdentity keeps both the session user id and the display name.
const RetainIdentity = RetainUserID | RetainName

// Reset clears the state, the draft, and any pending cancellation id, keeping
// only the identity fields selected by retain.
func (s *Session) Reset(retain RetainFlag) {
	identity := s.Identity
	*s = Session{}
	if retain&RetainUserID != 0 {
		s.Identity.UserID = identity.UserID
	}
	if retain&RetainName != 0 {
		s.Identity.DisplayName = identity.DisplayName
	}
}
