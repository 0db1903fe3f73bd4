package conversation

import (
	"fmt"
	"time"
)

const (
	// FarewellReply closes a conversation on an explicit exit command.
	FarewellReply = "Goodbye! Take care of your health."

	// ClosingCoda follows any reply that leaves the session idle again.
	ClosingCoda = "Is there anything else I can help with, or would you like to type 'exit' to leave?"
)

// TimeBasedGreeting picks a salutation from the hour of day.
func TimeBasedGreeting(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 5 && hour < 12:
		return "Good morning"
	case hour >= 12 && hour < 17:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}

// OpeningPrompt is the first thing a new conversation sees. It asks for a
// name, which the next user turn is expected to supply.
func OpeningPrompt(t time.Time) string {
	return fmt.Sprintf("%s, welcome to Nottingham Healthcare Services. Firstly, could I take your name?", TimeBasedGreeting(t))
}

// WelcomeMenu greets a newly identified user and lists the things the
// assistant can do.
func WelcomeMenu(name string) string {
	return fmt.Sprintf("Greetings, %s! I'm here to assist with your healthcare needs. You can ask me any questions or choose from the options below:\n"+
		"  1. Book an Appointment\n"+
		"  2. View Appointments\n"+
		"  3. Cancel an Appointment\n"+
		"  4. Ask a question about our healthcare professionals\n"+
		"Just type the number of the option you'd like to select.", name)
}

// MenuState maps the numeric menu shortcuts to transaction states. The
// shortcuts only apply to an idle session.
func MenuState(input string) (State, bool) {
	switch input {
	case "1":
		return StateBookAppointment, true
	case "2":
		return StateViewAppointments, true
	case "3":
		return StateCancelAppointment, true
	case "4":
		return StateAskQuestion, true
	default:
		return StateNone, false
	}
}
