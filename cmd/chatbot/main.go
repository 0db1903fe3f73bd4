package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/harborhealth/bookingbot/cmd/mainconfig"
	appconfig "github.com/harborhealth/bookingbot/internal/config"
	"github.com/harborhealth/bookingbot/internal/conversation"
	"github.com/harborhealth/bookingbot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewText(cfg.LogLevel, os.Stderr)

	ctx := context.Background()
	engine, err := mainconfig.LoadEngine(ctx, cfg, logger, prometheus.NewRegistry())
	if err != nil {
		logger.Error("failed to build dialogue engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	run(ctx, engine)
}

func run(ctx context.Context, engine *mainconfig.Engine) {
	sess := conversation.NewSession()

	fmt.Println(conversation.OpeningPrompt(time.Now()))

	prompt := promptui.Prompt{Label: "You"}

	for {
		input, err := prompt.Run()
		if err != nil {
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, io.EOF) {
				say(conversation.FarewellReply)
				return
			}
			fmt.Fprintf(os.Stderr, "read input: %v\n", err)
			return
		}
		input = strings.TrimSpace(input)

		switch strings.ToLower(input) {
		case "quit", "exit":
			say(conversation.FarewellReply)
			return
		}

		// The opening prompt asked for a name; the first utterance of an
		// unidentified session is consumed as one when it parses.
		if sess.Identity.UserID == "" && sess.State == conversation.StateNone && input != "" {
			if userID, name, ok := engine.Identity.ExtractName(input); ok {
				sess.Identity = conversation.Identity{UserID: userID, DisplayName: name}
				say(conversation.WelcomeMenu(name))
				continue
			}
		}

		// Numeric menu shortcuts jump straight into a transaction.
		if sess.State == conversation.StateNone {
			if state, ok := conversation.MenuState(input); ok {
				sess.State = state
				input = ""
			}
		}

		reply := engine.Controller.Respond(ctx, sess, input)
		say(reply)

		// A completed booking resets the session keeping only the user
		// id; put the display name back for the next transaction.
		if sess.Identity.UserID != "" && sess.Identity.DisplayName == "" {
			if name, ok := engine.Identity.UserName(sess.Identity.UserID); ok {
				sess.Identity.DisplayName = name
			}
		}

		if sess.State == conversation.StateNone {
			say(conversation.ClosingCoda)
		}
	}
}

func say(text string) {
	fmt.Printf("Healthcare Bot: %s\n", text)
}
