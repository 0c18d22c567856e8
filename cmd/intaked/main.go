package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	audioimpl "github.com/MikeMehr/patient-intake/external/audio"
	cleanupimpl "github.com/MikeMehr/patient-intake/external/cleanup"
	configloader "github.com/MikeMehr/patient-intake/external/config"
	microphoneimpl "github.com/MikeMehr/patient-intake/external/microphone"
	notifyimpl "github.com/MikeMehr/patient-intake/external/notify"
	protocolimpl "github.com/MikeMehr/patient-intake/external/protocol"
	repositoryimpl "github.com/MikeMehr/patient-intake/external/repository"
	speechimpl "github.com/MikeMehr/patient-intake/external/speech"
	transcriberimpl "github.com/MikeMehr/patient-intake/external/transcriber"
	"github.com/MikeMehr/patient-intake/internal/config"
	"github.com/MikeMehr/patient-intake/internal/interview"
	"github.com/MikeMehr/patient-intake/internal/protocol"
	"github.com/joho/godotenv"
	"github.com/samber/do/v2"
)

func main() {
	// Local development convenience; production supplies real env vars.
	_ = godotenv.Load()

	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "capture_backend", cfg.CaptureBackend)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: entering interview console")
	runConsole(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	repositoryimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	microphoneimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	cleanupimpl.RegisterDI(injector)
	speechimpl.RegisterDI(injector)
	protocolimpl.RegisterDI(injector)
	notifyimpl.RegisterDI(injector)
	interview.RegisterDI(injector)

	do.OverrideValue[interview.Events](injector, consoleEvents{})

	return injector
}

// consoleEvents renders controller notifications on the terminal the
// patient is looking at.
type consoleEvents struct{}

func (consoleEvents) OnStatusChange(from, to interview.Status) {
	fmt.Printf("-- %s\n", to)
}

func (consoleEvents) OnMessage(msg protocol.ChatMessage) {
	fmt.Printf("[%s] %s\n", msg.Role, msg.Content)
}

func (consoleEvents) OnCountdownTick(remainingSeconds int) {
	fmt.Printf("!! interview will end in %d seconds; type 'resume' to continue\n", remainingSeconds)
}

func (consoleEvents) OnUserError(message string) {
	fmt.Printf("!! %s\n", message)
}

func runConsole(injector do.Injector) {
	engine, err := do.Invoke[*interview.Engine](injector)
	if err != nil {
		slog.Error("failed to resolve interview engine", "error", err)
		os.Exit(1)
	}

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	fmt.Println("patient intake console; type 'help' for commands")
	for {
		select {
		case <-sigCh:
			slog.Info("shutting down")
			engine.Reset()
			return
		case line, ok := <-lines:
			if !ok {
				engine.Reset()
				return
			}
			if quit := dispatch(engine, line); quit {
				engine.Reset()
				return
			}
		}
	}
}

func dispatch(engine *interview.Engine, line string) (quit bool) {
	ctx := context.Background()
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	switch cmd {
	case "":
	case "help":
		printHelp()
	case "start":
		profile, err := parseProfile(rest)
		if err != nil {
			fmt.Printf("!! %v\n", err)
			return false
		}
		report(engine.Start(ctx, profile))
	case "hold":
		report(engine.HoldToTalk(ctx, false))
	case "hold-more":
		report(engine.HoldToTalk(ctx, true))
	case "release":
		report(engine.Release(ctx))
		if draft, open := engine.Draft(); open {
			fmt.Printf("draft: %s\n", draft)
		}
	case "accept":
		report(engine.Accept(ctx))
	case "edit":
		if err := engine.BeginEdit(); err != nil {
			report(err)
			return false
		}
		report(engine.CommitEdit(strings.TrimSpace(rest)))
		if draft, open := engine.Draft(); open {
			fmt.Printf("draft: %s\n", draft)
		}
	case "redo":
		report(engine.Redo())
	case "say":
		report(engine.SubmitText(ctx, rest))
	case "pause":
		report(engine.Pause())
	case "resume":
		report(engine.Resume(ctx))
	case "end":
		report(engine.End(ctx))
	case "status":
		printStatus(engine.Snapshot())
	case "reset":
		engine.Reset()
	case "quit", "exit":
		return true
	default:
		fmt.Printf("!! unknown command %q; type 'help'\n", cmd)
	}
	return false
}

func parseProfile(rest string) (protocol.PatientProfile, error) {
	// start <first> <last> <age> <sex> <email> <chief complaint...>
	fields := strings.Fields(rest)
	if len(fields) < 6 {
		return protocol.PatientProfile{}, fmt.Errorf("usage: start <first> <last> <age> <sex> <email> <chief complaint>")
	}
	age, err := strconv.Atoi(fields[2])
	if err != nil {
		return protocol.PatientProfile{}, fmt.Errorf("age must be a number: %w", err)
	}
	return protocol.PatientProfile{
		FirstName:      fields[0],
		LastName:       fields[1],
		Age:            age,
		Sex:            fields[3],
		Email:          fields[4],
		ChiefComplaint: strings.Join(fields[5:], " "),
	}, nil
}

func printStatus(sess interview.Session) {
	fmt.Printf("session %s status=%s messages=%d\n", sess.ID, sess.Status, len(sess.Transcript))
	if sess.PauseDeadline != nil {
		fmt.Printf("paused until %s\n", sess.PauseDeadline.Format("15:04:05"))
	}
	for i, msg := range sess.Transcript {
		fmt.Printf("%3d [%s] %s\n", i, msg.Role, msg.Content)
	}
}

func report(err error) {
	if err != nil {
		fmt.Printf("!! %v\n", err)
	}
}

func printHelp() {
	fmt.Println(`commands:
  start <first> <last> <age> <sex> <email> <chief complaint>
  hold        begin speaking (hold-to-talk)
  hold-more   keep speaking, appending to the current draft
  release     stop speaking and review the draft
  accept      submit the reviewed draft
  edit <text> replace the draft text
  redo        discard the draft and speak again
  say <text>  submit a typed answer directly
  pause / resume
  end         finish early with a best-effort summary
  status      print the session transcript
  reset       abandon the session
  quit`)
}
