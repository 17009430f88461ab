package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/embassy/internal/concierge"
	"github.com/ShayCichocki/embassy/internal/tui"
)

var (
	chatPlain   bool
	chatSession string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the concierge",
	Long: `Open a conversation with the concierge.

The concierge captures a new use case (field by field or from a free-text
description), runs resource matching and presents the results, or opens one
of your existing projects.

Every turn is recorded, so an interrupted conversation can be picked up
again with --session <id>.`,
	RunE: runChat,
}

func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&chatPlain, "plain", false, "Line-based chat instead of the full-screen UI")
	cmd.Flags().StringVar(&chatSession, "session", "", "Resume a stored session by id")
}

func init() {
	addChatFlags(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := openApp(appOptions{logToFile: !chatPlain, events: !chatPlain})
	if err != nil {
		return err
	}
	defer a.Close()

	var (
		session  *concierge.Session
		greeting concierge.Reply
	)
	if chatSession != "" {
		session, greeting, err = a.concierge.Resume(ctx, chatSession, a.cfg.User.Name)
	} else {
		session, greeting, err = a.concierge.Start(ctx, a.cfg.User.ID, a.cfg.User.Name)
	}
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}

	if chatPlain {
		return chatPlainLoop(ctx, session, greeting)
	}
	return chatTUI(ctx, a, session, greeting)
}

func chatTUI(ctx context.Context, a *app, session *concierge.Session, greeting concierge.Reply) error {
	program, chat := tui.NewChatProgram(ctx, session, a.cfg.User.Name, greeting)

	forwarded := make(chan struct{})
	go func() {
		defer close(forwarded)
		for e := range a.emitter.Events() {
			program.Send(tui.ActivityMsg{Text: tui.FormatEvent(e)})
		}
	}()

	_, err := program.Run()
	a.emitter.Close()
	<-forwarded
	if err != nil {
		return fmt.Errorf("run chat: %w", err)
	}
	if !chat.Done() {
		fmt.Printf("Session %s saved. Resume with: embassy chat --session %s\n", session.ID(), session.ID())
	}
	return nil
}

func chatPlainLoop(ctx context.Context, session *concierge.Session, greeting concierge.Reply) error {
	speaker := color.New(color.FgGreen, color.Bold)
	prompt := color.New(color.FgCyan, color.Bold)
	unclear := color.New(color.FgYellow)

	printReply := func(r concierge.Reply) {
		speaker.Println("Concierge:")
		if r.Success {
			fmt.Println(r.Message)
		} else {
			unclear.Println(r.Message)
		}
		fmt.Println()
	}
	printReply(greeting)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for !session.Done() {
		prompt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}
		printReply(session.Turn(ctx, scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	if !session.Done() {
		fmt.Printf("\nSession %s saved. Resume with: embassy chat --plain --session %s\n", session.ID(), session.ID())
	}
	return nil
}
