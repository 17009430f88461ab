package concierge

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ShayCichocki/embassy/internal/archivist"
	"github.com/ShayCichocki/embassy/internal/state"
	"github.com/ShayCichocki/embassy/pkg/models"
)

// Session is one live conversation. Every turn is recorded through the
// archive together with the resulting conversation state, so a session can
// be resumed later. A Session is safe for concurrent use, but turns are
// processed one at a time.
type Session struct {
	c        *Concierge
	id       string
	userID   string
	userName string

	mu       sync.Mutex
	awaiting AwaitedAction
	data     Data
	done     bool
}

// Start opens a new session for a user and returns the greeting.
func (c *Concierge) Start(ctx context.Context, userID, userName string) (*Session, Reply, error) {
	s := &Session{
		c:        c,
		id:       uuid.New().String(),
		userID:   userOrAnonymous(userID),
		userName: userName,
	}
	reply := c.Greeting(userName)
	if err := s.record(ctx, "greeting", "", reply); err != nil {
		return nil, Reply{}, err
	}
	s.apply(reply)
	c.log.Info("session started", "session_id", s.id, "user_id", s.userID)
	return s, reply, nil
}

// Resume reopens a stored session at the turn where it stopped. The reply
// repeats the prompt for that turn.
func (c *Concierge) Resume(ctx context.Context, sessionID, userName string) (*Session, Reply, error) {
	stored, err := state.Get[models.ChatSession](ctx, c.store, state.CollectionChatSessions, sessionID)
	if err != nil {
		return nil, Reply{}, fmt.Errorf("load session: %w", err)
	}
	if stored == nil {
		return nil, Reply{}, fmt.Errorf("session %s: %w", sessionID, state.ErrNotFound)
	}
	if stored.Status == models.SessionArchived {
		return nil, Reply{}, &state.ValidationError{Collection: state.CollectionChatSessions, Reason: "session is archived"}
	}

	s := &Session{
		c:        c,
		id:       stored.ID,
		userID:   stored.UserID,
		userName: userName,
		awaiting: ParseAwaitedAction(stored.State.AwaitedAction),
		data: Data{
			Collected:  stored.State.Collected,
			FieldIndex: stored.State.FieldIndex,
			Choices:    stored.State.Choices,
			UseCaseID:  stored.CurrentUseCaseID,
			ProjectID:  stored.CurrentProjectID,
		},
	}
	reply := c.prompt(ctx, s.awaiting, s.data, s.userID, userName)
	s.apply(reply)
	c.log.Info("session resumed", "session_id", s.id, "awaiting", s.awaiting.String())
	return s, reply, nil
}

// prompt repeats the question for a state without consuming input.
func (c *Concierge) prompt(ctx context.Context, awaiting AwaitedAction, data Data, userID, userName string) Reply {
	lead := "Welcome back!"
	switch awaiting {
	case AwaitIntakeMode:
		r := intakeModePrompt(data)
		r.Message = lead + " " + r.Message
		return r
	case AwaitGuidedField:
		if data.FieldIndex >= 0 && data.FieldIndex < len(IntakeFields) {
			return fieldPrompt(data, lead)
		}
	case AwaitComprehensive:
		return Reply{Awaiting: awaiting, Success: true, Data: data, Message: lead + " Please describe your project."}
	case AwaitConfirmation:
		return confirmationPrompt(data, lead+" Here's what we captured so far:")
	case AwaitOrchestration:
		return Reply{Awaiting: awaiting, Success: true, Data: data, Message: lead + " Type RETRY to run resource matching again or NEW to start a different project."}
	case AwaitProjectSelect, AwaitNoProjects:
		return c.listProjects(ctx, TurnInput{UserID: userID, Awaiting: awaiting, Data: data})
	case AwaitResultAction:
		match, _ := state.ActiveMatch(ctx, c.store, data.UseCaseID)
		return resultsReply(data, lead, match)
	}
	r := c.Greeting(userName)
	r.Message = lead + "\n\n" + r.Message
	return r
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// UserID returns the owning user.
func (s *Session) UserID() string { return s.userID }

// Awaiting returns the input the session expects next.
func (s *Session) Awaiting() AwaitedAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

// Data returns the accumulated conversation data.
func (s *Session) Data() Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Done reports whether the session has been archived.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Turn feeds one line of user input to the conversation.
func (s *Session) Turn(ctx context.Context, input string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.logInput(ctx, input); err != nil {
		s.c.log.Warn("logging user input failed", "session_id", s.id, "error", err)
	}

	reply := s.c.Turn(ctx, TurnInput{
		SessionID: s.id,
		UserID:    s.userID,
		UserName:  s.userName,
		Awaiting:  s.awaiting,
		Input:     input,
		Data:      s.data,
	})
	s.apply(reply)

	if err := s.record(ctx, reply.Awaiting.String(), input, reply); err != nil {
		s.c.log.Warn("recording reply failed", "session_id", s.id, "error", err)
	}
	return reply
}

func (s *Session) apply(r Reply) {
	s.awaiting = r.Awaiting
	s.data = r.Data
	if r.Done {
		s.done = true
	}
}

func (s *Session) logInput(ctx context.Context, input string) error {
	_, err := s.c.archive.LogInteraction(ctx, archivist.InteractionLog{
		SessionID: s.id,
		UserID:    s.userID,
		Entry: models.Interaction{
			Agent:     "user",
			Action:    "input",
			UserInput: input,
		},
	})
	return err
}

// record stores the concierge's reply and the state it leaves the conversation in.
func (s *Session) record(ctx context.Context, action, input string, r Reply) error {
	st := models.ConversationState{
		AwaitedAction: r.Awaiting.String(),
		Collected:     r.Data.Collected,
		FieldIndex:    r.Data.FieldIndex,
		Choices:       r.Data.Choices,
	}
	_, err := s.c.archive.LogInteraction(ctx, archivist.InteractionLog{
		SessionID: s.id,
		UserID:    s.userID,
		UseCaseID: r.Data.UseCaseID,
		ProjectID: r.Data.ProjectID,
		Entry: models.Interaction{
			Agent:         AgentName,
			Action:        action,
			UserInput:     input,
			AgentResponse: r.Message,
		},
		State: &st,
	})
	return err
}
