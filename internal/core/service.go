package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/Rorical/RoriKB/internal/api"
	"github.com/Rorical/RoriKB/internal/config"
	"github.com/Rorical/RoriKB/internal/eventbus"
	"github.com/Rorical/RoriKB/internal/markdown"
	"github.com/Rorical/RoriKB/internal/models"
	"github.com/Rorical/RoriKB/internal/stream"
)

// User visible texts.
const (
	FallbackAnswer = "Sorry, something went wrong. Please try again later."

	msgNotCSV            = "Please upload a CSV file"
	msgUploaded          = "CSV uploaded, %d records"
	msgUploadFailed      = "Upload failed: %s"
	msgUploadUnreachable = "Upload failed, please check the server connection"
	msgKBUpdated         = "Knowledge base updated, you can start asking questions!"

	ConfirmDeletePrompt  = "Delete the knowledge base? This removes all uploaded data."
	msgDeleted           = "Knowledge base reset"
	msgDeleteFailed      = "Delete failed: %s"
	msgDeleteUnreachable = "Delete failed, please check the server connection"
	msgKBReset           = "Knowledge base has been reset. The assistant cannot answer specific questions until a new knowledge base is uploaded."

	msgReloaded          = "Vector database reloaded"
	msgReloadFailed      = "Reload failed: %s"
	msgReloadUnreachable = "Reload failed, please check the server connection"

	msgUnknownError = "unknown error"
	msgNoKB         = "this profile has no knowledge base"
)

var (
	ErrSendInFlight  = errors.New("a message is already being answered")
	ErrEmptyMessage  = errors.New("message is empty")
	ErrNotConfigured = errors.New("backend is not configured")
)

type ChatService struct {
	backend      api.Backend
	markdown     markdown.TerminalRenderer
	highlighters []stream.Highlighter
	config       *config.Config
	state        *ChatState
	eventBus     *eventbus.EventBus
	notifier     *Notifier
	confirmer    *Confirmer
	sendSlot     *semaphore.Weighted
	pushMu       sync.Mutex
	logger       *zap.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

type Option func(*ChatService)

func WithLogger(l *zap.Logger) Option {
	return func(cs *ChatService) {
		cs.logger = l
	}
}

func WithHighlighters(h ...stream.Highlighter) Option {
	return func(cs *ChatService) {
		cs.highlighters = append(cs.highlighters, h...)
	}
}

// WithNotificationTTL overrides how long notifications stay up.
func WithNotificationTTL(ttl time.Duration) Option {
	return func(cs *ChatService) {
		cs.notifier.ttl = ttl
	}
}

// NewChatService creates a ChatService. backend may be nil when the profile
// is not usable; sends then fail with ErrNotConfigured.
func NewChatService(cfg *config.Config, backend api.Backend, md markdown.TerminalRenderer, eb *eventbus.EventBus, opts ...Option) *ChatService {
	ctx, cancel := context.WithCancel(context.Background())

	cs := &ChatService{
		backend:  backend,
		markdown: md,
		config:   cfg,
		state:    NewChatState(),
		eventBus: eb,
		sendSlot: semaphore.NewWeighted(1),
		logger:   zap.NewNop(),
		ctx:      ctx,
		cancel:   cancel,
	}
	cs.notifier = NewNotifier(NotificationTTL, cs.pushStateToUI)
	cs.confirmer = NewConfirmer(func(id, prompt string) error {
		return eb.SendToUI(eventbus.ConfirmationRequestEvent{ID: id, Prompt: prompt})
	})

	for _, opt := range opts {
		opt(cs)
	}
	return cs
}

// Start pushes the initial state and runs the event loop in a goroutine.
func (cs *ChatService) Start() {
	cs.pushStateToUI()
	cs.wg.Add(1)
	go cs.eventLoop()
}

// Stop cancels running actions and waits for them to return.
func (cs *ChatService) Stop() {
	cs.cancel()
	cs.notifier.Stop()
	cs.wg.Wait()
}

// Wait blocks until every action started so far has finished.
func (cs *ChatService) Wait() {
	cs.wg.Wait()
}

func (cs *ChatService) IsReady() bool {
	return cs.backend != nil && cs.config.IsValid()
}

func (cs *ChatService) State() *ChatState {
	return cs.state
}

func (cs *ChatService) Notifier() *Notifier {
	return cs.notifier
}

func (cs *ChatService) eventLoop() {
	defer cs.wg.Done()
	for {
		select {
		case <-cs.ctx.Done():
			return
		case event, ok := <-cs.eventBus.UIToCore():
			if !ok {
				return
			}
			cs.handleUIEvent(event)
		}
	}
}

func (cs *ChatService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.SendMessageEvent:
		if err := cs.Send(e.Message); err != nil && !errors.Is(err, ErrEmptyMessage) {
			cs.state.SetError(err)
			cs.pushStateToUI()
		}
	case eventbus.UploadCSVEvent:
		cs.UploadCSV(e.Path)
	case eventbus.DeleteCSVEvent:
		cs.DeleteCSV()
	case eventbus.ReloadVectorDBEvent:
		cs.ReloadVectorDB()
	case eventbus.ClearTranscriptEvent:
		cs.state.Clear()
		cs.pushStateToUI()
	case eventbus.DismissNotificationEvent:
		cs.notifier.Dismiss(e.ID)
	case eventbus.ConfirmationResponseEvent:
		cs.confirmer.Resolve(e.ID, e.Approved)
	case eventbus.ResizeEvent:
		cs.Resize(e.Width)
	}
}

// Send starts answering message. Only one answer streams at a time; a second
// Send while one is running is refused, not queued.
func (cs *ChatService) Send(message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	if cs.backend == nil {
		return ErrNotConfigured
	}
	if !cs.sendSlot.TryAcquire(1) {
		return ErrSendInFlight
	}

	id := cs.state.StartProcessingWithUserMessage(message)
	cs.pushStateToUI()

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		defer cs.sendSlot.Release(1)
		cs.answer(id, message)
	}()
	return nil
}

func (cs *ChatService) answer(id, question string) {
	body, err := cs.backend.Ask(cs.ctx, question)
	if err != nil {
		cs.failAnswer(id, err)
		return
	}
	defer body.Close()

	surface := &messageSurface{state: cs.state, id: id, push: cs.pushStateToUI}
	renderer := stream.NewRenderer(cs.markdown, surface, stream.WithHighlighters(cs.highlighters...))

	text, err := renderer.Run(cs.ctx, body)
	if err != nil {
		cs.failAnswer(id, err)
		return
	}

	cs.state.FinishProcessingWithAssistantMessage(id, text, cs.render(text))
	cs.pushStateToUI()
}

func (cs *ChatService) failAnswer(id string, err error) {
	cs.logger.Error("answer failed",
		zap.String("action", "send"),
		zap.Int("status", statusOf(err)),
		zap.Error(err))

	cs.state.FinishProcessingWithError(id, err, FallbackAnswer, cs.render(FallbackAnswer))
	cs.pushStateToUI()
}

// UploadCSV uploads the file at path as the new knowledge base.
func (cs *ChatService) UploadCSV(path string) {
	if !api.IsCSV(path) {
		cs.notifier.Show(msgNotCSV, models.Error)
		return
	}
	if cs.backend == nil {
		cs.notifier.Show(fmt.Sprintf(msgUploadFailed, ErrNotConfigured), models.Error)
		return
	}

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		cs.upload(path)
	}()
}

func (cs *ChatService) upload(path string) {
	file, err := api.OpenCSV(path)
	if err != nil {
		cs.logger.Warn("cannot upload file", zap.String("action", "upload"), zap.String("path", path), zap.Error(err))
		cs.notifier.Show(fmt.Sprintf(msgUploadFailed, err), models.Error)
		return
	}
	defer file.Close()

	result, err := cs.backend.UploadCSV(cs.ctx, filepath.Base(path), file)
	if err != nil {
		cs.logger.Error("upload failed", zap.String("action", "upload"), zap.Int("status", statusOf(err)), zap.Error(err))
		cs.notifier.Show(failureText(err, msgUploadFailed, msgUploadUnreachable), models.Error)
		return
	}

	cs.notifier.Show(fmt.Sprintf(msgUploaded, result.DocumentCount), models.Success)
	cs.addBotMessage(msgKBUpdated)
}

// DeleteCSV asks for confirmation and then deletes the knowledge base.
func (cs *ChatService) DeleteCSV() {
	if cs.backend == nil {
		cs.notifier.Show(fmt.Sprintf(msgDeleteFailed, ErrNotConfigured), models.Error)
		return
	}

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()

		decision, err := cs.confirmer.Request(cs.ctx, ConfirmDeletePrompt)
		if err != nil {
			if errors.Is(err, ErrConfirmPending) {
				cs.logger.Debug("delete ignored, confirmation pending")
			}
			return
		}
		if decision != Confirmed {
			return
		}
		cs.deleteCSV()
	}()
}

func (cs *ChatService) deleteCSV() {
	if _, err := cs.backend.DeleteCSV(cs.ctx); err != nil {
		cs.logger.Error("delete failed", zap.String("action", "delete"), zap.Int("status", statusOf(err)), zap.Error(err))
		cs.notifier.Show(failureText(err, msgDeleteFailed, msgDeleteUnreachable), models.Error)
		return
	}

	cs.notifier.Show(msgDeleted, models.Success)
	cs.addBotMessage(msgKBReset)
}

// ReloadVectorDB asks the backend to rebuild its index from the stored CSV.
func (cs *ChatService) ReloadVectorDB() {
	if cs.backend == nil {
		cs.notifier.Show(fmt.Sprintf(msgReloadFailed, ErrNotConfigured), models.Error)
		return
	}

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()

		result, err := cs.backend.ReloadVectorDB(cs.ctx)
		if err != nil {
			cs.logger.Error("reload failed", zap.String("action", "reload"), zap.Int("status", statusOf(err)), zap.Error(err))
			cs.notifier.Show(failureText(err, msgReloadFailed, msgReloadUnreachable), models.Error)
			return
		}

		text := msgReloaded
		if result.Message != "" {
			text = result.Message
		}
		cs.notifier.Show(text, models.Success)
	}()
}

// Resize re-renders the transcript for a new terminal width.
func (cs *ChatService) Resize(width int) {
	if err := cs.markdown.Resize(width); err != nil {
		cs.logger.Warn("resize failed", zap.Int("width", width), zap.Error(err))
		return
	}
	cs.state.Rerender(cs.render)
	cs.pushStateToUI()
}

func (cs *ChatService) addBotMessage(content string) {
	cs.state.AddBotMessage(content, cs.render(content))
	cs.pushStateToUI()
}

func (cs *ChatService) render(content string) string {
	return stream.Render(cs.markdown, content, cs.highlighters...)
}

// pushStateToUI snapshots the state and publishes it under one lock, so a
// snapshot taken earlier can never be published after a newer one.
func (cs *ChatService) pushStateToUI() {
	cs.pushMu.Lock()
	defer cs.pushMu.Unlock()

	err := cs.eventBus.PublishState(eventbus.StateUpdateEvent{
		Messages:     cs.state.GetMessages(),
		IsProcessing: cs.state.IsProcessing(),
		Typing:       cs.state.IsTyping(),
		Notification: cs.notifier.Current(),
		Error:        cs.state.GetLastError(),
	})
	if err != nil && !errors.Is(err, eventbus.ErrClosed) {
		cs.logger.Warn("failed to push state to UI", zap.Error(err))
	}
}

// WelcomeLines is the banner shown above the transcript.
func (cs *ChatService) WelcomeLines() []string {
	profile := cs.config.Current()
	lines := []string{"-- RORIKB --"}

	if err := cs.config.Validate(); err != nil {
		lines = append(lines,
			fmt.Sprintf("Active Profile: %s [NOT CONFIGURED]", cs.config.ActiveProfile),
			err.Error(),
			"• Run: rorikb profile add <name>",
			"• Or edit: ~/.rorikb/config.json",
		)
	} else {
		target := profile.BaseURL
		if profile.Kind == config.KindOpenAI {
			target = "OpenAI " + profile.Model
		}
		lines = append(lines,
			fmt.Sprintf("Active Profile: %s [OK] %s", cs.config.ActiveProfile, target),
			"Ask a question and press Enter. /help lists commands.",
		)
	}
	return append(lines, "Controls: Ctrl+C to exit, Esc closes notifications")
}

// failureText picks the message for a failed knowledge-base action: the
// server's reason when it rejected the request, the connection hint
// otherwise.
func failureText(err error, rejected, unreachable string) string {
	if errors.Is(err, api.ErrUnsupported) {
		return fmt.Sprintf(rejected, msgNoKB)
	}
	if !api.IsRejection(err) {
		return unreachable
	}
	detail := api.DetailOf(err)
	if detail == "" {
		detail = msgUnknownError
	}
	return fmt.Sprintf(rejected, detail)
}

func statusOf(err error) int {
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// messageSurface shows a stream in the in-flight message of the transcript.
type messageSurface struct {
	state *ChatState
	id    string
	push  func()
}

func (s *messageSurface) Replace(rendered string) {
	s.state.UpdateStreaming(s.id, rendered)
}

// ScrollToLatest publishes the state; the UI follows the tail of the
// transcript on every update.
func (s *messageSurface) ScrollToLatest() {
	s.push()
}
