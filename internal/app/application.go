package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/Rorical/RoriKB/internal/api"
	"github.com/Rorical/RoriKB/internal/config"
	"github.com/Rorical/RoriKB/internal/core"
	"github.com/Rorical/RoriKB/internal/dispatcher"
	"github.com/Rorical/RoriKB/internal/eventbus"
	"github.com/Rorical/RoriKB/internal/markdown"
	"github.com/Rorical/RoriKB/internal/models"
	"github.com/Rorical/RoriKB/ui/styles"
)

const inputPlaceholder = "Ask a question... (Enter to send, Alt+Enter for newline, /help for commands)"

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *zap.Logger
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	service    *core.ChatService
	model      *AppModel
}

// NewBackend builds the backend the profile points at.
func NewBackend(profile config.Profile, logger *zap.Logger) (api.Backend, error) {
	switch profile.Kind {
	case config.KindOpenAI:
		return api.NewOpenAI(profile.APIKey, profile.BaseURL, profile.Model, logger), nil
	case config.KindRAG, "":
		return api.NewClient(profile.BaseURL,
			api.WithTimeout(profile.Timeout()),
			api.WithLogger(logger))
	}
	return nil, fmt.Errorf("unknown profile kind %q", profile.Kind)
}

func NewApplication(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	profile := cfg.Current()

	// An invalid profile still opens the UI; the banner explains what to fix.
	var backend api.Backend
	if err := cfg.Validate(); err != nil {
		logger.Warn("profile is not usable", zap.String("profile", cfg.ActiveProfile), zap.Error(err))
	} else {
		b, err := NewBackend(profile, logger)
		if err != nil {
			logger.Warn("failed to create backend", zap.String("profile", cfg.ActiveProfile), zap.Error(err))
		} else {
			backend = b
		}
	}

	md, err := markdown.ForTerminal(profile.Style, profile.WordWrap)
	if err != nil {
		logger.Warn("falling back to plain Markdown rendering", zap.Error(err))
	}

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Warn("event bus error", zap.String("operation", e.Operation), zap.Error(e.Err))
	})

	disp := dispatcher.NewEventDispatcher(eb)

	chatService := core.NewChatService(cfg, backend, md, eb, core.WithLogger(logger))

	model := &AppModel{
		appModel:   createInitialAppModel(chatService),
		dispatcher: disp,
		input:      newInput(),
		viewport:   viewport.New(80, 20),
		spinner:    newSpinner(),
	}

	return &Application{
		config:     cfg,
		logger:     logger,
		eventBus:   eb,
		dispatcher: disp,
		service:    chatService,
		model:      model,
	}, nil
}

func (app *Application) Start() error {
	app.service.Start()
	app.logger.Info("session started",
		zap.String("profile", app.config.ActiveProfile),
		zap.Bool("ready", app.service.IsReady()))

	p := tea.NewProgram(app.model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()

	return err
}

func (app *Application) Stop() {
	app.dispatcher.Stop()
	app.service.Stop()
	app.eventBus.Close()
	app.logger.Info("session ended")
}

func createInitialAppModel(chatService *core.ChatService) models.AppModel {
	// Messages come from core as single source of truth
	return models.AppModel{
		Banner:           chatService.WelcomeLines(),
		Messages:         make([]models.Message, 0),
		Status:           "Ready",
		ChatServiceReady: chatService.IsReady(),
	}
}

func newInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = inputPlaceholder
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()
	return ta
}

func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle()
	return sp
}
