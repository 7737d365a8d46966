package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"keyterm-chat-client/api"
	"keyterm-chat-client/chat"
	"keyterm-chat-client/db"
	"keyterm-chat-client/keyterms"
	"keyterm-chat-client/utils"
)

// App represents the main application
type App struct {
	fyneApp    fyne.App
	window     fyne.Window
	config     *utils.Config
	configPath string
	db         *db.DB
	logger     *utils.Logger

	session  *chat.Session
	store    *keyterms.Store
	snackbar *Snackbar

	chatView  *ChatView
	termPanel *KeyTermPanel
	split     *container.Split

	panelVisible bool
}

// NewApp creates a new application instance
func NewApp(config *utils.Config, configPath string, database *db.DB, client api.Assistant, logger *utils.Logger) *App {
	fyneApp := app.NewWithID("keyterm-chat-client")
	window := fyneApp.NewWindow("Key-Term Chat")

	window.Resize(fyne.NewSize(
		float32(config.UI.WindowWidth),
		float32(config.UI.WindowHeight),
	))

	application := &App{
		fyneApp:      fyneApp,
		window:       window,
		config:       config,
		configPath:   configPath,
		db:           database,
		logger:       logger,
		panelVisible: true,
	}

	application.snackbar = NewSnackbar(window, logger)
	application.session = chat.NewSession(client, database, logger)
	application.store = keyterms.NewStore(client, application.snackbar, logger)

	// Save window size when closing
	window.SetOnClosed(func() {
		size := window.Canvas().Size()
		application.config.UI.WindowWidth = int(size.Width)
		application.config.UI.WindowHeight = int(size.Height)
		if err := utils.SaveConfig(application.configPath, application.config); err != nil {
			application.logger.Error("Failed to save window size: %v", err)
		}
	})

	application.applyThemeFromConfig()
	application.buildUI()
	application.restoreHistory()
	application.loadKeyTerms()

	return application
}

// buildUI builds the main UI
func (a *App) buildUI() {
	a.chatView = NewChatView(a, a.session)
	a.termPanel = NewKeyTermPanel(a, a.store)

	// Repaint the thread on every session change
	a.session.OnUpdate = func() {
		fyne.Do(func() {
			a.chatView.Refresh()
		})
	}

	themeButton := widget.NewButtonWithIcon("", theme.ColorPaletteIcon(), func() {
		a.toggleTheme()
	})
	themeButton.Importance = widget.LowImportance

	panelButton := widget.NewButtonWithIcon("", theme.ListIcon(), func() {
		a.togglePanel()
	})
	panelButton.Importance = widget.LowImportance

	clearButton := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		a.confirmClearConversation()
	})
	clearButton.Importance = widget.LowImportance

	title := widget.NewLabel("Key-Term Chat")
	title.TextStyle = fyne.TextStyle{Bold: true}

	topBar := container.NewBorder(
		nil,
		widget.NewSeparator(),
		title,
		container.NewHBox(clearButton, themeButton, panelButton),
	)

	a.split = container.NewHSplit(a.chatView.Build(), a.termPanel.Build())
	a.split.SetOffset(0.72)

	a.window.SetContent(container.NewBorder(
		topBar,
		nil,
		nil,
		nil,
		a.split,
	))
}

// restoreHistory seeds the thread from the local transcript
func (a *App) restoreHistory() {
	messages, err := a.db.ListMessages()
	if err != nil {
		a.logger.Error("Failed to load history: %v", err)
		return
	}

	if len(messages) == 0 {
		return
	}

	seed := make([]chat.Message, 0, len(messages))
	for _, msg := range messages {
		seed = append(seed, chat.Message{
			Sender: chat.Sender(msg.Sender),
			Text:   msg.Text,
		})
	}

	a.session.Conversation().Seed(seed)
	a.chatView.Refresh()
	a.logger.Info("Restored %d messages from history", len(seed))
}

// loadKeyTerms fetches the initial key-term snapshot in the background
func (a *App) loadKeyTerms() {
	utils.SafeGo(a.logger, "initial key-term load", func() {
		if err := a.store.Refresh(context.Background()); err != nil {
			return
		}
		fyne.Do(func() {
			a.termPanel.Refresh()
		})
	})
}

// toggleTheme switches between light and dark and persists the choice
func (a *App) toggleTheme() {
	if a.config.UI.Theme == "dark" {
		a.config.UI.Theme = "light"
	} else {
		a.config.UI.Theme = "dark"
	}

	a.applyThemeFromConfig()

	if err := utils.SaveConfig(a.configPath, a.config); err != nil {
		a.logger.Error("Failed to save theme: %v", err)
	}
}

// togglePanel shows or hides the key-term panel
func (a *App) togglePanel() {
	if a.panelVisible {
		a.split.SetOffset(1.0)
	} else {
		a.split.SetOffset(0.72)
	}
	a.panelVisible = !a.panelVisible
}

// confirmClearConversation asks before wiping the local transcript
func (a *App) confirmClearConversation() {
	var popup *widget.PopUp

	cancelButton := widget.NewButton("Cancel", func() {
		popup.Hide()
	})

	clearButton := widget.NewButton("Clear", func() {
		popup.Hide()
		if !a.session.Reset() {
			a.snackbar.Error("Cannot clear while a reply is pending")
			return
		}
		if err := a.db.ClearHistory(); err != nil {
			a.logger.Error("Failed to clear history: %v", err)
			a.snackbar.Error("Failed to clear history")
			return
		}
		a.logger.Info("Conversation cleared")
		a.chatView.Refresh()
	})
	clearButton.Importance = widget.DangerImportance

	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("Clear the conversation?"),
			widget.NewLabel("The local transcript will be deleted."),
			container.NewHBox(cancelButton, clearButton),
		),
		a.window.Canvas(),
	)
	popup.Show()
}

// applyThemeFromConfig applies the theme from config
func (a *App) applyThemeFromConfig() {
	isDark := a.config.UI.Theme == "dark"
	fontSize := a.config.UI.FontSize
	if fontSize < 10 {
		fontSize = 14
	}

	a.fyneApp.Settings().SetTheme(newCustomTheme(fontSize, isDark))
	a.logger.Info("Applied %s theme with font size %d", a.config.UI.Theme, fontSize)
}

// Run starts the application
func (a *App) Run() {
	a.window.ShowAndRun()
}

// Cleanup performs cleanup before exit
func (a *App) Cleanup() {
	if a.db != nil {
		a.db.Close()
	}
}
