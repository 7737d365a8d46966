package ui

import (
	"context"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"keyterm-chat-client/chat"
	"keyterm-chat-client/utils"
)

// chatEntry extends Entry to send on Ctrl+Enter
type chatEntry struct {
	widget.Entry
	onCtrlEnter func()
}

// TypedShortcut handles keyboard shortcuts
func (e *chatEntry) TypedShortcut(shortcut fyne.Shortcut) {
	if ks, ok := shortcut.(*desktop.CustomShortcut); ok {
		if (ks.KeyName == fyne.KeyReturn || ks.KeyName == fyne.KeyEnter) &&
			ks.Modifier == desktop.ControlModifier {
			if e.onCtrlEnter != nil {
				e.onCtrlEnter()
				return
			}
		}
	}
	e.Entry.TypedShortcut(shortcut)
}

// ChatView renders the conversation thread and the input area
type ChatView struct {
	app     *App
	session *chat.Session

	messagesContainer *fyne.Container
	messagesScroll    *container.Scroll
	inputEntry        *chatEntry
	sendButton        *widget.Button
	attachButton      *widget.Button
	stagedFileRow     *fyne.Container
}

// NewChatView creates the chat view for the given session
func NewChatView(app *App, session *chat.Session) *ChatView {
	return &ChatView{
		app:     app,
		session: session,
	}
}

// Build builds the chat view UI
func (cv *ChatView) Build() fyne.CanvasObject {
	cv.messagesContainer = container.NewVBox()
	cv.messagesScroll = container.NewScroll(cv.messagesContainer)
	cv.messagesScroll.SetMinSize(fyne.NewSize(520, 400))

	cv.inputEntry = &chatEntry{}
	cv.inputEntry.MultiLine = true
	cv.inputEntry.Wrapping = fyne.TextWrapBreak
	cv.inputEntry.SetPlaceHolder("Type a message... (Ctrl+Enter to send)")
	cv.inputEntry.SetMinRowsVisible(3)
	cv.inputEntry.onCtrlEnter = func() {
		cv.send()
	}
	cv.inputEntry.ExtendBaseWidget(cv.inputEntry)

	cv.sendButton = widget.NewButtonWithIcon("Send", theme.MailSendIcon(), func() {
		cv.send()
	})
	cv.sendButton.Importance = widget.HighImportance

	cv.attachButton = widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		cv.showFilePicker()
	})
	cv.attachButton.Importance = widget.LowImportance

	cv.stagedFileRow = container.NewHBox()

	inputRow := container.NewBorder(
		cv.stagedFileRow,
		nil,
		cv.attachButton,
		cv.sendButton,
		cv.inputEntry,
	)

	cv.Refresh()

	return container.NewBorder(
		nil,
		inputRow,
		nil,
		nil,
		cv.messagesScroll,
	)
}

// send forwards the input text and any staged file to the backend.
// Empty input with no staged file is a no-op.
func (cv *ChatView) send() {
	text := cv.inputEntry.Text
	if strings.TrimSpace(text) == "" && cv.session.StagedFile() == nil {
		return
	}
	if cv.session.Awaiting() {
		return
	}

	cv.inputEntry.SetText("")

	// Blocks until the backend answers, so it runs off the UI thread;
	// session.OnUpdate repaints as the thread changes
	utils.SafeGo(cv.app.logger, "send message", func() {
		cv.session.Send(context.Background(), text)
	})
}

// showFilePicker stages a file for the next send
func (cv *ChatView) showFilePicker() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			cv.app.snackbar.Error("Failed to open file")
			cv.app.logger.Error("File picker failed: %v", err)
			return
		}
		if reader == nil {
			return // user cancelled
		}

		filePath := reader.URI().Path()
		reader.Close()

		file, err := utils.StageFile(filePath)
		if err != nil {
			cv.app.logger.Error("Failed to stage file %s: %v", filePath, err)
			cv.app.snackbar.Error(err.Error())
			return
		}

		cv.app.logger.Info("Staged file: %s (%s)", file.Filename, utils.FormatFileSize(int64(len(file.Data))))
		cv.session.AttachFile(file)
	}, cv.app.window)
}

// Refresh repaints the thread, the staged-file chip and the send gating
// from the session state. Must run on the UI thread.
func (cv *ChatView) Refresh() {
	messages := cv.session.Conversation().Messages()
	awaiting := cv.session.Awaiting()

	objects := make([]fyne.CanvasObject, 0, len(messages)+1)
	for _, msg := range messages {
		objects = append(objects, cv.buildMessageRow(msg))
	}
	if awaiting {
		objects = append(objects, cv.buildTypingRow())
	}

	cv.messagesContainer.Objects = objects
	cv.messagesContainer.Refresh()
	cv.messagesScroll.ScrollToBottom()

	if awaiting {
		cv.sendButton.Disable()
	} else {
		cv.sendButton.Enable()
	}

	cv.refreshStagedFileRow()
}

// buildMessageRow renders one thread entry
func (cv *ChatView) buildMessageRow(msg chat.Message) fyne.CanvasObject {
	roleName := "Assistant"
	if msg.Sender == chat.SenderUser {
		roleName = "You"
	}

	roleLabel := widget.NewLabel(roleName)
	roleLabel.TextStyle = fyne.TextStyle{Bold: true}

	textLabel := widget.NewLabel(msg.Text)
	textLabel.Wrapping = fyne.TextWrapWord

	return container.NewVBox(
		roleLabel,
		container.NewPadded(textLabel),
		widget.NewSeparator(),
	)
}

// buildTypingRow renders the in-flight placeholder
func (cv *ChatView) buildTypingRow() fyne.CanvasObject {
	label := widget.NewLabel("Assistant is typing...")
	label.TextStyle = fyne.TextStyle{Italic: true}
	return label
}

// refreshStagedFileRow shows a chip for the staged file, if any
func (cv *ChatView) refreshStagedFileRow() {
	staged := cv.session.StagedFile()
	if staged == nil {
		cv.stagedFileRow.Objects = nil
		cv.stagedFileRow.Refresh()
		return
	}

	fileLabel := widget.NewLabel(staged.Filename + " (" + utils.FormatFileSize(int64(len(staged.Data))) + ")")
	removeButton := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		cv.session.ClearStagedFile()
	})
	removeButton.Importance = widget.LowImportance

	cv.stagedFileRow.Objects = []fyne.CanvasObject{
		widget.NewIcon(theme.FileIcon()),
		fileLabel,
		removeButton,
	}
	cv.stagedFileRow.Refresh()
}
