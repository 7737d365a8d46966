package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"keyterm-chat-client/keyterms"
	"keyterm-chat-client/utils"
)

// relevanceOptions are the suggested labels; the backend accepts any text
var relevanceOptions = []string{"High", "Medium", "Low"}

// KeyTermPanel manages the key-term side panel: the term list, the add
// form, the edit dialog and the delete confirmation.
type KeyTermPanel struct {
	app   *App
	store *keyterms.Store

	termsContainer  *fyne.Container
	termEntry       *widget.Entry
	definitionEntry *widget.Entry
	relevanceSelect *widget.Select
	addButton       *widget.Button
}

// NewKeyTermPanel creates the panel for the given store
func NewKeyTermPanel(app *App, store *keyterms.Store) *KeyTermPanel {
	return &KeyTermPanel{
		app:   app,
		store: store,
	}
}

// Build builds the panel UI
func (p *KeyTermPanel) Build() fyne.CanvasObject {
	header := widget.NewLabel("Key Terms")
	header.TextStyle = fyne.TextStyle{Bold: true}

	p.termsContainer = container.NewVBox()
	termsScroll := container.NewScroll(p.termsContainer)
	termsScroll.SetMinSize(fyne.NewSize(280, 300))

	p.termEntry = widget.NewEntry()
	p.termEntry.SetPlaceHolder("Term")

	p.definitionEntry = widget.NewEntry()
	p.definitionEntry.SetPlaceHolder("Definition")

	p.relevanceSelect = widget.NewSelect(relevanceOptions, nil)
	p.relevanceSelect.PlaceHolder = "Relevance (default Low)"

	p.addButton = widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), func() {
		p.addTerm()
	})

	addForm := container.NewVBox(
		widget.NewSeparator(),
		p.termEntry,
		p.definitionEntry,
		p.relevanceSelect,
		p.addButton,
	)

	p.Refresh()

	return container.NewBorder(
		header,
		addForm,
		nil,
		nil,
		termsScroll,
	)
}

// Refresh repaints the term list from the store snapshot. Must run on
// the UI thread.
func (p *KeyTermPanel) Refresh() {
	names := p.store.TermNames()

	objects := make([]fyne.CanvasObject, 0, len(names))
	if len(names) == 0 {
		emptyLabel := widget.NewLabel("No key terms yet")
		emptyLabel.TextStyle = fyne.TextStyle{Italic: true}
		objects = append(objects, emptyLabel)
	}
	for _, name := range names {
		objects = append(objects, p.buildTermCard(name))
	}

	p.termsContainer.Objects = objects
	p.termsContainer.Refresh()
}

// buildTermCard renders one key term with edit and delete controls
func (p *KeyTermPanel) buildTermCard(name string) fyne.CanvasObject {
	kt, ok := p.store.Get(name)
	if !ok {
		return widget.NewLabel(name)
	}

	nameLabel := widget.NewLabel(name)
	nameLabel.TextStyle = fyne.TextStyle{Bold: true}

	definitionLabel := widget.NewLabel(kt.Definition)
	definitionLabel.Wrapping = fyne.TextWrapWord

	relevanceLabel := widget.NewLabel("Relevance: " + kt.Relevance)
	relevanceLabel.TextStyle = fyne.TextStyle{Italic: true}

	editButton := widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), func() {
		p.showEditDialog(name)
	})
	editButton.Importance = widget.LowImportance

	deleteButton := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		p.showDeleteConfirmation(name)
	})
	deleteButton.Importance = widget.LowImportance

	return container.NewVBox(
		container.NewBorder(nil, nil, nameLabel, container.NewHBox(editButton, deleteButton)),
		definitionLabel,
		relevanceLabel,
		widget.NewSeparator(),
	)
}

// addTerm submits the add form. The form is cleared only on success.
func (p *KeyTermPanel) addTerm() {
	term := p.termEntry.Text
	definition := p.definitionEntry.Text
	relevance := p.relevanceSelect.Selected

	p.addButton.Disable()
	utils.SafeGo(p.app.logger, "add key term", func() {
		err := p.store.Add(context.Background(), term, definition, relevance)
		fyne.Do(func() {
			p.addButton.Enable()
			if err == nil {
				p.termEntry.SetText("")
				p.definitionEntry.SetText("")
				p.relevanceSelect.ClearSelected()
			}
			p.Refresh()
		})
	})
}

// showEditDialog opens the edit dialog; it closes only on success
func (p *KeyTermPanel) showEditDialog(name string) {
	kt, ok := p.store.Get(name)
	if !ok {
		return
	}

	definitionEntry := widget.NewEntry()
	definitionEntry.MultiLine = true
	definitionEntry.Wrapping = fyne.TextWrapWord
	definitionEntry.SetText(kt.Definition)

	relevanceSelect := widget.NewSelect(relevanceOptions, nil)
	relevanceSelect.SetSelected(kt.Relevance)

	var popup *widget.PopUp

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", func() {
		popup.Hide()
	})

	saveButton.OnTapped = func() {
		saveButton.Disable()
		utils.SafeGo(p.app.logger, "edit key term", func() {
			err := p.store.Edit(context.Background(), name, definitionEntry.Text, relevanceSelect.Selected)
			fyne.Do(func() {
				saveButton.Enable()
				p.Refresh()
				if err == nil {
					popup.Hide()
				}
			})
		})
	}

	title := widget.NewLabel("Edit \"" + name + "\"")
	title.TextStyle = fyne.TextStyle{Bold: true}

	popup = widget.NewModalPopUp(
		container.NewVBox(
			title,
			definitionEntry,
			relevanceSelect,
			container.NewHBox(cancelButton, saveButton),
		),
		p.app.window.Canvas(),
	)
	popup.Resize(fyne.NewSize(380, popup.MinSize().Height))
	popup.Show()
}

// showDeleteConfirmation stages the removal and asks the user to confirm.
// No delete request is issued until the confirmation.
func (p *KeyTermPanel) showDeleteConfirmation(name string) {
	p.store.RequestRemoval(name)

	var popup *widget.PopUp

	cancelButton := widget.NewButton("Cancel", func() {
		p.store.CancelRemoval()
		popup.Hide()
	})

	deleteButton := widget.NewButton("Delete", func() {
		popup.Hide()
		utils.SafeGo(p.app.logger, "delete key term", func() {
			p.store.ConfirmRemoval(context.Background())
			fyne.Do(func() {
				p.Refresh()
			})
		})
	})
	deleteButton.Importance = widget.DangerImportance

	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel("Delete key term \""+name+"\"?"),
			container.NewHBox(cancelButton, deleteButton),
		),
		p.app.window.Canvas(),
	)
	popup.Show()
}
