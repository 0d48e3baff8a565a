package app

// KeyBinding represents a key binding with its description and handler
type KeyBinding struct {
	Key         rune
	Description string
	Handler     func(*App)
}

// GetKey returns the key of this keybinding
func (kb *KeyBinding) GetKey() rune {
	return kb.Key
}

// GetDescription returns the description of this keybinding
func (kb *KeyBinding) GetDescription() string {
	return kb.Description
}

// initKeybindings sets up all the key bindings
func (a *App) initKeybindings() []KeyBinding {
	return []KeyBinding{
		{
			Key:         'j',
			Description: "Move caret down",
			Handler: func(app *App) {
				app.moveCaret(1)
			},
		},
		{
			Key:         'k',
			Description: "Move caret up",
			Handler: func(app *App) {
				app.moveCaret(-1)
			},
		},
		{
			Key:         'c',
			Description: "Compare the two files",
			Handler: func(app *App) {
				app.compareFiles(false, false)
			},
		},
		{
			Key:         'C',
			Description: "Compare selected lines only",
			Handler: func(app *App) {
				app.compareFiles(true, false)
			},
		},
		{
			Key:         'f',
			Description: "Find lines unique to each file",
			Handler: func(app *App) {
				app.compareFiles(false, true)
			},
		},
		{
			Key:         'F',
			Description: "Find unique lines within selections",
			Handler: func(app *App) {
				app.compareFiles(true, true)
			},
		},
		{
			Key:         'x',
			Description: "Clear the comparison",
			Handler: func(app *App) {
				app.clearComparison()
			},
		},
		{
			Key:         'n',
			Description: "Next difference",
			Handler: func(app *App) {
				app.navigate("next")
			},
		},
		{
			Key:         'N',
			Description: "Previous difference",
			Handler: func(app *App) {
				app.navigate("prev")
			},
		},
		{
			Key:         'g',
			Description: "First difference",
			Handler: func(app *App) {
				app.navigate("first")
			},
		},
		{
			Key:         'G',
			Description: "Last difference",
			Handler: func(app *App) {
				app.navigate("last")
			},
		},
		{
			Key:         'i',
			Description: "Edit the current line",
			Handler: func(app *App) {
				app.editLine()
			},
		},
		{
			Key:         'o',
			Description: "Insert a line below and edit it",
			Handler: func(app *App) {
				app.insertLine(false)
			},
		},
		{
			Key:         'O',
			Description: "Insert a line above and edit it",
			Handler: func(app *App) {
				app.insertLine(true)
			},
		},
		{
			Key:         'D',
			Description: "Delete current line or selection",
			Handler: func(app *App) {
				app.deleteLines()
			},
		},
		{
			Key:         'u',
			Description: "Undo",
			Handler: func(app *App) {
				app.undo()
			},
		},
		{
			Key:         'v',
			Description: "Start or stop a line selection",
			Handler: func(app *App) {
				app.toggleSelect()
			},
		},
		{
			Key:         'b',
			Description: "Select the diff block at the caret",
			Handler: func(app *App) {
				app.selectDiffBlock()
			},
		},
		{
			Key:         'E',
			Description: "Copy the counterpart block over this one",
			Handler: func(app *App) {
				app.equalizeBlock()
			},
		},
		{
			Key:         'w',
			Description: "Save the focused file",
			Handler: func(app *App) {
				app.save(app.focused)
			},
		},
		{
			Key:         'e',
			Description: "Open the focused file in $EDITOR",
			Handler: func(app *App) {
				app.externalEdit()
			},
		},
		{
			Key:         'r',
			Description: "Reload the focused file from disk",
			Handler: func(app *App) {
				app.reload(false)
			},
		},
		{
			Key:         '/',
			Description: "Search within difference lines",
			Handler: func(app *App) {
				app.startSearch()
			},
		},
		{
			Key:         'm',
			Description: "Next search match",
			Handler: func(app *App) {
				app.searchNext()
			},
		},
		{
			Key:         'M',
			Description: "Previous search match",
			Handler: func(app *App) {
				app.searchPrev()
			},
		},
		{
			Key:         ':',
			Description: "Command mode",
			Handler: func(app *App) {
				app.command.Start()
			},
		},
		{
			Key:         '?',
			Description: "Toggle help",
			Handler: func(app *App) {
				app.toggleHelp()
			},
		},
		{
			Key:         'q',
			Description: "Quit",
			Handler: func(app *App) {
				app.requestQuit()
			},
		},
	}
}

// keybindingFor returns the keybinding for a given key
func (a *App) keybindingFor(key rune) *KeyBinding {
	for i := range a.keybindings {
		if a.keybindings[i].Key == key {
			return &a.keybindings[i]
		}
	}
	return nil
}
