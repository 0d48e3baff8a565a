package app

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JehleM/compare-plugin/internal/export"
	"github.com/JehleM/compare-plugin/internal/session"
	"github.com/JehleM/compare-plugin/internal/textview"
	"github.com/JehleM/compare-plugin/internal/theme"
)

// parseCommand splits a command string into fields. Double quotes group a
// field and allow \" and \\ escapes inside, single quotes group literally.
func parseCommand(input string) []string {
	var parts []string
	var current strings.Builder
	inField := false

	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			if inField {
				parts = append(parts, current.String())
				current.Reset()
				inField = false
			}
			i++

		case c == '"':
			inField = true
			i++
			for i < len(input) && input[i] != '"' {
				if input[i] == '\\' && i+1 < len(input) && (input[i+1] == '"' || input[i+1] == '\\') {
					current.WriteByte(input[i+1])
					i += 2
					continue
				}
				current.WriteByte(input[i])
				i++
			}
			if i < len(input) {
				i++
			}

		case c == '\'':
			inField = true
			i++
			for i < len(input) && input[i] != '\'' {
				current.WriteByte(input[i])
				i++
			}
			if i < len(input) {
				i++
			}

		default:
			inField = true
			current.WriteByte(c)
			i++
		}
	}

	if inField {
		parts = append(parts, current.String())
	}
	return parts
}

// handleCommand handles a command entered in command mode
func (a *App) handleCommand(cmd string) {
	if cmd == "" {
		return
	}
	parts := parseCommand(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "q", "quit":
		a.requestQuit()
	case "q!", "quit!":
		a.quit = true
	case "w", "write":
		a.save(a.focused)
	case "wa":
		a.saveAll()
	case "wq":
		if a.saveAll() {
			a.quit = true
		}

	case "compare":
		a.compareFiles(false, false)
	case "recompare":
		a.recompareCurrent()
	case "unique":
		a.compareFiles(false, true)
	case "clear":
		a.clearComparison()

	case "next":
		a.navigate("next")
	case "prev":
		a.navigate("prev")
	case "first":
		a.navigate("first")
	case "last":
		a.navigate("last")

	case "setfirst":
		a.markFirstFocused()
	case "swap":
		a.swapSides()
	case "saved":
		a.compareToLastSave()

	case "reload":
		a.reload(false)
	case "reload!":
		a.reload(true)
	case "edit":
		a.externalEdit()

	case "set":
		if len(parts) < 2 {
			a.SetStatus("Usage: set <name> [value]")
			return
		}
		a.changeSetting(parts[1], strings.Join(parts[2:], " "))
	case "toggle":
		if len(parts) < 2 {
			a.SetStatus("Usage: toggle <name>")
			return
		}
		a.changeSetting(parts[1], "")
	case "saveconfig":
		a.saveConfig()
	case "theme":
		if len(parts) < 2 {
			a.SetStatus("Theme: " + a.screen.Theme.Name)
			return
		}
		a.changeTheme(parts[1])

	case "export":
		if len(parts) < 2 {
			a.SetStatus("Usage: export <path>")
			return
		}
		a.exportReport(parts[1])

	case "messages":
		a.overlay.Show("Messages", a.messages.Lines())
	case "help":
		a.toggleHelp()
	case "debug":
		a.debugMode = !a.debugMode
		if a.debugMode {
			a.SetStatus("Debug mode enabled")
		} else {
			a.SetStatus("Debug mode disabled")
		}

	default:
		a.SetStatus("Unknown command: " + parts[0])
	}
}

// settingNames lists everything :set and :toggle accept, for the help text.
var settingNames = []string{
	"ignore_spaces", "ignore_all_spaces", "ignore_case", "ignore_empty_lines",
	"ignore_regex", "detect_moves", "char_precision",
	"recompare_on_change", "goto_first_diff", "wrap_around", "following_caret",
	"show_only_diffs", "show_only_selections", "status_type", "editor",
}

func (a *App) changeSetting(name, value string) {
	msg, err := a.applySetting(name, value)
	if err != nil {
		a.SetStatus(err.Error())
		return
	}
	a.SetStatus(msg)
}

// applySetting updates one live setting. An empty value toggles booleans.
// Settings feeding the comparison itself mark the results stale, which
// triggers a recompare when recompare_on_change is on.
func (a *App) applySetting(name, value string) (string, error) {
	settings := a.manager.Settings()

	boolSetting := func(target *bool, after func()) (string, error) {
		v, err := parseToggle(value, *target)
		if err != nil {
			return "", err
		}
		*target = v
		if after != nil {
			after()
		}
		return name + " " + onOff(v), nil
	}

	switch name {
	case "ignore_spaces":
		return boolSetting(&settings.Engine.IgnoreSpaces, a.markSessionsStale)
	case "ignore_all_spaces":
		return boolSetting(&settings.Engine.IgnoreAllSpaces, a.markSessionsStale)
	case "ignore_case":
		return boolSetting(&settings.Engine.IgnoreCase, a.markSessionsStale)
	case "ignore_empty_lines":
		return boolSetting(&settings.Engine.IgnoreEmptyLines, a.markSessionsStale)
	case "detect_moves":
		return boolSetting(&settings.Engine.DetectMoves, a.markSessionsStale)
	case "char_precision":
		return boolSetting(&settings.Engine.CharPrecision, a.markSessionsStale)

	case "ignore_regex":
		if value == "" || value == "off" {
			settings.Engine.IgnoreRegex = nil
			a.markSessionsStale()
			return "ignore_regex off", nil
		}
		re, err := regexp.Compile(value)
		if err != nil {
			return "", fmt.Errorf("bad pattern: %v", err)
		}
		settings.Engine.IgnoreRegex = re
		a.markSessionsStale()
		return "ignore_regex " + value, nil

	case "recompare_on_change":
		return boolSetting(&settings.RecompareOnChange, func() {
			if !settings.RecompareOnChange {
				return
			}
			for _, sess := range a.manager.Sessions() {
				sess.OnAutoRecompareEnabled()
			}
		})
	case "goto_first_diff":
		return boolSetting(&settings.GotoFirstDiff, nil)
	case "wrap_around":
		return boolSetting(&settings.WrapAround, nil)
	case "following_caret":
		return boolSetting(&settings.FollowingCaret, nil)

	case "show_only_diffs":
		return boolSetting(&settings.ShowOnlyDiffs, a.realignSessions)
	case "show_only_selections":
		return boolSetting(&settings.ShowOnlySelections, a.realignSessions)

	case "status_type":
		switch value {
		case "summary":
			settings.StatusType = session.StatusSummary
		case "options":
			settings.StatusType = session.StatusOptions
		default:
			return "", fmt.Errorf("status_type wants summary or options, got %q", value)
		}
		return "status_type " + value, nil

	case "editor":
		a.config.Set("editor", value)
		return "editor " + value, nil
	}

	return "", fmt.Errorf("unknown setting: %s", name)
}

func parseToggle(value string, current bool) (bool, error) {
	switch strings.ToLower(value) {
	case "":
		return !current, nil
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid value %q, use on or off", value)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func (a *App) markSessionsStale() {
	for _, sess := range a.manager.Sessions() {
		sess.MarkStale()
	}
}

func (a *App) realignSessions() {
	for _, sess := range a.manager.Sessions() {
		sess.RealignAll()
	}
}

func (a *App) saveAll() bool {
	ok := true
	for side := textview.Main; side <= textview.Sub; side++ {
		if a.modified[side] && !a.save(side) {
			ok = false
		}
	}
	return ok
}

// saveConfig writes the live settings back into the persisted config file.
func (a *App) saveConfig() {
	s := a.manager.Settings()
	c := &a.config.Compare

	c.IgnoreSpaces = s.Engine.IgnoreSpaces
	c.IgnoreAllSpaces = s.Engine.IgnoreAllSpaces
	c.IgnoreCase = s.Engine.IgnoreCase
	c.IgnoreEmptyLines = s.Engine.IgnoreEmptyLines
	c.DetectMoves = s.Engine.DetectMoves
	c.CharPrecision = s.Engine.CharPrecision
	if s.Engine.IgnoreRegex != nil {
		c.IgnoreRegex = s.Engine.IgnoreRegex.String()
	} else {
		c.IgnoreRegex = ""
	}
	c.RecompareOnChange = s.RecompareOnChange
	c.GotoFirstDiff = s.GotoFirstDiff
	c.WrapAround = s.WrapAround
	c.FollowingCaret = s.FollowingCaret
	c.ShowOnlyDiffs = s.ShowOnlyDiffs

	if err := a.config.Save(); err != nil {
		a.SetStatus("Failed to save config: " + err.Error())
		return
	}
	a.SetStatus("Configuration saved")
}

func (a *App) changeTheme(name string) {
	a.screen.Theme = theme.LoadThemeOrDefault(name)
	a.config.Theme = a.screen.Theme.Name
	a.SetStatus("Theme: " + a.screen.Theme.Name)
}

func (a *App) exportReport(path string) {
	sess := a.session()
	if sess == nil || sess.Summary() == nil {
		a.SetStatus("Nothing to export, compare first")
		return
	}

	rep := &export.Report{
		MainName: a.stores[textview.Main].Path,
		SubName:  a.stores[textview.Sub].Path,
		MainText: a.bufs[textview.Main].Text(),
		SubText:  a.bufs[textview.Sub].Text(),
		Summary:  sess.Summary(),
	}
	if err := export.WriteReportFile(path, rep); err != nil {
		a.SetStatus("Export failed: " + err.Error())
		return
	}

	a.SetStatus("Exported " + path)
	a.messages.AddMessage("Exported comparison report to " + path)
}

func (a *App) toggleHelp() {
	if a.overlay.IsVisible() {
		a.overlay.Hide()
		return
	}
	a.overlay.Show("Help", a.helpLines())
}

func (a *App) helpLines() []string {
	lines := []string{
		"Movement",
		"  Tab        switch pane",
		"  j/k        move caret",
		"  PgUp/PgDn  move a page",
		"  Home/End   first/last line",
		"",
		"Keys",
	}

	for _, kb := range a.keybindings {
		lines = append(lines, fmt.Sprintf("  %c          %s", kb.Key, kb.Description))
	}

	lines = append(lines,
		"",
		"Commands",
		"  :w :wa :wq :q :q!          save and quit",
		"  :compare :unique :clear    run or drop a comparison",
		"  :next :prev :first :last   jump between differences",
		"  :set <name> [value]        change a setting",
		"  :toggle <name>             flip a boolean setting",
		"  :saveconfig                persist the settings",
		"  :theme <name>              switch color theme",
		"  :saved                     compare against the last save",
		"  :swap :setfirst            rearrange the panes",
		"  :reload :reload! :edit     file operations",
		"  :export <path>             write a comparison report",
		"  :messages :help :debug     this and that",
		"",
		"Settings",
	)

	for i := 0; i < len(settingNames); i += 3 {
		end := i + 3
		if end > len(settingNames) {
			end = len(settingNames)
		}
		lines = append(lines, "  "+strings.Join(settingNames[i:end], ", "))
	}

	return lines
}
