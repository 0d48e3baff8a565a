package theme

import (
	"github.com/gdamore/tcell/v2"
)

// Colors holds all the color definitions for the theme
type Colors struct {
	// Base colors
	Background tcell.Color
	Text       tcell.Color

	// Gutter (line numbers and marker glyphs)
	GutterText tcell.Color
	GutterBg   tcell.Color

	// Difference marker classes
	AddedText   tcell.Color
	AddedBg     tcell.Color
	RemovedText tcell.Color
	RemovedBg   tcell.Color
	ChangedText tcell.Color
	ChangedBg   tcell.Color
	MovedText   tcell.Color
	MovedBg     tcell.Color

	// Blank padding rows keeping the two views aligned
	BlankText tcell.Color
	BlankBg   tcell.Color

	// Intra-line changed ranges inside changed line pairs
	HighlightText tcell.Color
	HighlightBg   tcell.Color

	// Selection, caret line and transient navigation marks
	SelectionText tcell.Color
	SelectionBg   tcell.Color
	TempRangeBg   tcell.Color
	ArrowText     tcell.Color
	CaretLineBg   tcell.Color

	// Status line colors
	StatusText tcell.Color
	StatusBg   tcell.Color
	StatusWarn tcell.Color

	// Header colors
	HeaderText tcell.Color
	HeaderBg   tcell.Color

	// Search bar colors
	SearchLabel    tcell.Color
	SearchText     tcell.Color
	SearchCursor   tcell.Color
	SearchCursorBg tcell.Color
	SearchCount    tcell.Color

	// Command line colors
	CommandPrompt   tcell.Color
	CommandText     tcell.Color
	CommandCursor   tcell.Color
	CommandCursorBg tcell.Color

	// Help overlay colors
	HelpBackground tcell.Color
	HelpBorder     tcell.Color
	HelpTitle      tcell.Color
	HelpContent    tcell.Color

	// Inline line editor colors
	EditorText     tcell.Color
	EditorCursor   tcell.Color
	EditorCursorBg tcell.Color
}

// Theme represents a complete color theme
type Theme struct {
	Name   string
	Colors Colors
}

// Default returns a theme built on terminal defaults: only the marker
// classes get basic ANSI colors so differences stay visible anywhere.
func Default() *Theme {
	return &Theme{
		Name: "default",
		Colors: Colors{
			Background:      tcell.ColorDefault,
			Text:            tcell.ColorDefault,
			GutterText:      tcell.ColorGray,
			GutterBg:        tcell.ColorDefault,
			AddedText:       tcell.ColorGreen,
			AddedBg:         tcell.ColorDefault,
			RemovedText:     tcell.ColorRed,
			RemovedBg:       tcell.ColorDefault,
			ChangedText:     tcell.ColorYellow,
			ChangedBg:       tcell.ColorDefault,
			MovedText:       tcell.ColorBlue,
			MovedBg:         tcell.ColorDefault,
			BlankText:       tcell.ColorGray,
			BlankBg:         tcell.ColorDefault,
			HighlightText:   tcell.ColorBlack,
			HighlightBg:     tcell.ColorYellow,
			SelectionText:   tcell.ColorDefault,
			SelectionBg:     tcell.ColorDarkSlateGray,
			TempRangeBg:     tcell.ColorDarkSlateGray,
			ArrowText:       tcell.ColorAqua,
			CaretLineBg:     tcell.ColorDefault,
			StatusText:      tcell.ColorDefault,
			StatusBg:        tcell.ColorDefault,
			StatusWarn:      tcell.ColorRed,
			HeaderText:      tcell.ColorDefault,
			HeaderBg:        tcell.ColorDefault,
			SearchLabel:     tcell.ColorDefault,
			SearchText:      tcell.ColorDefault,
			SearchCursor:    tcell.ColorDefault,
			SearchCursorBg:  tcell.ColorGray,
			SearchCount:     tcell.ColorGreen,
			CommandPrompt:   tcell.ColorDefault,
			CommandText:     tcell.ColorDefault,
			CommandCursor:   tcell.ColorDefault,
			CommandCursorBg: tcell.ColorGray,
			HelpBackground:  tcell.ColorDefault,
			HelpBorder:      tcell.ColorDefault,
			HelpTitle:       tcell.ColorDefault,
			HelpContent:     tcell.ColorDefault,
			EditorText:      tcell.ColorDefault,
			EditorCursor:    tcell.ColorDefault,
			EditorCursorBg:  tcell.ColorGray,
		},
	}
}

// Classic returns a light theme using the pastel marker palette long
// associated with side-by-side file comparison.
func Classic() *Theme {
	background := HexToColor("#ffffff")
	selection := HexToColor("#b5d5ff")

	return &Theme{
		Name: "classic",
		Colors: Colors{
			Background:      background,
			Text:            HexToColor("#1e1e1e"), // Near black
			GutterText:      HexToColor("#707070"), // Medium gray
			GutterBg:        HexToColor("#e4e4e4"), // Light gray
			AddedText:       HexToColor("#003c00"), // Dark green
			AddedBg:         HexToColor("#c6ffc6"), // Pale green
			RemovedText:     HexToColor("#3c0000"), // Dark red
			RemovedBg:       HexToColor("#ffc6c6"), // Pale red
			ChangedText:     HexToColor("#3c3c00"), // Dark yellow
			ChangedBg:       HexToColor("#e7e798"), // Pale yellow
			MovedText:       HexToColor("#00143c"), // Dark blue
			MovedBg:         HexToColor("#cce6ff"), // Pale blue
			BlankText:       HexToColor("#909090"), // Filler gray
			BlankBg:         HexToColor("#e4e4e4"), // Light gray
			HighlightText:   HexToColor("#ffffff"), // White
			HighlightBg:     HexToColor("#ff8306"), // Orange
			SelectionText:   HexToColor("#1e1e1e"), // Near black
			SelectionBg:     selection,             // Pale selection blue
			TempRangeBg:     HexToColor("#ffd080"), // Pale orange
			ArrowText:       HexToColor("#0000c0"), // Strong blue
			CaretLineBg:     Blend(background, selection, 0.35),
			StatusText:      HexToColor("#1e1e1e"), // Near black
			StatusBg:        HexToColor("#d0d0d0"), // Gray
			StatusWarn:      HexToColor("#c00000"), // Warning red
			HeaderText:      HexToColor("#1e1e1e"), // Near black
			HeaderBg:        HexToColor("#c8c8c8"), // Gray
			SearchLabel:     HexToColor("#8700af"), // Magenta
			SearchText:      HexToColor("#1e1e1e"), // Near black
			SearchCursor:    HexToColor("#ffffff"), // White
			SearchCursorBg:  HexToColor("#0000c0"), // Strong blue
			SearchCount:     HexToColor("#008000"), // Green
			CommandPrompt:   HexToColor("#8700af"), // Magenta
			CommandText:     HexToColor("#1e1e1e"), // Near black
			CommandCursor:   HexToColor("#ffffff"), // White
			CommandCursorBg: HexToColor("#0000c0"), // Strong blue
			HelpBackground:  HexToColor("#f0f0f0"), // Very light gray
			HelpBorder:      HexToColor("#707070"), // Medium gray
			HelpTitle:       HexToColor("#8700af"), // Magenta
			HelpContent:     HexToColor("#1e1e1e"), // Near black
			EditorText:      HexToColor("#1e1e1e"), // Near black
			EditorCursor:    HexToColor("#ffffff"), // White
			EditorCursorBg:  HexToColor("#0000c0"), // Strong blue
		},
	}
}

// Dusk returns a dark theme with muted marker backgrounds.
func Dusk() *Theme {
	background := HexToColor("#1a1b26")
	selection := HexToColor("#283457")

	return &Theme{
		Name: "dusk",
		Colors: Colors{
			Background:      background,
			Text:            HexToColor("#c0caf5"), // Light gray-blue
			GutterText:      HexToColor("#565f89"), // Comment gray
			GutterBg:        HexToColor("#16161e"), // Darker background
			AddedText:       HexToColor("#9ece6a"), // Green
			AddedBg:         HexToColor("#1e3a2a"), // Dark green
			RemovedText:     HexToColor("#f7768e"), // Red
			RemovedBg:       HexToColor("#3b1e2a"), // Dark red
			ChangedText:     HexToColor("#e0af68"), // Yellow
			ChangedBg:       HexToColor("#3b331e"), // Dark yellow
			MovedText:       HexToColor("#7aa2f7"), // Blue
			MovedBg:         HexToColor("#1e2a3b"), // Dark blue
			BlankText:       HexToColor("#565f89"), // Comment gray
			BlankBg:         Blend(background, HexToColor("#000000"), 0.35),
			HighlightText:   HexToColor("#1a1b26"), // Inverted dark
			HighlightBg:     HexToColor("#e0af68"), // Yellow
			SelectionText:   HexToColor("#c0caf5"), // Light gray-blue
			SelectionBg:     selection,             // Muted blue
			TempRangeBg:     HexToColor("#3d59a1"), // Stronger blue
			ArrowText:       HexToColor("#7dcfff"), // Cyan
			CaretLineBg:     Blend(background, selection, 0.5),
			StatusText:      HexToColor("#c0caf5"), // Light gray-blue
			StatusBg:        HexToColor("#16161e"), // Darker background
			StatusWarn:      HexToColor("#f7768e"), // Red
			HeaderText:      HexToColor("#bb9af7"), // Magenta
			HeaderBg:        HexToColor("#16161e"), // Darker background
			SearchLabel:     HexToColor("#bb9af7"), // Magenta
			SearchText:      HexToColor("#c0caf5"), // Light gray-blue
			SearchCursor:    HexToColor("#1a1b26"), // Dark
			SearchCursorBg:  HexToColor("#7aa2f7"), // Blue
			SearchCount:     HexToColor("#9ece6a"), // Green
			CommandPrompt:   HexToColor("#bb9af7"), // Magenta
			CommandText:     HexToColor("#c0caf5"), // Light gray-blue
			CommandCursor:   HexToColor("#1a1b26"), // Dark
			CommandCursorBg: HexToColor("#7aa2f7"), // Blue
			HelpBackground:  HexToColor("#16161e"), // Darker background
			HelpBorder:      HexToColor("#7dcfff"), // Cyan
			HelpTitle:       HexToColor("#bb9af7"), // Magenta
			HelpContent:     HexToColor("#c0caf5"), // Light gray-blue
			EditorText:      HexToColor("#c0caf5"), // Light gray-blue
			EditorCursor:    HexToColor("#1a1b26"), // Dark
			EditorCursorBg:  HexToColor("#7aa2f7"), // Blue
		},
	}
}
