package app

import (
	"fmt"
	"log"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"github.com/JehleM/compare-plugin/internal/socket"
	"github.com/JehleM/compare-plugin/internal/textview"
)

// handleSocketMessage processes messages received from the Unix socket
func (a *App) handleSocketMessage(msg socket.Message) {
	log.Printf("Received socket message: command=%s, target=%s", msg.Command, msg.Target)

	switch msg.Command {
	case socket.CommandCompare:
		a.compareFiles(false, false)
		a.replySocket(msg, true, a.statusSummary())
	case socket.CommandRecompare:
		a.recompareCurrent()
		a.replySocket(msg, true, a.statusSummary())
	case socket.CommandNext:
		a.navigate("next")
		a.replySocket(msg, true, a.statusSummary())
	case socket.CommandPrev:
		a.navigate("prev")
		a.replySocket(msg, true, a.statusSummary())
	case socket.CommandFirst:
		a.navigate("first")
		a.replySocket(msg, true, a.statusSummary())
	case socket.CommandLast:
		a.navigate("last")
		a.replySocket(msg, true, a.statusSummary())
	case socket.CommandToggle:
		if msg.Target == "" {
			a.replySocket(msg, false, "toggle needs a setting name")
			return
		}
		result, err := a.applySetting(msg.Target, "")
		if err != nil {
			a.replySocket(msg, false, err.Error())
			return
		}
		a.SetStatus(result)
		a.replySocket(msg, true, result)
	case socket.CommandStatus:
		a.replySocket(msg, true, a.statusSummary())
	case socket.CommandDump:
		dump := a.dumpState()
		log.Printf("State dump requested:\n%s", dump)
		a.replySocket(msg, true, dump)
	case socket.CommandQuit:
		a.replySocket(msg, true, "quitting")
		a.quit = true
	default:
		log.Printf("Unknown socket command: %s", msg.Command)
		a.replySocket(msg, false, "unknown command: "+msg.Command)
	}
}

func (a *App) replySocket(msg socket.Message, ok bool, text string) {
	if msg.ResponseChan == nil {
		return
	}
	msg.ResponseChan <- &socket.Response{Success: ok, Message: text}
}

// statusSummary is the one-line state answer for remote status queries.
func (a *App) statusSummary() string {
	sess := a.session()
	if sess == nil {
		return fmt.Sprintf("not compared: %s | %s",
			a.bufs[textview.Main].Name(), a.bufs[textview.Sub].Name())
	}
	return sess.StatusText()
}

// paneDump and stateDump shape the spew output of a dump request.
type paneDump struct {
	Path     string
	Lines    int
	Caret    int
	Modified bool
	Snapshot bool
}

type stateDump struct {
	Panes   [2]paneDump
	Focused string
	Status  string
	Pending bool
}

func (a *App) dumpState() string {
	var d stateDump
	for side := textview.Main; side <= textview.Sub; side++ {
		d.Panes[side] = paneDump{
			Path:     a.stores[side].Path,
			Lines:    a.bufs[side].LineCount(),
			Caret:    a.bufs[side].CaretLine() + 1,
			Modified: a.modified[side],
			Snapshot: a.snapshot[side],
		}
	}
	d.Focused = a.focused.String()
	d.Status = a.statusSummary()
	d.Pending = a.sch.Pending()

	var b strings.Builder
	b.WriteString(spew.Sdump(d))
	if sess := a.session(); sess != nil {
		if sum := sess.Summary(); sum != nil {
			fmt.Fprintf(&b, "diff lines %d, added %d, removed %d, changed %d, moved %d\n",
				sum.DiffLines, sum.Added, sum.Removed, sum.Changed, sum.Moved)
		}
	}
	return b.String()
}
