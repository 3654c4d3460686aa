package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/zhixue/internal/models"
	"github.com/desertthunder/zhixue/internal/notify"
	"github.com/desertthunder/zhixue/internal/player"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCourseOpened MsgKind = iota
	MsgFrame
	MsgPlayerEvent
	MsgNotification
	MsgEventsClosed
)

type courseOpened struct {
	course *models.Course
	ctl    *player.Controller
	events chan player.Event
	err    error
}

// courseOpenedMsg is the constructor for [MsgCourseOpened]
func courseOpenedMsg(c *models.Course, ctl *player.Controller, events chan player.Event, err error) Msg {
	return Msg{kind: MsgCourseOpened, data: courseOpened{course: c, ctl: ctl, events: events, err: err}}
}

// frameMsg is the constructor for [MsgFrame]
func frameMsg(at time.Time) Msg {
	return Msg{kind: MsgFrame, data: at}
}

// playerEventMsg is the constructor for [MsgPlayerEvent]
func playerEventMsg(e player.Event) Msg {
	return Msg{kind: MsgPlayerEvent, data: e}
}

// notificationMsg is the constructor for [MsgNotification]
func notificationMsg(n notify.Notification) Msg {
	return Msg{kind: MsgNotification, data: n}
}

// eventsClosedMsg is the constructor for [MsgEventsClosed]
func eventsClosedMsg() Msg {
	return Msg{kind: MsgEventsClosed}
}
