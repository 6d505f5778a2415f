package view

import (
	"github.com/okian/tcxview/internal/domain/calendar"
	"github.com/okian/tcxview/internal/domain/model"
)

// Command is an effect requested by Dispatch.
type Command interface {
	command()
}

// Request carries the parameters of one fetch. Only the fields relevant to
// the target are set.
type Request struct {
	ID        model.ID
	Smoothing int
	Cursor    calendar.Cursor
}

// Fetch asks the executor to call the data service. The result must come
// back as FetchSucceeded or FetchFailed with the same Target, Seq and
// Request.
type Fetch struct {
	Target  Target
	Seq     uint64
	Request Request
}

// Render asks the executor to redraw View from Describe.
type Render struct {
	View Mode
}

func (Fetch) command()  {}
func (Render) command() {}
