package interact

import (
	"time"

	"github.com/google/uuid"
	"github.com/ritzau/graphview/pkg/model"
)

// Kind is the type of a pointer event
type Kind string

const (
	Down Kind = "down"
	Move Kind = "move"
	Up   Kind = "up"
)

// Target is where the host delivered an event
type Target string

const (
	TargetSurface Target = "surface"
	TargetWindow  Target = "window"
)

// PointerEvent is a raw pointer event in page coordinates
type PointerEvent struct {
	Kind   Kind        `json:"kind"`
	Page   model.Point `json:"page"`
	Target Target      `json:"target"`
}

// Session is an in-progress drag. It exists from grab to release.
type Session struct {
	ID      uuid.UUID   `json:"id"`
	Node    *model.Node `json:"-"`
	Pointer model.Point `json:"pointer"` // last surface-relative point
	Started time.Time   `json:"started"`
}

// ChangeKind says what happened to a session
type ChangeKind string

const (
	DragStart ChangeKind = "start"
	DragMove  ChangeKind = "move"
	DragEnd   ChangeKind = "end"
)

// Change is reported to the OnChange hook
type Change struct {
	Kind      ChangeKind  `json:"kind"`
	SessionID uuid.UUID   `json:"session"`
	NodeID    string      `json:"node"`
	Pointer   model.Point `json:"pointer"`
	Position  model.Point `json:"position"` // node position, simulation space
}
