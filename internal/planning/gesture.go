package planning

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SourceKind откуда начато перетаскивание
type SourceKind string

const (
	KindUnassignedItem SourceKind = "u" // из списка неназначенных
	KindPlacedItem     SourceKind = "p" // уже стоит в сетке
)

// DragSource перетаскиваемый курс. Вид источника хранится отдельно от id,
// поэтому id никогда не приходится очищать от префиксов.
type DragSource struct {
	Kind     SourceKind
	CourseID string
}

// Encode "u:<id>" или "p:<id>"
func (s DragSource) Encode() string {
	return string(s.Kind) + ":" + s.CourseID
}

// ParseDragSource разбирает результат Encode
func ParseDragSource(data string) (DragSource, error) {
	kind, id, ok := strings.Cut(data, ":")
	if !ok || id == "" {
		return DragSource{}, invalid(CodeBadPayload, "drag payload %q", data)
	}
	switch SourceKind(kind) {
	case KindUnassignedItem, KindPlacedItem:
		return DragSource{Kind: SourceKind(kind), CourseID: id}, nil
	}
	return DragSource{}, invalid(CodeBadPayload, "drag source kind %q", kind)
}

// TargetKind куда бросили курс
type TargetKind int

const (
	TargetUnassigned TargetKind = iota + 1
	TargetSlot
)

const (
	unassignedToken = "unassigned"
	slotSeparator   = ":"
)

// DropTarget зона сброса: список неназначенных или слот {водитель, час}
type DropTarget struct {
	Kind     TargetKind
	DriverID string
	Hour     int
}

// UnassignedTarget зона "неназначенные"
func UnassignedTarget() DropTarget {
	return DropTarget{Kind: TargetUnassigned}
}

// SlotTarget слот водителя
func SlotTarget(driverID string, hour int) DropTarget {
	return DropTarget{Kind: TargetSlot, DriverID: driverID, Hour: hour}
}

// Encode "unassigned" или "<driverID>:<hour>"
func (t DropTarget) Encode() string {
	if t.Kind == TargetUnassigned {
		return unassignedToken
	}
	return t.DriverID + slotSeparator + strconv.Itoa(t.Hour)
}

// ParseDropTarget разбирает зону сброса.
// id водителя может содержать разделитель, поэтому делим по последнему вхождению.
func ParseDropTarget(data string) (DropTarget, error) {
	if data == unassignedToken {
		return UnassignedTarget(), nil
	}
	i := strings.LastIndex(data, slotSeparator)
	if i <= 0 || i == len(data)-1 {
		return DropTarget{}, invalid(CodeBadPayload, "drop target %q", data)
	}
	hour, err := strconv.Atoi(data[i+1:])
	if err != nil || hour < 0 || hour > 23 {
		return DropTarget{}, invalid(CodeBadPayload, "drop target hour %q", data[i+1:])
	}
	return SlotTarget(data[:i], hour), nil
}

// String для логов
func (t DropTarget) String() string {
	if t.Kind == TargetUnassigned {
		return unassignedToken
	}
	return fmt.Sprintf("%s@%02d:00", t.DriverID, t.Hour)
}

// Gesture состояние одного перетаскивания пользователя
type Gesture struct {
	Day    time.Time
	Source *DragSource
	Over   *DropTarget // только для подсветки
}

// Start начинает перетаскивание
func (g *Gesture) Start(day time.Time, src DragSource) {
	g.Day = day
	g.Source = &src
	g.Over = nil
}

// Hover запоминает текущую цель. Состояние планирования не меняется.
func (g *Gesture) Hover(t DropTarget) {
	if g.Source == nil {
		return
	}
	g.Over = &t
}

// Active идёт ли перетаскивание
func (g *Gesture) Active() bool {
	return g.Source != nil
}

// Reset завершает перетаскивание
func (g *Gesture) Reset() {
	g.Source = nil
	g.Over = nil
}
