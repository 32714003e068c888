package form

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/MarJC5/slabs/pkg/schema"
	"github.com/MarJC5/slabs/pkg/ui"
	"github.com/MarJC5/slabs/pkg/validation"
)

var (
	// ErrMaxRows is returned when adding a row would exceed the field's max.
	ErrMaxRows = errors.New("form: maximum number of rows reached")
	// ErrMinRows is returned when removing a row would go below the field's min.
	ErrMinRows = errors.New("form: minimum number of rows reached")
	// ErrRowIndex is returned for a row index outside the current rows.
	ErrRowIndex = errors.New("form: row index out of range")
	// ErrUnknownLayout is returned when adding a flexible row for an undefined layout.
	ErrUnknownLayout = errors.New("form: unknown layout")
	// ErrNotComposite is returned when a row operation targets another kind of control.
	ErrNotComposite = errors.New("form: control does not hold rows")
)

// Row actions understood by repeater and flexible controls.
const (
	ActionAddRow    = "add-row"
	ActionAddLayout = "add-layout"
	ActionRemoveRow = "remove-row"
	ActionMoveUp    = "move-up"
	ActionMoveDown  = "move-down"
)

// AttrComposite carries the composite kind (repeater, flexible, group, tabs)
// on the control of a composite field.
const AttrComposite = "data-composite"

const (
	attrRows          = "data-rows"
	attrRowTitle      = "data-row-title"
	attrLayoutPicker  = "data-layout-picker"
	attrUnknownLayout = "data-unknown-layout"
)

// rowSet is the state shared by repeater and flexible controls. It is stored
// in the control's Data field.
type rowSet struct {
	kind    string
	name    string
	cfg     schema.FieldConfig
	engine  *Engine
	control *ui.Node
	list    *ui.Node
	add     *ui.Node
	// build renders the body of a row for layout (empty for repeaters).
	build func(set *rowSet, layout string, values map[string]any) (*ui.Node, error)
	// title labels a row in its toolbar.
	title func(set *rowSet, row *ui.Node, index int) string
}

func newRowSet(kind, name string, cfg schema.FieldConfig, engine *Engine) *rowSet {
	set := &rowSet{kind: kind, name: name, cfg: cfg, engine: engine}
	set.control = ui.El("div", AttrComposite, kind)
	set.control.AddClass("slabs-" + kind)
	if cfg.Min != nil {
		set.control.SetAttr("data-min", formatBound(*cfg.Min))
	}
	if cfg.Max != nil {
		set.control.SetAttr("data-max", formatBound(*cfg.Max))
	}
	if cfg.Collapsed {
		set.control.SetAttr("data-collapsed", "true")
	}
	set.list = ui.El("div", "class", "slabs-"+kind+"__rows", attrRows, "")
	set.control.Append(set.list)
	set.control.Data = set
	set.control.On(ui.EventClick, set.onClick)
	return set
}

func (s *rowSet) rows() []*ui.Node {
	return s.list.FindChildren(ui.ByAttr(AttrRowIndex))
}

func (s *rowSet) atMax(count int) bool {
	return s.cfg.Max != nil && float64(count) >= *s.cfg.Max
}

func (s *rowSet) atMin(count int) bool {
	return s.cfg.Min != nil && float64(count) <= *s.cfg.Min
}

// appendRow renders and appends a row. Rows coming from initial data skip the
// max check so that over-full data still renders and fails validation.
func (s *rowSet) appendRow(layout string, values map[string]any, enforceMax bool) (*ui.Node, error) {
	if enforceMax && s.atMax(len(s.rows())) {
		return nil, fmt.Errorf("%w (field %q)", ErrMaxRows, s.name)
	}
	body, err := s.build(s, layout, values)
	if err != nil {
		return nil, err
	}

	row := ui.El("div", "class", "slabs-"+s.kind+"__row", AttrRowIndex, strconv.Itoa(len(s.rows())))
	if s.kind == TypeFlexible {
		row.SetAttr(AttrLayout, layout)
	}
	toolbar := ui.El("div", "class", "slabs-row__toolbar")
	toolbar.Append(
		ui.El("span", "class", "slabs-row__title", attrRowTitle, ""),
		actionButton(ActionMoveUp, "Move up"),
		actionButton(ActionMoveDown, "Move down"),
		actionButton(ActionRemoveRow, "Remove"),
	)
	row.Append(toolbar, body)
	s.list.Append(row)
	return row, nil
}

func (s *rowSet) remove(index int) error {
	rows := s.rows()
	if index < 0 || index >= len(rows) {
		return fmt.Errorf("%w: %d (field %q)", ErrRowIndex, index, s.name)
	}
	if s.atMin(len(rows)) {
		return fmt.Errorf("%w (field %q)", ErrMinRows, s.name)
	}
	rows[index].Detach()
	s.restamp()
	return nil
}

func (s *rowSet) move(index, delta int) error {
	rows := s.rows()
	target := index + delta
	if index < 0 || index >= len(rows) || target < 0 || target >= len(rows) {
		return fmt.Errorf("%w: %d (field %q)", ErrRowIndex, index, s.name)
	}
	s.list.Swap(rows[index].Index(), rows[target].Index())
	s.restamp()
	return nil
}

// restamp rewrites row indexes, titles and button states after a mutation.
func (s *rowSet) restamp() {
	rows := s.rows()
	for i, row := range rows {
		row.SetAttr(AttrRowIndex, strconv.Itoa(i))
		if title := row.Find(ui.ByAttr(attrRowTitle)); title != nil {
			title.Text = s.title(s, row, i)
		}
		s.setDisabled(row, ActionMoveUp, i == 0)
		s.setDisabled(row, ActionMoveDown, i == len(rows)-1)
		s.setDisabled(row, ActionRemoveRow, s.atMin(len(rows)))
	}
	if s.add != nil {
		toggleDisabled(s.add, s.atMax(len(rows)))
	}
}

func (s *rowSet) setDisabled(row *ui.Node, action string, disabled bool) {
	for _, btn := range row.FindAll(ui.ByAttrValue(AttrAction, action)) {
		if s.owns(btn) {
			toggleDisabled(btn, disabled)
		}
	}
}

// owns reports whether node belongs to this control rather than to a
// composite nested inside one of its rows.
func (s *rowSet) owns(node *ui.Node) bool {
	return node.Closest(ui.ByAttr(AttrComposite)) == s.control
}

func (s *rowSet) rowOf(node *ui.Node) *ui.Node {
	return node.Closest(func(n *ui.Node) bool { return n.Parent() == s.list })
}

func (s *rowSet) onClick(ev *ui.Event) {
	btn := ev.Target.Closest(ui.ByAttr(AttrAction))
	if btn == nil || !s.owns(btn) || btn.HasAttr("disabled") {
		return
	}

	var err error
	switch btn.AttrValue(AttrAction) {
	case ActionAddRow:
		_, err = s.appendRow("", nil, true)
		if err == nil {
			s.restamp()
		}
	case ActionAddLayout:
		layout := ""
		if picker := s.control.Find(ui.ByAttr(attrLayoutPicker)); picker != nil {
			layout = picker.Value
		}
		_, err = s.addLayout(layout, nil)
	case ActionRemoveRow, ActionMoveUp, ActionMoveDown:
		row := s.rowOf(btn)
		if row == nil {
			return
		}
		index := row.Index()
		switch btn.AttrValue(AttrAction) {
		case ActionRemoveRow:
			err = s.remove(index)
		case ActionMoveUp:
			err = s.move(index, -1)
		default:
			err = s.move(index, 1)
		}
	default:
		return
	}
	if err != nil {
		s.engine.logger.Debug("row action rejected",
			zap.String("field", s.name),
			zap.String("action", btn.AttrValue(AttrAction)),
			zap.Error(err),
		)
		return
	}
	s.control.Dispatch(ui.EventChange)
}

func (s *rowSet) addLayout(layout string, values map[string]any) (*ui.Node, error) {
	if _, ok := s.cfg.Layouts.Get(layout); !ok {
		return nil, fmt.Errorf("%w %q (field %q)", ErrUnknownLayout, layout, s.name)
	}
	row, err := s.appendRow(layout, values, true)
	if err != nil {
		return nil, err
	}
	s.restamp()
	return row, nil
}

// rowRoot returns the nested render root inside a row.
func rowRoot(row *ui.Node) *ui.Node {
	return row.Find(ui.ByAttr(AttrNestedRoot))
}

func rowSetOf(control *ui.Node) (*rowSet, error) {
	if control == nil {
		return nil, ErrNotComposite
	}
	set, ok := control.Data.(*rowSet)
	if !ok {
		return nil, ErrNotComposite
	}
	return set, nil
}

// AddRow appends a repeater row pre-filled with values and dispatches a
// change event from the control.
func AddRow(control *ui.Node, values map[string]any) (*ui.Node, error) {
	set, err := rowSetOf(control)
	if err != nil {
		return nil, err
	}
	if set.kind != TypeRepeater {
		return nil, fmt.Errorf("%w: use AddLayout for %s fields", ErrNotComposite, set.kind)
	}
	row, err := set.appendRow("", values, true)
	if err != nil {
		return nil, err
	}
	set.restamp()
	control.Dispatch(ui.EventChange)
	return row, nil
}

// AddLayout appends a flexible row using the named layout.
func AddLayout(control *ui.Node, layout string, values map[string]any) (*ui.Node, error) {
	set, err := rowSetOf(control)
	if err != nil {
		return nil, err
	}
	if set.kind != TypeFlexible {
		return nil, fmt.Errorf("%w: use AddRow for %s fields", ErrNotComposite, set.kind)
	}
	row, err := set.addLayout(layout, values)
	if err != nil {
		return nil, err
	}
	control.Dispatch(ui.EventChange)
	return row, nil
}

// RemoveRow deletes the row at index.
func RemoveRow(control *ui.Node, index int) error {
	set, err := rowSetOf(control)
	if err != nil {
		return err
	}
	if err := set.remove(index); err != nil {
		return err
	}
	control.Dispatch(ui.EventChange)
	return nil
}

// MoveUp swaps the row at index with the one above it.
func MoveUp(control *ui.Node, index int) error {
	return moveRow(control, index, -1)
}

// MoveDown swaps the row at index with the one below it.
func MoveDown(control *ui.Node, index int) error {
	return moveRow(control, index, 1)
}

func moveRow(control *ui.Node, index, delta int) error {
	set, err := rowSetOf(control)
	if err != nil {
		return err
	}
	if err := set.move(index, delta); err != nil {
		return err
	}
	control.Dispatch(ui.EventChange)
	return nil
}

// Rows returns the row nodes of a repeater or flexible control in order.
func Rows(control *ui.Node) []*ui.Node {
	set, err := rowSetOf(control)
	if err != nil {
		return nil
	}
	return set.rows()
}

// RowRoot returns the nested form root of a row, which can be passed to
// FieldControl to reach the row's own fields.
func RowRoot(row *ui.Node) *ui.Node {
	if row == nil {
		return nil
	}
	return rowRoot(row)
}

func rowCountRules(label string, cfg schema.FieldConfig, count int) []validation.Error {
	if count == 0 && cfg.Required {
		return []validation.Error{validation.New(label, validation.CodeRequired, label+" is required")}
	}
	var errs []validation.Error
	if cfg.Min != nil && float64(count) < *cfg.Min {
		errs = append(errs, validation.New(label, validation.CodeMinRows,
			fmt.Sprintf("%s needs at least %s rows", label, formatBound(*cfg.Min))))
	}
	if cfg.Max != nil && float64(count) > *cfg.Max {
		errs = append(errs, validation.New(label, validation.CodeMaxRows,
			fmt.Sprintf("%s allows at most %s rows", label, formatBound(*cfg.Max))))
	}
	return errs
}

func actionButton(action, text string) *ui.Node {
	btn := ui.El("button", "type", "button", AttrAction, action)
	btn.Text = text
	return btn
}

func toggleDisabled(node *ui.Node, disabled bool) {
	if disabled {
		node.SetAttr("disabled", "")
		return
	}
	node.RemoveAttr("disabled")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
