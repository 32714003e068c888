package fields

// Builtins returns fresh instances of every built-in leaf handler keyed by
// type name. Composite types live with the form engine because they need it
// to render their nested schemas.
func Builtins() map[string]Handler {
	return map[string]Handler{
		TypeText:     NewText(),
		TypeTextarea: NewTextarea(),
		TypeEmail:    NewEmail(),
		TypeURL:      NewURL(),
		TypeNumber:   NewNumber(),
		TypeRange:    NewRange(),
		TypeSelect:   NewSelect(),
		TypeRadio:    NewRadio(),
		TypeCheckbox: NewCheckbox(),
		TypeBoolean:  NewBoolean(),
		TypeDate:     NewDate(),
		TypeTime:     NewTime(),
		TypeColor:    NewColor(),
		TypeWysiwyg:  NewWysiwyg(),
		TypeHidden:   NewHidden(),
	}
}
