package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldKind identifies a field type independent of its parameters.
type FieldKind string

const (
	AutoField         FieldKind = "AutoField"
	BigAutoField      FieldKind = "BigAutoField"
	CharField         FieldKind = "CharField"
	TextField         FieldKind = "TextField"
	EmailField        FieldKind = "EmailField"
	URLField          FieldKind = "URLField"
	SlugField         FieldKind = "SlugField"
	IntegerField      FieldKind = "IntegerField"
	BigIntegerField   FieldKind = "BigIntegerField"
	SmallIntegerField FieldKind = "SmallIntegerField"
	FloatField        FieldKind = "FloatField"
	DecimalField      FieldKind = "DecimalField"
	BooleanField      FieldKind = "BooleanField"
	DateField         FieldKind = "DateField"
	DateTimeField     FieldKind = "DateTimeField"
	TimeField         FieldKind = "TimeField"
	DurationField     FieldKind = "DurationField"
	UUIDField         FieldKind = "UUIDField"
	BinaryField       FieldKind = "BinaryField"
	JSONField         FieldKind = "JSONField"
	IPAddressField    FieldKind = "IPAddressField"
	FilePathField     FieldKind = "FilePathField"
	ForeignKey        FieldKind = "ForeignKey"
	OneToOneField     FieldKind = "OneToOneField"
)

// OnDelete is the referential action attached to a relation field.
type OnDelete string

const (
	Cascade    OnDelete = "CASCADE"
	Protect    OnDelete = "PROTECT"
	SetNull    OnDelete = "SET_NULL"
	SetDefault OnDelete = "SET_DEFAULT"
	DoNothing  OnDelete = "DO_NOTHING"
)

// FieldType is a field kind plus its kind-specific parameters.
type FieldType struct {
	Kind          FieldKind `json:"kind"`
	MaxDigits     int       `json:"max_digits,omitempty"`
	DecimalPlaces int       `json:"decimal_places,omitempty"`
	To            string    `json:"to,omitempty"`
	OnDelete      OnDelete  `json:"on_delete,omitempty"`
}

// SameKind reports whether both types share a kind, ignoring parameters.
// Rename detection matches on this, so a renamed CharField keeps matching
// even when its max_length changed in the same edit.
func (t FieldType) SameKind(other FieldType) bool {
	return t.Kind == other.Kind
}

// IsRelation reports whether the type references another model.
func (t FieldType) IsRelation() bool {
	return t.Kind == ForeignKey || t.Kind == OneToOneField
}

// Decimal builds a DecimalField type with the given precision.
func Decimal(maxDigits, decimalPlaces int) FieldType {
	return FieldType{Kind: DecimalField, MaxDigits: maxDigits, DecimalPlaces: decimalPlaces}
}

// Relation builds a ForeignKey or OneToOneField type pointing at "app.model".
func Relation(kind FieldKind, to string, onDelete OnDelete) FieldType {
	return FieldType{Kind: kind, To: to, OnDelete: onDelete}
}

// Value is a scalar default value: null, bool, int, float, or string.
type Value struct {
	kind string
	b    bool
	i    int64
	f    float64
	s    string
}

func NullValue() Value           { return Value{kind: "null"} }
func BoolValue(b bool) Value     { return Value{kind: "bool", b: b} }
func IntValue(i int64) Value     { return Value{kind: "int", i: i} }
func FloatValue(f float64) Value { return Value{kind: "float", f: f} }
func StringValue(s string) Value { return Value{kind: "string", s: s} }

func (v Value) IsNull() bool           { return v.kind == "null" || v.kind == "" }
func (v Value) Bool() (bool, bool)     { return v.b, v.kind == "bool" }
func (v Value) Int() (int64, bool)     { return v.i, v.kind == "int" }
func (v Value) Float() (float64, bool) { return v.f, v.kind == "float" }
func (v Value) Str() (string, bool)    { return v.s, v.kind == "string" }

func (v Value) Equal(other Value) bool {
	if v.IsNull() && other.IsNull() {
		return true
	}
	return v == other
}

func (v Value) String() string {
	switch v.kind {
	case "bool":
		return strconv.FormatBool(v.b)
	case "int":
		return strconv.FormatInt(v.i, 10)
	case "float":
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case "string":
		return v.s
	default:
		return "null"
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case "bool":
		return json.Marshal(v.b)
	case "int":
		return json.Marshal(v.i)
	case "float":
		return json.Marshal(v.f)
	case "string":
		return json.Marshal(v.s)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*v = NullValue()
		return nil
	}
	switch data[0] {
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	default:
		text := string(data)
		if strings.ContainsAny(text, ".eE") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return fmt.Errorf("invalid default value %q: %w", text, err)
			}
			*v = FloatValue(f)
		} else {
			i, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid default value %q: %w", text, err)
			}
			*v = IntValue(i)
		}
	}
	return nil
}

// FieldDef describes one column of a model.
type FieldDef struct {
	Name       string    `json:"name"`
	Column     string    `json:"column,omitempty"`
	Type       FieldType `json:"type"`
	PrimaryKey bool      `json:"primary_key,omitempty"`
	Null       bool      `json:"null,omitempty"`
	Default    *Value    `json:"default,omitempty"`
	Unique     bool      `json:"unique,omitempty"`
	DBIndex    bool      `json:"db_index,omitempty"`
	MaxLength  int       `json:"max_length,omitempty"`
}

// NewField creates a field whose column name defaults to the field name.
func NewField(name string, t FieldType) FieldDef {
	return FieldDef{Name: name, Column: name, Type: t}
}

func (f FieldDef) WithColumn(column string) FieldDef {
	f.Column = column
	return f
}

func (f FieldDef) AsPrimaryKey() FieldDef {
	f.PrimaryKey = true
	return f
}

func (f FieldDef) Nullable() FieldDef {
	f.Null = true
	return f
}

func (f FieldDef) WithMaxLength(n int) FieldDef {
	f.MaxLength = n
	return f
}

func (f FieldDef) AsUnique() FieldDef {
	f.Unique = true
	return f
}

func (f FieldDef) Indexed() FieldDef {
	f.DBIndex = true
	return f
}

func (f FieldDef) WithDefault(v Value) FieldDef {
	f.Default = &v
	return f
}

// ColumnName returns the column override, or the field name when unset.
func (f FieldDef) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

func (f FieldDef) IsRelation() bool {
	return f.Type.IsRelation()
}

// Equal is full structural equality, the condition under which two versions
// of a field need no AlterField.
func (f FieldDef) Equal(other FieldDef) bool {
	if f.Name != other.Name || f.ColumnName() != other.ColumnName() {
		return false
	}
	if f.Type != other.Type {
		return false
	}
	if f.PrimaryKey != other.PrimaryKey || f.Null != other.Null ||
		f.Unique != other.Unique || f.DBIndex != other.DBIndex ||
		f.MaxLength != other.MaxLength {
		return false
	}
	switch {
	case f.Default == nil && other.Default == nil:
		return true
	case f.Default == nil || other.Default == nil:
		return false
	default:
		return f.Default.Equal(*other.Default)
	}
}
