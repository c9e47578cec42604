package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// NodeData is the data bag attached to a node.
// Each node type has its own variant; fields that were never set are absent.
type NodeData interface {
	// NodeType returns the type key the bag was created for.
	NodeType() string
	// Get returns the current value of a field and whether it is present.
	Get(name string) (any, bool)
	// Set coerces value into the field's type and stores it.
	// It returns ErrUnknownField or ErrInvalidFieldValue on failure.
	Set(name string, value any) error
	// Map returns the bag as a flat map, the shape sent over the wire.
	Map() map[string]any
}

// Base holds the keys every bag is seeded with when a node is dropped.
type Base struct {
	ID   string `json:"id" mapstructure:"id"`
	Type string `json:"nodeType" mapstructure:"nodeType"`
}

func (b *Base) NodeType() string { return b.Type }

// InputData backs "customInput" nodes.
type InputData struct {
	Base      `mapstructure:",squash"`
	InputName *string `json:"inputName,omitempty" mapstructure:"inputName"`
	InputType *string `json:"inputType,omitempty" mapstructure:"inputType"`
}

// OutputData backs "customOutput" nodes.
type OutputData struct {
	Base       `mapstructure:",squash"`
	OutputName *string `json:"outputName,omitempty" mapstructure:"outputName"`
	OutputType *string `json:"outputType,omitempty" mapstructure:"outputType"`
}

// LLMData backs "llm" nodes.
type LLMData struct {
	Base  `mapstructure:",squash"`
	Model *string `json:"model,omitempty" mapstructure:"model"`
}

// TextData backs "text" (template) nodes.
type TextData struct {
	Base `mapstructure:",squash"`
	Text *string `json:"text,omitempty" mapstructure:"text"`
}

// TransformData backs "transform" nodes.
type TransformData struct {
	Base      `mapstructure:",squash"`
	Operation *string `json:"operation,omitempty" mapstructure:"operation"`
}

// ConditionalData backs "conditional" nodes.
type ConditionalData struct {
	Base      `mapstructure:",squash"`
	Condition *string `json:"condition,omitempty" mapstructure:"condition"`
	Value     *string `json:"value,omitempty" mapstructure:"value"`
}

// APIData backs "api" nodes.
type APIData struct {
	Base   `mapstructure:",squash"`
	Method *string `json:"method,omitempty" mapstructure:"method"`
	URL    *string `json:"url,omitempty" mapstructure:"url"`
}

// DatabaseData backs "database" nodes.
type DatabaseData struct {
	Base      `mapstructure:",squash"`
	Operation *string `json:"operation,omitempty" mapstructure:"operation"`
	Table     *string `json:"table,omitempty" mapstructure:"table"`
	Key       *string `json:"key,omitempty" mapstructure:"key"`
}

// DelayData backs "delay" nodes.
type DelayData struct {
	Base     `mapstructure:",squash"`
	Duration *float64 `json:"duration,omitempty" mapstructure:"duration"`
	Unit     *string  `json:"unit,omitempty" mapstructure:"unit"`
	Blocking *bool    `json:"blocking,omitempty" mapstructure:"blocking"`
}

func (d *InputData) Get(name string) (any, bool)       { return lookup(d, name) }
func (d *InputData) Set(name string, value any) error  { return assign(d, name, value) }
func (d *InputData) Map() map[string]any               { return toMap(d) }
func (d *OutputData) Get(name string) (any, bool)      { return lookup(d, name) }
func (d *OutputData) Set(name string, value any) error { return assign(d, name, value) }
func (d *OutputData) Map() map[string]any              { return toMap(d) }
func (d *LLMData) Get(name string) (any, bool)         { return lookup(d, name) }
func (d *LLMData) Set(name string, value any) error    { return assign(d, name, value) }
func (d *LLMData) Map() map[string]any                 { return toMap(d) }
func (d *TextData) Get(name string) (any, bool)        { return lookup(d, name) }
func (d *TextData) Set(name string, value any) error   { return assign(d, name, value) }
func (d *TextData) Map() map[string]any                { return toMap(d) }

func (d *TransformData) Get(name string) (any, bool)        { return lookup(d, name) }
func (d *TransformData) Set(name string, value any) error   { return assign(d, name, value) }
func (d *TransformData) Map() map[string]any                { return toMap(d) }
func (d *ConditionalData) Get(name string) (any, bool)      { return lookup(d, name) }
func (d *ConditionalData) Set(name string, value any) error { return assign(d, name, value) }
func (d *ConditionalData) Map() map[string]any              { return toMap(d) }
func (d *APIData) Get(name string) (any, bool)              { return lookup(d, name) }
func (d *APIData) Set(name string, value any) error         { return assign(d, name, value) }
func (d *APIData) Map() map[string]any                      { return toMap(d) }
func (d *DatabaseData) Get(name string) (any, bool)         { return lookup(d, name) }
func (d *DatabaseData) Set(name string, value any) error    { return assign(d, name, value) }
func (d *DatabaseData) Map() map[string]any                 { return toMap(d) }
func (d *DelayData) Get(name string) (any, bool)            { return lookup(d, name) }
func (d *DelayData) Set(name string, value any) error       { return assign(d, name, value) }
func (d *DelayData) Map() map[string]any                    { return toMap(d) }

// GenericData backs node types that have no dedicated variant,
// such as types declared in a custom catalog. Values are stored as given.
type GenericData struct {
	Base   `mapstructure:",squash"`
	Values map[string]any `mapstructure:",remain"`
}

func (d *GenericData) Get(name string) (any, bool) {
	switch name {
	case "id":
		return d.ID, true
	case "nodeType":
		return d.Type, true
	}
	v, ok := d.Values[name]
	return v, ok
}

func (d *GenericData) Set(name string, value any) error {
	switch name {
	case "id", "nodeType":
		return assign(d, name, value)
	}
	if d.Values == nil {
		d.Values = make(map[string]any)
	}
	d.Values[name] = value
	return nil
}

func (d *GenericData) Map() map[string]any {
	m := make(map[string]any, len(d.Values)+2)
	for k, v := range d.Values {
		m[k] = v
	}
	m["id"] = d.ID
	m["nodeType"] = d.Type
	return m
}

// MarshalJSON flattens Values next to the base keys.
func (d *GenericData) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// NewData returns an empty bag of the variant registered for nodeType.
func NewData(nodeType string) NodeData {
	var d NodeData
	switch nodeType {
	case TypeInput:
		d = &InputData{}
	case TypeOutput:
		d = &OutputData{}
	case TypeLLM:
		d = &LLMData{}
	case TypeText:
		d = &TextData{}
	case TypeTransform:
		d = &TransformData{}
	case TypeConditional:
		d = &ConditionalData{}
	case TypeAPI:
		d = &APIData{}
	case TypeDatabase:
		d = &DatabaseData{}
	case TypeDelay:
		d = &DelayData{}
	default:
		d = &GenericData{}
	}
	_ = d.Set("nodeType", nodeType)
	return d
}

// NewInitialData returns the bag a freshly dropped node starts with: {id, nodeType}.
func NewInitialData(id, nodeType string) NodeData {
	d := NewData(nodeType)
	_ = d.Set("id", id)
	return d
}

// DecodeData builds the variant for nodeType from a raw map.
// Keys the variant does not declare are dropped, except for GenericData which keeps them all.
// The bag's nodeType always follows nodeType, whatever the raw map says.
func DecodeData(nodeType string, raw map[string]any) (NodeData, error) {
	d := NewData(nodeType)
	if len(raw) == 0 {
		return d, nil
	}
	if err := decode(raw, d, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFieldValue, err)
	}
	_ = d.Set("nodeType", nodeType)
	return d, nil
}

// CloneData returns a deep copy of a bag.
func CloneData(d NodeData) NodeData {
	c, err := DecodeData(d.NodeType(), d.Map())
	if err != nil {
		// Map output always round-trips through its own variant.
		panic(fmt.Sprintf("domain: clone of %s data failed: %v", d.NodeType(), err))
	}
	return c
}

func decode(input map[string]any, target any, md *mapstructure.Metadata) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Metadata:         md,
		Result:           target,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

func assign(target NodeData, name string, value any) error {
	if value == "" && clearField(target, name) {
		return nil
	}
	var md mapstructure.Metadata
	if err := decode(map[string]any{name: value}, target, &md); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidFieldValue, name, err)
	}
	for _, unused := range md.Unused {
		if unused == name {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
	}
	return nil
}

// clearField unsets a non-string field when its control was emptied.
// An empty raw value leaves such a field absent instead of coercing to zero.
func clearField(target NodeData, name string) bool {
	v := reflect.ValueOf(target).Elem()
	t := v.Type()
	for i := range t.NumField() {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("mapstructure"), ",")
		if tag != name {
			continue
		}
		f := v.Field(i)
		if f.Kind() != reflect.Pointer || f.Type().Elem().Kind() == reflect.String {
			return false
		}
		f.Set(reflect.Zero(f.Type()))
		return true
	}
	return false
}

func lookup(d NodeData, name string) (any, bool) {
	v, ok := d.Map()[name]
	return v, ok
}

// toMap goes through JSON so absent pointer fields disappear and numbers
// have the same representation the validator receives.
func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	m := make(map[string]any)
	_ = json.Unmarshal(b, &m)
	return m
}
