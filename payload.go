package chatflow

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Payload is the kind-specific data of a node. The set of implementations
// is closed: StartData, MessageData, InputData, ConditionData and EndData.
type Payload interface {
	Kind() Kind
	label() string
	clone() Payload
}

// InputType is the kind of answer an input node expects.
type InputType string

const (
	InputText   InputType = "text"
	InputNumber InputType = "number"
	InputEmail  InputType = "email"
	InputPhone  InputType = "phone"
)

func (t InputType) valid() bool {
	switch t {
	case InputText, InputNumber, InputEmail, InputPhone:
		return true
	}
	return false
}

// DefaultPlaceholder is the placeholder given to new input nodes.
const DefaultPlaceholder = "Enter your response..."

type StartData struct {
	Label string `json:"label,omitempty" mapstructure:"label"`
}

type MessageData struct {
	Label string `json:"label,omitempty" mapstructure:"label"`
	Text  string `json:"message" mapstructure:"message"`
}

type InputData struct {
	Label       string    `json:"label,omitempty" mapstructure:"label"`
	Prompt      string    `json:"prompt" mapstructure:"prompt"`
	InputType   InputType `json:"inputType" mapstructure:"inputType"`
	Placeholder string    `json:"placeholder" mapstructure:"placeholder"`
}

// ConditionData holds the ordered branch conditions of a condition node.
// The node always has one extra "default" branch; see OutputPorts.
type ConditionData struct {
	Label      string   `json:"label,omitempty" mapstructure:"label"`
	Conditions []string `json:"conditions" mapstructure:"conditions"`
}

type EndData struct {
	Label string `json:"label,omitempty" mapstructure:"label"`
}

func (StartData) Kind() Kind     { return KindStart }
func (MessageData) Kind() Kind   { return KindMessage }
func (InputData) Kind() Kind     { return KindInput }
func (ConditionData) Kind() Kind { return KindCondition }
func (EndData) Kind() Kind       { return KindEnd }

func (d StartData) label() string     { return strings.TrimSpace(d.Label) }
func (d MessageData) label() string   { return strings.TrimSpace(d.Label) }
func (d InputData) label() string     { return strings.TrimSpace(d.Label) }
func (d ConditionData) label() string { return strings.TrimSpace(d.Label) }
func (d EndData) label() string       { return strings.TrimSpace(d.Label) }

func (d StartData) clone() Payload   { return d }
func (d MessageData) clone() Payload { return d }
func (d InputData) clone() Payload   { return d }
func (d EndData) clone() Payload     { return d }

func (d ConditionData) clone() Payload {
	if d.Conditions != nil {
		d.Conditions = append([]string(nil), d.Conditions...)
	}
	return d
}

// DefaultPayload returns the payload a freshly dropped node of kind k starts
// with. It returns nil for unknown kinds.
func DefaultPayload(k Kind) Payload {
	switch k {
	case KindStart:
		return StartData{Label: "Start"}
	case KindMessage:
		return MessageData{}
	case KindInput:
		return InputData{InputType: InputText, Placeholder: DefaultPlaceholder}
	case KindCondition:
		return ConditionData{Conditions: []string{}}
	case KindEnd:
		return EndData{}
	}
	return nil
}

// DecodePayload decodes raw JSON data for a node of kind k. Empty data
// yields the default payload.
func DecodePayload(k Kind, raw json.RawMessage) (Payload, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return DefaultPayload(k), nil
	}

	var (
		p   Payload
		err error
	)
	switch k {
	case KindStart:
		var d StartData
		err = json.Unmarshal(raw, &d)
		p = d
	case KindMessage:
		var d MessageData
		err = json.Unmarshal(raw, &d)
		p = d
	case KindInput:
		var d InputData
		err = json.Unmarshal(raw, &d)
		if d.InputType == "" {
			d.InputType = InputText
		}
		p = d
	case KindCondition:
		var d ConditionData
		err = json.Unmarshal(raw, &d)
		if d.Conditions == nil {
			d.Conditions = []string{}
		}
		p = d
	case KindEnd:
		var d EndData
		err = json.Unmarshal(raw, &d)
		p = d
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s data: %w", k, err)
	}
	return p, nil
}

// mergePayload applies a partial update to a copy of p. Keys use the JSON
// field names ("message", "prompt", "conditions", ...); unknown keys are
// ignored. p itself is never modified.
func mergePayload(p Payload, patch map[string]any) (Payload, error) {
	switch d := p.clone().(type) {
	case StartData:
		err := decodePatch(patch, &d)
		return d, err
	case MessageData:
		err := decodePatch(patch, &d)
		return d, err
	case InputData:
		if err := decodePatch(patch, &d); err != nil {
			return nil, err
		}
		if !d.InputType.valid() {
			return nil, fmt.Errorf("unsupported input type %q", d.InputType)
		}
		return d, nil
	case ConditionData:
		if err := decodePatch(patch, &d); err != nil {
			return nil, err
		}
		d.Conditions = normalizeConditions(d.Conditions)
		return d, nil
	case EndData:
		err := decodePatch(patch, &d)
		return d, err
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownKind, p)
}

func decodePatch(patch map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		ZeroFields: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(patch); err != nil {
		return fmt.Errorf("merge node data: %w", err)
	}
	return nil
}

// normalizeConditions trims each condition and drops blank ones, keeping
// order and duplicates.
func normalizeConditions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}
