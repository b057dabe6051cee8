// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package convo

import (
	"encoding/json"
	"fmt"
)

// UIKind discriminates the ui union. The set is closed: unknown tags are
// rejected on decode rather than passed through silently.
type UIKind string

const (
	UITextInput       UIKind = "TEXT_INPUT"
	UITextAreaInput   UIKind = "TEXT_AREA_INPUT"
	UIButtonGroup     UIKind = "BUTTON_GROUP"
	UIMultiSelect     UIKind = "MULTI_SELECT"
	UIColorPicker     UIKind = "COLOR_PICKER"
	UIKeyValueDisplay UIKind = "KEY_VALUE_DISPLAY"
	UILoading         UIKind = "LOADING"
)

// KnownUIKind reports whether k is a member of the closed union.
func KnownUIKind(k UIKind) bool {
	switch k {
	case UITextInput, UITextAreaInput, UIButtonGroup, UIMultiSelect,
		UIColorPicker, UIKeyValueDisplay, UILoading:
		return true
	}
	return false
}

// UIElement describes the next input affordance the presentation layer
// should render. Props is kept raw; DecodeProps extracts the typed payload
// for the tag.
type UIElement struct {
	Type  UIKind          `json:"type"`
	Props json.RawMessage `json:"props,omitempty"`
}

// UnmarshalJSON enforces the closed union on decode.
func (e *UIElement) UnmarshalJSON(data []byte) error {
	type alias UIElement
	var raw alias
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !KnownUIKind(raw.Type) {
		return fmt.Errorf("unknown ui tag %q", raw.Type)
	}
	*e = UIElement(raw)
	return nil
}

// DecodeProps unmarshals the props payload into v.
func (e *UIElement) DecodeProps(v any) error {
	if len(e.Props) == 0 {
		return nil
	}
	return json.Unmarshal(e.Props, v)
}

// TextInputProps is the payload for TEXT_INPUT and TEXT_AREA_INPUT.
type TextInputProps struct {
	Label       string `json:"label,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// Button is a single choice in a BUTTON_GROUP.
type Button struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ButtonGroupProps is the payload for BUTTON_GROUP.
type ButtonGroupProps struct {
	Buttons []Button `json:"buttons"`
}

// MultiSelectProps is the payload for MULTI_SELECT.
type MultiSelectProps struct {
	Label   string   `json:"label,omitempty"`
	Options []string `json:"options"`
}

// ColorPickerProps is the payload for COLOR_PICKER.
type ColorPickerProps struct {
	Label  string   `json:"label,omitempty"`
	Fields []string `json:"fields,omitempty"`
}

// KeyValueDisplayProps is the payload for KEY_VALUE_DISPLAY.
type KeyValueDisplayProps struct {
	Items map[string]string `json:"items"`
}

// LoadingProps is the payload for LOADING.
type LoadingProps struct {
	Message string `json:"message,omitempty"`
}

func mustProps(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		// Props payloads are plain structs of strings and slices; a marshal
		// failure here is a programming error.
		panic(err)
	}
	return data
}

// NewTextInput builds a TEXT_INPUT element.
func NewTextInput(placeholder string) *UIElement {
	return &UIElement{Type: UITextInput, Props: mustProps(TextInputProps{Placeholder: placeholder})}
}

// NewButtonGroup builds a BUTTON_GROUP element.
func NewButtonGroup(buttons ...Button) *UIElement {
	return &UIElement{Type: UIButtonGroup, Props: mustProps(ButtonGroupProps{Buttons: buttons})}
}

// NewLoading builds a LOADING element.
func NewLoading(message string) *UIElement {
	return &UIElement{Type: UILoading, Props: mustProps(LoadingProps{Message: message})}
}
