package schema

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ValidationError reports the first schema constraint an input violated.
// It carries the dotted field path so the caller can tell which field broke.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid input: field %q: %s", e.Field, e.Reason)
}

// Validator lets a request type enforce cross-field rules after decoding.
type Validator interface {
	Validate() error
}

// Decode turns a raw JSON payload into the typed request for op, rejecting
// any input that violates the operation's declared schema. No operation code
// runs for an input Decode refuses.
func Decode(op Operation, payload []byte) (any, error) {
	raw := map[string]any{}
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &raw); err != nil {
			return nil, &ValidationError{Reason: "input is not a JSON object"}
		}
	}

	normalize(op.Name, raw)

	if err := validateFields(op, raw); err != nil {
		return nil, err
	}

	req := op.NewRequest()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           req,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			if verr, isValidation := err.(*ValidationError); isValidation {
				return nil, verr
			}
			return nil, &ValidationError{Reason: err.Error()}
		}
	}

	return req, nil
}

// normalize maps dynamic option-shape unions to their canonical object form
// before validation: a bare string options value means an encoding, a bare
// string data value means text content.
func normalize(opName string, raw map[string]any) {
	switch opName {
	case OpReadDir, OpReadFile, OpWriteFile:
		if enc, ok := raw["options"].(string); ok {
			raw["options"] = map[string]any{"encoding": enc}
		}
	}

	if opName == OpWriteFile {
		if text, ok := raw["data"].(string); ok {
			raw["data"] = map[string]any{"type": ContentText, "data": text}
		}
	}
}

func validateFields(op Operation, raw map[string]any) error {
	for _, field := range op.Fields {
		value, present := lookupPath(raw, field.Path)
		if !present {
			if field.Required {
				return &ValidationError{Field: field.Path, Reason: "required field is missing"}
			}
			continue
		}

		if err := checkType(field, value); err != nil {
			return err
		}
	}
	return nil
}

func lookupPath(raw map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = raw
	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func checkType(field Field, value any) error {
	switch field.Type {
	case TypeString:
		s, ok := value.(string)
		if !ok {
			return &ValidationError{Field: field.Path, Reason: "expected a string"}
		}
		if field.Required && s == "" {
			return &ValidationError{Field: field.Path, Reason: "must not be empty"}
		}
		if len(field.Enum) > 0 && !contains(field.Enum, s) {
			return &ValidationError{
				Field:  field.Path,
				Reason: fmt.Sprintf("%q is not one of [%s]", s, strings.Join(field.Enum, ", ")),
			}
		}
	case TypeBool:
		if _, ok := value.(bool); !ok {
			return &ValidationError{Field: field.Path, Reason: "expected a boolean"}
		}
	case TypeNumber:
		switch value.(type) {
		case float64, int, int64:
		default:
			return &ValidationError{Field: field.Path, Reason: "expected a number"}
		}
	case TypeObject:
		if _, ok := value.(map[string]any); !ok {
			return &ValidationError{Field: field.Path, Reason: "expected an object"}
		}
	case TypeStringList:
		if err := checkStringList(field, value); err != nil {
			return err
		}
	case TypeStringMap:
		if err := checkStringMap(field, value); err != nil {
			return err
		}
	case TypeContent:
		if err := checkContent(field, value); err != nil {
			return err
		}
	}
	return nil
}

func checkStringList(field Field, value any) error {
	switch list := value.(type) {
	case []string:
		if field.Required && len(list) == 0 {
			return &ValidationError{Field: field.Path, Reason: "must not be empty"}
		}
	case []any:
		if field.Required && len(list) == 0 {
			return &ValidationError{Field: field.Path, Reason: "must not be empty"}
		}
		for i, item := range list {
			if _, ok := item.(string); !ok {
				return &ValidationError{
					Field:  fmt.Sprintf("%s[%d]", field.Path, i),
					Reason: "expected a string",
				}
			}
		}
	default:
		return &ValidationError{Field: field.Path, Reason: "expected a list of strings"}
	}
	return nil
}

func checkStringMap(field Field, value any) error {
	switch m := value.(type) {
	case map[string]string:
	case map[string]any:
		for key, item := range m {
			if _, ok := item.(string); !ok {
				return &ValidationError{
					Field:  field.Path + "." + key,
					Reason: "expected a string value",
				}
			}
		}
	default:
		return &ValidationError{Field: field.Path, Reason: "expected a map of strings"}
	}
	return nil
}

func checkContent(field Field, value any) error {
	m, ok := value.(map[string]any)
	if !ok {
		return &ValidationError{Field: field.Path, Reason: "expected file content"}
	}

	kind, _ := m["type"].(string)
	if kind != ContentText && kind != ContentBinary {
		return &ValidationError{
			Field:  field.Path + ".type",
			Reason: fmt.Sprintf("%q is not one of [%s, %s]", kind, ContentText, ContentBinary),
		}
	}

	data, ok := m["data"].(string)
	if !ok {
		return &ValidationError{Field: field.Path + ".data", Reason: "expected a string"}
	}

	if kind == ContentBinary {
		if _, err := base64.StdEncoding.DecodeString(data); err != nil {
			return &ValidationError{Field: field.Path + ".data", Reason: "invalid base64"}
		}
	}
	return nil
}

func contains(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}

// Validate rejects spawn requests whose argument vector has no executable.
func (r *SpawnRequest) Validate() error {
	if len(r.Command) == 0 || r.Command[0] == "" {
		return &ValidationError{Field: "command", Reason: "executable name is required"}
	}
	return nil
}
