package apiv1

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSONCodec encodes the plain Go messages of this package for connect.
// It replaces connect's protojson codec under the same name.
type JSONCodec struct{}

func (JSONCodec) Name() string {
	return "json"
}

func (JSONCodec) Marshal(message any) ([]byte, error) {
	return json.Marshal(message)
}

// MarshalStable is used by connect clients sending GET requests.
func (c JSONCodec) MarshalStable(message any) ([]byte, error) {
	return c.Marshal(message)
}

func (JSONCodec) IsBinary() bool {
	return false
}

func (JSONCodec) Unmarshal(data []byte, message any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(message); err != nil {
		return fmt.Errorf("decode %T: %w", message, err)
	}
	return nil
}
