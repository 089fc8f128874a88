package sfrest

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// IDField is the wire name of every record identifier.
const IDField = "Id"

// Record is a client-side sObject. Implementations usually embed
// BaseRecord and use EncodeWire/DecodeWire for their fields.
type Record interface {
	// ObjectName is the sObject API name, e.g. "Case".
	ObjectName() string
	ToWire() (map[string]interface{}, error)
	FromWire(map[string]interface{}) error
	ID() string
	SetID(id string)
}

// BaseRecord holds the identifier shared by all records. It is empty until
// the record has been inserted or loaded from a query.
type BaseRecord struct {
	Id string `json:"Id,omitempty"`
}

func (r *BaseRecord) ID() string { return r.Id }

func (r *BaseRecord) SetID(id string) { r.Id = id }

// EncodeWire converts v to a wire object using its json tags.
func EncodeWire(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return m, nil
}

// DecodeWire populates the struct pointed to by v from a wire object,
// matching json tags. Embedded structs such as BaseRecord are flattened and
// unknown fields (like "attributes") are ignored.
func DecodeWire(m map[string]interface{}, v interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return fmt.Errorf("failed to create record decoder: %w", err)
	}
	if err := decoder.Decode(m); err != nil {
		return fmt.Errorf("failed to decode record: %w", err)
	}
	return nil
}

// updatePayload serializes rec without its identifier.
func updatePayload(rec Record) (map[string]interface{}, error) {
	payload, err := rec.ToWire()
	if err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	delete(payload, IDField)
	return payload, nil
}

// decodeRecords materializes wire objects into new records of type T.
func decodeRecords[T any, PT interface {
	*T
	Record
}](objects []map[string]interface{}) ([]PT, error) {
	records := make([]PT, 0, len(objects))
	for i, obj := range objects {
		rec := PT(new(T))
		if err := rec.FromWire(obj); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
