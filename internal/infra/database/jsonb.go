package database

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// jsonObject mapeia colunas JSONB de objeto (metadata das submissions).
type jsonObject map[string]any

func (j jsonObject) Value() (driver.Value, error) {
	return encodeJSON(map[string]any(j))
}

func (j *jsonObject) Scan(value any) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	out := jsonObject{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*j = out
	return nil
}

// boolMap mapeia as preferências de notificação da waitlist.
type boolMap map[string]bool

func (b boolMap) Value() (driver.Value, error) {
	return encodeJSON(map[string]bool(b))
}

func (b *boolMap) Scan(value any) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	out := boolMap{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return err
		}
	}
	*b = out
	return nil
}

// encodeJSON devolve string: lib/pq mandaria []byte como bytea.
func encodeJSON[M ~map[string]V, V any](m M) (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func jsonBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("tipo incompatível para JSONB")
	}
}
