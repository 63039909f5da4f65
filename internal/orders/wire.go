package orders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// maksymalny rozmiar odpowiedzi / pliku z zamówieniami
const maxPayloadBytes = 64 << 20

type listEnvelope struct {
	Data struct {
		Orders []Order `json:"orders"`
	} `json:"data"`
	Orders []Order `json:"orders"`
}

// DecodeList czyta listę zamówień: {"data":{"orders":[...]}}, {"orders":[...]} albo gołą tablicę.
func DecodeList(r io.Reader) ([]Order, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, nil
	}

	if b[0] == '[' {
		var list []Order
		if err := json.Unmarshal(b, &list); err != nil {
			return nil, fmt.Errorf("decode orders: %w", err)
		}
		return list, nil
	}

	var env listEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode orders envelope: %w", err)
	}
	if env.Data.Orders != nil {
		return env.Data.Orders, nil
	}
	return env.Orders, nil
}
