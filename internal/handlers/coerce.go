package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/anhbaysgalan1/clicker/internal/models"
	"gorm.io/datatypes"
)

// rawPayload keeps the raw value of every key sent in a create or update body
// so that absent and null fields can be told apart.
type rawPayload map[string]json.RawMessage

func parseRawPayload(body []byte) (rawPayload, error) {
	var payload rawPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	return payload, nil
}

func (p rawPayload) playerID() (string, error) {
	raw, ok := p["playerId"]
	if !ok {
		return "", nil
	}

	value, err := decodeValue(raw)
	if err != nil {
		return "", err
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("playerId must be a string, got %s", raw)
	}
}

// nickname returns the create nickname. Absent and null fall back to the
// anonymous default; an empty string is kept.
func (p rawPayload) nickname() (string, error) {
	raw, ok := p["nickname"]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return models.DefaultNickname, nil
	}
	return coerceString("nickname", raw)
}

// patch coerces every present field to its column type.
func (p rawPayload) patch() (models.PlayerPatch, error) {
	var patch models.PlayerPatch

	if raw, ok := p["nickname"]; ok {
		nickname, err := coerceString("nickname", raw)
		if err != nil {
			return patch, err
		}
		patch.Nickname = &nickname
	}
	if raw, ok := p["totalClicks"]; ok {
		clicks, err := coerceInt("totalClicks", raw)
		if err != nil {
			return patch, err
		}
		patch.TotalClicks = &clicks
	}
	if raw, ok := p["clickPower"]; ok {
		power, err := coerceInt("clickPower", raw)
		if err != nil {
			return patch, err
		}
		patch.ClickPower = &power
	}
	if raw, ok := p["autoClickRate"]; ok {
		rate, err := coerceFloat("autoClickRate", raw)
		if err != nil {
			return patch, err
		}
		patch.AutoClickRate = &rate
	}
	if raw, ok := p["upgrades"]; ok {
		upgrades, err := coerceJSON("upgrades", raw)
		if err != nil {
			return patch, err
		}
		patch.Upgrades = upgrades
	}
	if raw, ok := p["achievements"]; ok {
		achievements, err := coerceJSON("achievements", raw)
		if err != nil {
			return patch, err
		}
		patch.Achievements = achievements
	}

	return patch, nil
}

func decodeValue(raw json.RawMessage) (interface{}, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, fmt.Errorf("invalid JSON value: %w", err)
	}
	return value, nil
}

func coerceString(field string, raw json.RawMessage) (string, error) {
	value, err := decodeValue(raw)
	if err != nil {
		return "", err
	}

	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %s", field, raw)
	}
	return s, nil
}

// coerceInt accepts numbers (fractions truncate toward zero), integer strings
// and booleans.
func coerceInt(field string, raw json.RawMessage) (int64, error) {
	value, err := decodeValue(raw)
	if err != nil {
		return 0, err
	}

	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil || math.Abs(f) >= math.MaxInt64 {
			return 0, fmt.Errorf("%s: cannot convert %s to integer", field, raw)
		}
		return int64(math.Trunc(f)), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid literal for integer: %q", field, v)
		}
		return i, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("%s: cannot convert %s to integer", field, raw)
	}
}

// coerceFloat accepts numbers, numeric strings and booleans. Non-finite
// values are rejected.
func coerceFloat(field string, raw json.RawMessage) (float64, error) {
	value, err := decodeValue(raw)
	if err != nil {
		return 0, err
	}

	var f float64
	switch v := value.(type) {
	case json.Number:
		f, err = v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s: cannot convert %s to float", field, raw)
		}
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%s: could not convert string to float: %q", field, v)
		}
	case bool:
		if v {
			f = 1
		}
	default:
		return 0, fmt.Errorf("%s: cannot convert %s to float", field, raw)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %v is not a finite number", field, f)
	}
	return f, nil
}

// coerceJSON stores any JSON value, compacted, as an opaque document.
func coerceJSON(field string, raw json.RawMessage) (datatypes.JSON, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON value: %w", field, err)
	}
	return datatypes.JSON(buf.Bytes()), nil
}
