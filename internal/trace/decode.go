package trace

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/jorgecardleitao/private-jets/internal/constants"
	"github.com/jorgecardleitao/private-jets/internal/models"
)

// tracePayload is the raw globe history document for one aircraft-day.
// Timestamp is the unix time the trace offsets count from; each trace entry
// is a heterogeneous array
//
//	[0] seconds after Timestamp (f64)
//	[1] latitude (f64)
//	[2] longitude (f64)
//	[3] barometric altitude in feet (number), the literal "ground", or null
//
// followed by fields this pipeline does not use.
type tracePayload struct {
	Icao      string            `json:"icao"`
	NoRegData bool              `json:"noRegData"`
	Timestamp float64           `json:"timestamp"`
	Trace     []json.RawMessage `json:"trace"`
}

// DecodePositions decodes a raw day trace into ordered positions.
// Samples with a null altitude carry no usable vertical state and are
// dropped; anything structurally unexpected fails the whole payload.
func DecodePositions(raw []byte) ([]models.Position, error) {
	var payload tracePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, NewSourceError(constants.ErrCodeMalformedPayload, "trace", err)
	}

	positions := make([]models.Position, 0, len(payload.Trace))
	for i, entry := range payload.Trace {
		var fields []interface{}
		if err := json.Unmarshal(entry, &fields); err != nil {
			return nil, NewSourceError(constants.ErrCodeMalformedPayload, payload.Icao,
				fmt.Errorf("trace entry %d: %w", i, err))
		}
		if len(fields) < 4 {
			return nil, NewSourceError(constants.ErrCodeMalformedPayload, payload.Icao,
				fmt.Errorf("trace entry %d: %d fields, need 4", i, len(fields)))
		}

		offset, ok := fields[0].(float64)
		if !ok {
			return nil, NewSourceError(constants.ErrCodeMalformedPayload, payload.Icao,
				fmt.Errorf("trace entry %d: time offset is %T", i, fields[0]))
		}
		lat, ok := fields[1].(float64)
		if !ok {
			return nil, NewSourceError(constants.ErrCodeMalformedPayload, payload.Icao,
				fmt.Errorf("trace entry %d: latitude is %T", i, fields[1]))
		}
		lon, ok := fields[2].(float64)
		if !ok {
			return nil, NewSourceError(constants.ErrCodeMalformedPayload, payload.Icao,
				fmt.Errorf("trace entry %d: longitude is %T", i, fields[2]))
		}

		var altitude *float64
		switch v := fields[3].(type) {
		case nil:
			// no barometric report for this sample
			continue
		case string:
			if v != "ground" {
				return nil, NewSourceError(constants.ErrCodeMalformedPayload, payload.Icao,
					fmt.Errorf("trace entry %d: altitude %q", i, v))
			}
		case float64:
			// an explicit zero reading is a ground report
			if v != 0 {
				altitude = &v
			}
		default:
			return nil, NewSourceError(constants.ErrCodeMalformedPayload, payload.Icao,
				fmt.Errorf("trace entry %d: altitude is %T", i, fields[3]))
		}

		positions = append(positions, models.Position{
			Time:     unixSeconds(payload.Timestamp + offset),
			Lat:      lat,
			Lon:      lon,
			Altitude: altitude,
		})
	}
	return positions, nil
}

func unixSeconds(seconds float64) time.Time {
	sec, frac := math.Modf(seconds)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
