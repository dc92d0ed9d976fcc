package entities

type SpotWelderReading struct {
	CurrentKA  float64 `json:"current_ka" validate:"gte=0"`
	TimeCycles int     `json:"time_cycles" validate:"gte=0"`
	ForceKN    float64 `json:"force_kn" validate:"gte=0"`
}

type SpotWelderMeasurements struct {
	Readings []SpotWelderReading `json:"readings" validate:"dive"`
}

type CompressorMeasurements struct {
	WorkingPressureBar float64 `json:"working_pressure_bar" validate:"gte=0"`
	SafetyValveSetBar  float64 `json:"safety_valve_set_bar" validate:"gte=0"`
	SafetyValveOK      bool    `json:"safety_valve_ok"`
	PressureVesselOK   bool    `json:"pressure_vessel_ok"`
}

type RivetPullTest struct {
	RivetSize  string  `json:"rivet_size" validate:"required"`
	RequiredKN float64 `json:"required_kn" validate:"gte=0"`
	MeasuredKN float64 `json:"measured_kn" validate:"gte=0"`
	Pass       bool    `json:"pass"`
}

type RivetToolMeasurements struct {
	PullTests []RivetPullTest `json:"pull_tests" validate:"dive"`
}

type LolerCheck struct {
	Component string  `json:"component" validate:"required"`
	Pass      bool    `json:"pass"`
	Comment   *string `json:"comment,omitempty"`
}

type LolerMeasurements struct {
	SafeWorkingLoad string       `json:"safe_working_load"`
	Checklist       []LolerCheck `json:"checklist" validate:"dive"`
}

// MeasurementsFor returns an empty payload of the shape the record type
// expects, or nil when the type carries no measurements.
func MeasurementsFor(t RecordType) interface{} {
	switch t {
	case RecordTypeSpotWelder:
		return &SpotWelderMeasurements{}
	case RecordTypeCompressor:
		return &CompressorMeasurements{}
	case RecordTypeRivetTool:
		return &RivetToolMeasurements{}
	case RecordTypeLoler:
		return &LolerMeasurements{}
	default:
		return nil
	}
}
