package entities

import (
	"encoding/json"
	"time"

	"equiptrak/pkg/types"
)

type RecordType string

const (
	RecordTypeService    RecordType = "service"
	RecordTypeSpotWelder RecordType = "spot_welder"
	RecordTypeCompressor RecordType = "compressor"
	RecordTypeRivetTool  RecordType = "rivet_tool"
	RecordTypeLoler      RecordType = "loler"
)

var recordTypeNames = map[RecordType]string{
	RecordTypeService:    "Service",
	RecordTypeSpotWelder: "Spot Welder",
	RecordTypeCompressor: "Compressor",
	RecordTypeRivetTool:  "Rivet Tool",
	RecordTypeLoler:      "LOLER",
}

func (t RecordType) Valid() bool {
	_, ok := recordTypeNames[t]
	return ok
}

// DisplayName is the label printed on certificates.
func (t RecordType) DisplayName() string {
	return recordTypeNames[t]
}

func RecordTypes() []RecordType {
	return []RecordType{RecordTypeService, RecordTypeSpotWelder, RecordTypeCompressor, RecordTypeRivetTool, RecordTypeLoler}
}

const MaxRecordItems = 8

// ServiceRecordItem is one equipment line on a certificate.
type ServiceRecordItem struct {
	ID           uint64
	RecordID     uint64
	Position     int
	EquipmentID  uint64
	Name         string
	SerialNumber string
}

type ServiceRecord struct {
	ID                uint64
	RecordType        RecordType
	CompanyID         uint64
	EngineerID        uint64
	TestDate          time.Time
	RetestDate        time.Time
	CertificateNumber string
	Notes             *string
	Measurements      json.RawMessage
	Items             []ServiceRecordItem

	types.BaseEntity

	Company  *Company  `db:"-"`
	Engineer *Engineer `db:"-"`
}
