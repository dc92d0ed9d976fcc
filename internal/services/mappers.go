package services

import (
	"time"

	"github.com/aarondl/null/v8"

	"equiptrak/internal/dto"
	"equiptrak/internal/entities"
	"equiptrak/internal/lifecycle"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func nullDate(t *time.Time) null.String {
	if t == nil || t.IsZero() {
		return null.String{}
	}
	return null.StringFrom(t.Format(dateLayout))
}

func nullStringFromPtr(s *string) null.String {
	if s == nil {
		return null.String{}
	}
	return null.StringFrom(*s)
}

func ptrFromNullString(s null.String) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

func toCompanyDTO(c *entities.Company) *dto.CompanyDTO {
	if c == nil {
		return nil
	}
	return &dto.CompanyDTO{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		City:      c.City,
		County:    c.County,
		Postcode:  c.Postcode,
		Country:   c.Country,
		Phone:     c.Phone,
		Email:     nullStringFromPtr(c.Email),
		CreatedAt: formatTimestamp(c.CreatedAt),
		UpdatedAt: formatTimestamp(c.UpdatedAt),
	}
}

func toShortCompanyDTO(c *entities.Company, id uint64) dto.ShortCompanyDTO {
	if c == nil {
		return dto.ShortCompanyDTO{ID: id}
	}
	return dto.ShortCompanyDTO{ID: c.ID, Name: c.Name}
}

func toEngineerDTO(e *entities.Engineer) *dto.EngineerDTO {
	if e == nil {
		return nil
	}
	return &dto.EngineerDTO{
		ID:        e.ID,
		Name:      e.Name,
		CreatedAt: formatTimestamp(e.CreatedAt),
		UpdatedAt: formatTimestamp(e.UpdatedAt),
	}
}

func toEquipmentTypeDTO(t *entities.EquipmentType) *dto.EquipmentTypeDTO {
	if t == nil {
		return nil
	}
	return &dto.EquipmentTypeDTO{ID: t.ID, Code: string(t.Code), Name: t.Name}
}

// toEquipmentDTO classifies e against the classifier's clock.
func toEquipmentDTO(e *entities.Equipment, classifier *lifecycle.Classifier) dto.EquipmentDTO {
	status := classifier.Status(e.NextTestDate)
	out := dto.EquipmentDTO{
		ID:            e.ID,
		Name:          e.Name,
		SerialNumber:  e.SerialNumber,
		Company:       toShortCompanyDTO(e.Company, e.CompanyID),
		EquipmentType: toEquipmentTypeDTO(e.EquipmentType),
		LastTestDate:  nullDate(e.LastTestDate),
		NextTestDate:  nullDate(e.NextTestDate),
		Status:        string(status),
		StatusColor:   lifecycle.Color(status),
		CreatedAt:     formatTimestamp(e.CreatedAt),
		UpdatedAt:     formatTimestamp(e.UpdatedAt),
	}
	if e.NextTestDate != nil && !e.NextTestDate.IsZero() {
		days := lifecycle.DiffDays(*e.NextTestDate, classifier.CurrentTime())
		out.DaysUntilRetest = &days
	}
	return out
}

func toServiceRecordDTO(r *entities.ServiceRecord, classifier *lifecycle.Classifier) *dto.ServiceRecordDTO {
	if r == nil {
		return nil
	}
	status := classifier.Status(&r.RetestDate)

	items := make([]dto.RecordItemResponseDTO, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, dto.RecordItemResponseDTO{
			Position:     item.Position,
			EquipmentID:  item.EquipmentID,
			Name:         item.Name,
			SerialNumber: item.SerialNumber,
		})
	}

	engineer := dto.ShortEngineerDTO{ID: r.EngineerID}
	if r.Engineer != nil {
		engineer.Name = r.Engineer.Name
	}

	return &dto.ServiceRecordDTO{
		ID:                r.ID,
		RecordType:        string(r.RecordType),
		RecordTypeName:    r.RecordType.DisplayName(),
		Company:           toShortCompanyDTO(r.Company, r.CompanyID),
		Engineer:          engineer,
		TestDate:          formatDate(r.TestDate),
		RetestDate:        formatDate(r.RetestDate),
		Status:            string(status),
		StatusColor:       lifecycle.Color(status),
		CertificateNumber: r.CertificateNumber,
		Notes:             nullStringFromPtr(r.Notes),
		Measurements:      r.Measurements,
		Items:             items,
		CreatedAt:         formatTimestamp(r.CreatedAt),
	}
}
