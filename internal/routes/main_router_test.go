package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"

	"equiptrak/internal/authz"
	"equiptrak/internal/controllers"
	"equiptrak/internal/dto"
	"equiptrak/pkg/customvalidator"
	apperrors "equiptrak/pkg/errors"
	"equiptrak/pkg/middleware"
	"equiptrak/pkg/service"
	"equiptrak/pkg/types"
	"equiptrak/pkg/utils"
)

// stubRecordService picks its outcome from the record type of the payload.
type stubRecordService struct {
	created []dto.CreateServiceRecordDTO
}

func (s *stubRecordService) Create(ctx context.Context, payload dto.CreateServiceRecordDTO) (*dto.ServiceRecordDTO, error) {
	if _, err := authz.PrincipalFromContext(ctx); err != nil {
		return nil, err
	}
	switch payload.RecordType {
	case "":
		return nil, apperrors.NewValidationError("record_type", "is required")
	case "generator_down":
		return nil, apperrors.GenerationFailed(errors.New("sequence unavailable"))
	case "store_down":
		return nil, apperrors.NewPersistenceError(errors.New(`duplicate key value violates unique constraint "service_records_certificate_number_key"`))
	}
	s.created = append(s.created, payload)
	return &dto.ServiceRecordDTO{ID: 7, RecordType: payload.RecordType, CertificateNumber: "ET-00000007", Status: "valid"}, nil
}

func (s *stubRecordService) GetAll(_ context.Context, filter types.Filter) (*dto.PaginatedResponse[dto.ServiceRecordDTO], error) {
	return &dto.PaginatedResponse[dto.ServiceRecordDTO]{
		List:       []dto.ServiceRecordDTO{{ID: 1}, {ID: 2}},
		Pagination: dto.Pagination{TotalCount: 12, Page: filter.Page, Limit: filter.Limit},
	}, nil
}

func (s *stubRecordService) FindByID(_ context.Context, id uint64) (*dto.ServiceRecordDTO, error) {
	if id != 7 {
		return nil, apperrors.ErrNotFound
	}
	return &dto.ServiceRecordDTO{ID: 7}, nil
}

func (s *stubRecordService) UpdateDates(_ context.Context, id uint64, _ dto.UpdateRecordDatesDTO) (*dto.ServiceRecordDTO, error) {
	return &dto.ServiceRecordDTO{ID: id}, nil
}

func (s *stubRecordService) UpdateCertificateNumber(_ context.Context, id uint64, payload dto.UpdateCertificateNumberDTO) (*dto.ServiceRecordDTO, error) {
	return &dto.ServiceRecordDTO{ID: id, CertificateNumber: payload.CertificateNumber}, nil
}

type RouterTestSuite struct {
	suite.Suite
	echo          *echo.Echo
	records       *stubRecordService
	adminToken    string
	customerToken string
}

func (s *RouterTestSuite) SetupTest() {
	logger := zap.NewNop()
	jwtSvc := service.NewJWTService("secret", time.Hour)

	s.echo = echo.New()
	s.echo.Validator = utils.NewValidator(customvalidator.New())
	s.records = &stubRecordService{}

	RegisterRoutes(s.echo, Handlers{
		Record: controllers.NewServiceRecordController(s.records, controllers.NewRequestDeduplicator(), logger),
	}, middleware.NewAuthMiddleware(jwtSvc, logger), logger)

	var err error
	s.adminToken, err = jwtSvc.GenerateToken("admin-1", "admin@example.com", string(authz.RoleAdmin), nil)
	s.Require().NoError(err)
	companyID := uint64(3)
	s.customerToken, err = jwtSvc.GenerateToken("cust-1", "ops@acme.example", string(authz.RoleCustomer), &companyID)
	s.Require().NoError(err)
}

func (s *RouterTestSuite) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func (s *RouterTestSuite) TestHealthIsPublic() {
	rec, _ := s.do(http.MethodGet, "/api/health", "", "")
	s.Equal(http.StatusOK, rec.Code)
}

func (s *RouterTestSuite) TestMissingTokenIsRejected() {
	rec, _ := s.do(http.MethodGet, "/api/records", "", "")
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *RouterTestSuite) TestCustomerCannotCreateRecords() {
	rec, _ := s.do(http.MethodPost, "/api/records", s.customerToken, `{"record_type":"spot_welder"}`)
	s.Equal(http.StatusForbidden, rec.Code)
	s.Empty(s.records.created)
}

func (s *RouterTestSuite) TestCreateRecordOutcomes() {
	cases := []struct {
		name       string
		recordType string
		code       int
		message    string
	}{
		{"validation", "", http.StatusBadRequest, "record_type: is required"},
		{"generation failure", "generator_down", http.StatusServiceUnavailable, "Could not issue a certificate number, the record was not created"},
		{"persistence failure", "store_down", http.StatusUnprocessableEntity, `duplicate key value violates unique constraint "service_records_certificate_number_key"`},
		{"created", "spot_welder", http.StatusCreated, "Service record created"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec, body := s.do(http.MethodPost, "/api/records", s.adminToken,
				`{"record_type":"`+tc.recordType+`","company_id":3,"engineer_id":1,"test_date":"2025-03-01"}`)
			s.Equal(tc.code, rec.Code)
			s.Equal(tc.message, body["message"])
		})
	}
	s.Len(s.records.created, 1)
}

func (s *RouterTestSuite) TestDuplicateSubmissionIsRefused() {
	body := `{"record_type":"compressor","company_id":3,"engineer_id":1,"test_date":"2025-03-01","items":[{"name":"Compressor","serial_number":"C-1"}]}`

	rec, _ := s.do(http.MethodPost, "/api/records", s.adminToken, body)
	s.Equal(http.StatusCreated, rec.Code)

	rec, _ = s.do(http.MethodPost, "/api/records", s.adminToken, body)
	s.Equal(http.StatusConflict, rec.Code)
	s.Len(s.records.created, 1)
}

func (s *RouterTestSuite) TestFailedSubmissionCanBeRetried() {
	for i := 0; i < 2; i++ {
		rec, _ := s.do(http.MethodPost, "/api/records", s.adminToken, `{"record_type":"store_down","company_id":3}`)
		s.Equal(http.StatusUnprocessableEntity, rec.Code)
	}
}

func (s *RouterTestSuite) TestValidationErrorNamesField() {
	_, body := s.do(http.MethodPost, "/api/records", s.adminToken, `{"company_id":3}`)
	s.Equal(map[string]interface{}{"field": "record_type"}, body["body"])
}

func (s *RouterTestSuite) TestListIsPaginated() {
	rec, body := s.do(http.MethodGet, "/api/records?limit=2&page=3", s.customerToken, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	payload, ok := body["body"].(map[string]interface{})
	s.Require().True(ok)
	s.Len(payload["list"], 2)

	pagination := payload["pagination"].(map[string]interface{})
	s.EqualValues(12, pagination["total_count"])
	s.EqualValues(3, pagination["page"])
	s.EqualValues(6, pagination["total_pages"])
}

func (s *RouterTestSuite) TestUnknownRecordIs404() {
	rec, _ := s.do(http.MethodGet, "/api/records/99", s.adminToken, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
