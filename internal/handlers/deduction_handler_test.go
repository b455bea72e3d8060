package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"saccos-core/internal/config"
	"saccos-core/internal/repositories"
	"saccos-core/internal/services"
)

func newDeductionHandler(t *testing.T) (*DeductionHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := services.NewDeductionService(
		db,
		config.WorkflowConfig{MaxDeductionPercent: 40},
		repositories.NewMemberRepository(db),
		repositories.NewLoanRepository(db),
		repositories.NewDeductionRepository(db),
		zap.NewNop(),
	)
	return NewDeductionHandler(svc), mock
}

func exportRequest(requestID string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/deductions/"+requestID+"/export", nil)
	r.Header.Set("X-Actor-ID", "admin-1")
	r.Header.Set("X-Tenant-ID", "tenant-1")
	r.Header.Set("X-Actor-Role", "saccos_admin")
	return mux.SetURLVars(r, map[string]string{"request_id": requestID})
}

func TestExportCSVHandler(t *testing.T) {
	requestColumns := []string{
		"id", "tenant_id", "batch_number", "month", "year", "total_members",
		"total_amount", "status", "submitted_by", "submitted_at",
		"created_at", "updated_at",
	}

	t.Run("missing request responds as JSON without attachment headers", func(t *testing.T) {
		h, mock := newDeductionHandler(t)
		mock.ExpectQuery("FROM deduction_requests").
			WithArgs("missing", "tenant-1").
			WillReturnError(sql.ErrNoRows)

		rec := httptest.NewRecorder()
		h.ExportCSV(rec, exportRequest("missing"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Empty(t, rec.Header().Get("Content-Disposition"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing request streams the attachment", func(t *testing.T) {
		h, mock := newDeductionHandler(t)
		now := time.Now()
		mock.ExpectQuery("FROM deduction_requests").
			WithArgs("req-1", "tenant-1").
			WillReturnRows(sqlmock.NewRows(requestColumns).AddRow(
				"req-1", "tenant-1", "tenant-1-202508", 8, 2025, 1,
				"500.00", "draft", nil, nil, now, now,
			))
		mock.ExpectQuery("FROM deduction_items").
			WithArgs("req-1").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "request_id", "member_id", "member_number", "national_id",
				"employee_number", "full_name", "savings", "loan_installment",
				"insurance_premium", "current_amount", "previous_amount",
				"is_over_limit", "limit_notes", "created_at",
			}).AddRow(
				"item-1", "req-1", "m1", "M-001", "NID-1",
				"", "Member One", "500.00", "0.00",
				"0.00", "500.00", "0.00",
				false, "", now,
			))

		rec := httptest.NewRecorder()
		h.ExportCSV(rec, exportRequest("req-1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "deductions-req-1.csv")
		assert.Contains(t, rec.Body.String(), "Member Number")
		assert.Contains(t, rec.Body.String(), "M-001")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
