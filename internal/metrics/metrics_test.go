package metrics

import (
	"testing"
	"time"

	"alcyxob/gym-manager/internal/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/member", "200"))
	RecordHTTPRequest("GET", "/api/v1/member", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/member", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordPayment(t *testing.T) {
	c := PaymentsCollected.WithLabelValues("admission", "cash")
	before := testutil.ToFloat64(c)

	RecordPayment(domain.TransactionAdmission, domain.PaymentCash, domain.NewMoney(40))
	RecordPayment(domain.TransactionAdmission, domain.PaymentCash, 0)

	assert.Equal(t, before+4000, testutil.ToFloat64(c))
}

func TestRecordCache(t *testing.T) {
	hits := testutil.ToFloat64(DashboardCacheTotal.WithLabelValues("hit"))
	RecordCacheHit()
	assert.Equal(t, hits+1, testutil.ToFloat64(DashboardCacheTotal.WithLabelValues("hit")))
}
