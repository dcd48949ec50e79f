package monitoring

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordEvaluation(t *testing.T) {
	Business.Evaluations.Reset()

	RecordEvaluation("APPROVED", 0.72)
	RecordEvaluation("APPROVED", 0.55)
	RecordEvaluation("REJECTED", 0.19)

	expected := `
		# HELP loan_origination_evaluations_total Total number of automated eligibility evaluations by outcome.
		# TYPE loan_origination_evaluations_total counter
		loan_origination_evaluations_total{status="APPROVED"} 2
		loan_origination_evaluations_total{status="REJECTED"} 1
	`
	if err := testutil.CollectAndCompare(Business.Evaluations, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics for evaluations: %v", err)
	}
}

func TestRecordReview(t *testing.T) {
	Business.Reviews.Reset()

	RecordReview("APPROVE")
	RecordReview("REJECT")
	RecordReview("REJECT")

	assert.Equal(t, float64(1), testutil.ToFloat64(Business.Reviews.WithLabelValues("APPROVE")))
	assert.Equal(t, float64(2), testutil.ToFloat64(Business.Reviews.WithLabelValues("REJECT")))
}

func TestRecordDBQuery(t *testing.T) {
	DB.QueryDuration.Reset()

	RecordDBQuery("GetApplicationByID", "success", 5*time.Millisecond)

	assert.Equal(t, 1, testutil.CollectAndCount(DB.QueryDuration))
}

func TestRecordSubmissionAndEvents(t *testing.T) {
	before := testutil.ToFloat64(Business.ApplicationsSubmitted)
	RecordSubmission()
	assert.Equal(t, before+1, testutil.ToFloat64(Business.ApplicationsSubmitted))

	Business.EventsPublished.Reset()
	RecordEventPublished("application.submitted", "success")
	assert.Equal(t, float64(1), testutil.ToFloat64(Business.EventsPublished.WithLabelValues("application.submitted", "success")))

	Business.BatchRuns.Reset()
	RecordBatchRun("pending_evaluation", "success")
	assert.Equal(t, float64(1), testutil.ToFloat64(Business.BatchRuns.WithLabelValues("pending_evaluation", "success")))
}
