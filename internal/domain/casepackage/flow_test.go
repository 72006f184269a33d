package casepackage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
	"github.com/turtacn/CaseBridge/pkg/types/common"
)

func TestNewStatusChangeRecord(t *testing.T) {
	opID, opName := "user-7", "Ops Desk"
	rec := NewStatusChangeRecord("pkg-1", EventAssigned, StatusPublished, StatusAssigned, 250_000, &opID, &opName)

	require.NoError(t, rec.Validate())
	assert.Equal(t, FlowCategoryPackage, rec.Category)
	assert.Equal(t, string(EventAssigned), rec.EventType)
	require.NotNil(t, rec.BeforeStatus)
	require.NotNil(t, rec.AfterStatus)
	assert.Equal(t, StatusPublished, *rec.BeforeStatus)
	assert.Equal(t, StatusAssigned, *rec.AfterStatus)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 250_000.0, *rec.Amount)
	assert.Equal(t, SeverityInfo, rec.Severity)
}

func TestNewStatusChangeRecord_SystemOperator(t *testing.T) {
	rec := NewStatusChangeRecord("pkg-1", EventAssigned, StatusDraft, StatusAssigned, 100, nil, nil)
	require.NoError(t, rec.Validate())
	assert.Nil(t, rec.OperatorID)
	assert.Nil(t, rec.OperatorName)
}

func TestNewSystemRecord(t *testing.T) {
	rec := NewSystemRecord("pkg-1", "assignment.retry_exhausted", SeverityWarning, "3 attempts failed")
	require.NoError(t, rec.Validate())
	assert.Equal(t, FlowCategorySystem, rec.Category)
	assert.Equal(t, SeverityWarning, rec.Severity)
	assert.Nil(t, rec.BeforeStatus)
}

func TestNewFinancialRecord(t *testing.T) {
	caseID := common.ID("case-9")
	rec := NewFinancialRecord("pkg-1", &caseID, "payment.received", 1500, nil, nil)
	require.NoError(t, rec.Validate())
	assert.Equal(t, FlowCategoryFinancial, rec.Category)
	require.NotNil(t, rec.CaseID)
	assert.EqualValues(t, caseID, *rec.CaseID)
	require.NotNil(t, rec.Amount)
	assert.Equal(t, 1500.0, *rec.Amount)
}

func TestFlowRecord_Validate(t *testing.T) {
	rec := NewSystemRecord("", "x", SeverityInfo, "")
	err := rec.Validate()
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeFlowInvalidRecord))

	rec = NewSystemRecord("pkg-1", "", SeverityInfo, "")
	assert.Error(t, rec.Validate())

	rec = NewSystemRecord("pkg-1", "x", SeverityInfo, "")
	rec.Category = FlowCategory("BOGUS")
	assert.Error(t, rec.Validate())

	rec = NewSystemRecord("pkg-1", "x", SeverityInfo, "")
	before := StatusDraft
	rec.BeforeStatus = &before
	assert.Error(t, rec.Validate(), "before without after must fail")
}
