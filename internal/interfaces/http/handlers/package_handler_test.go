package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseBridge/internal/application/lifecycle"
	"github.com/turtacn/CaseBridge/internal/domain/casepackage"
	apperrors "github.com/turtacn/CaseBridge/pkg/errors"
)

func newPackageRouter(svc lifecycle.Service) *gin.Engine {
	h := NewPackageHandler(svc)
	r := gin.New()
	r.POST("/case-packages", h.Create)
	r.GET("/case-packages", h.List)
	r.GET("/case-packages/:packageID", h.Get)
	r.GET("/case-packages/:packageID/flow", h.FlowHistory)
	r.POST("/case-packages/:packageID/publish", h.Publish)
	r.POST("/case-packages/:packageID/withdraw", h.Withdraw)
	r.POST("/case-packages/:packageID/start", h.Start)
	r.POST("/case-packages/:packageID/complete", h.Complete)
	r.POST("/case-packages/:packageID/cancel", h.Cancel)
	return r
}

func TestPackageHandler_Create(t *testing.T) {
	svc := &stubLifecycleService{pkg: samplePackage(t)}
	engine := newPackageRouter(svc)

	body := `{
		"name": "east-batch-01",
		"source_org_id": "src-org",
		"region": "east",
		"case_type": "credit_card",
		"amount": 120000,
		"case_count": 40
	}`
	w, envelope := doRequest(t, engine, http.MethodPost, "/case-packages", body)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, envelope.Success)
	require.NotNil(t, svc.createdReq)
	assert.Equal(t, "east-batch-01", svc.createdReq.Name)
	assert.EqualValues(t, "src-org", svc.createdReq.SourceOrgID)
	assert.Equal(t, 120000.0, svc.createdReq.Amount)
}

func TestPackageHandler_Get_NotFound(t *testing.T) {
	svc := &stubLifecycleService{err: apperrors.Newf(apperrors.ErrCodePackageNotFound, "case package p-1 not found")}
	engine := newPackageRouter(svc)

	w, envelope := doRequest(t, engine, http.MethodGet, "/case-packages/p-1", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, string(apperrors.ErrCodePackageNotFound), envelope.Error.Code)
}

func TestPackageHandler_List_Filters(t *testing.T) {
	svc := &stubLifecycleService{pkgs: []*casepackage.CasePackage{samplePackage(t)}}
	engine := newPackageRouter(svc)

	w, _ := doRequest(t, engine, http.MethodGet, "/case-packages?status=PUBLISHED&region=east&source_org_id=src-org", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastFilter.Status)
	assert.Equal(t, casepackage.StatusPublished, *svc.lastFilter.Status)
	assert.Equal(t, "east", svc.lastFilter.Region)
	require.NotNil(t, svc.lastFilter.SourceOrgID)
	assert.EqualValues(t, "src-org", *svc.lastFilter.SourceOrgID)
}

func TestPackageHandler_List_RejectsUnknownStatus(t *testing.T) {
	engine := newPackageRouter(&stubLifecycleService{})

	w, envelope := doRequest(t, engine, http.MethodGet, "/case-packages?status=LOST", "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, string(apperrors.ErrCodeValidation), envelope.Error.Code)
}

func TestPackageHandler_Publish_PassesVersionAndOperator(t *testing.T) {
	svc := &stubLifecycleService{pkg: samplePackage(t)}
	engine := newPackageRouter(svc)

	body := `{"operator": {"id": "u-1", "name": "Reviewer"}}`
	w, _ := doRequest(t, engine, http.MethodPost, "/case-packages/p-1/publish?version=3", body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "publish", svc.lastEvent)
	assert.EqualValues(t, "p-1", svc.lastID)
	assert.EqualValues(t, 3, svc.lastVersion)
	require.NotNil(t, svc.lastOperator)
	assert.Equal(t, "u-1", svc.lastOperator.ID)
}

func TestPackageHandler_Transition_DefaultsToCurrentVersion(t *testing.T) {
	svc := &stubLifecycleService{pkg: samplePackage(t)}
	engine := newPackageRouter(svc)

	w, _ := doRequest(t, engine, http.MethodPost, "/case-packages/p-1/withdraw", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "withdraw", svc.lastEvent)
	assert.Zero(t, svc.lastVersion)
	assert.Nil(t, svc.lastOperator)
}

func TestPackageHandler_Transition_RejectsBadVersion(t *testing.T) {
	svc := &stubLifecycleService{pkg: samplePackage(t)}
	engine := newPackageRouter(svc)

	w, envelope := doRequest(t, engine, http.MethodPost, "/case-packages/p-1/start?version=-1", "")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Empty(t, svc.lastEvent)
}

func TestPackageHandler_Transition_ConflictMapsTo409(t *testing.T) {
	svc := &stubLifecycleService{err: apperrors.New(apperrors.ErrCodeConcurrentModification, "version conflict")}
	engine := newPackageRouter(svc)

	w, envelope := doRequest(t, engine, http.MethodPost, "/case-packages/p-1/complete", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, string(apperrors.ErrCodeConcurrentModification), envelope.Error.Code)
}

func TestPackageHandler_Cancel(t *testing.T) {
	svc := &stubLifecycleService{pkg: samplePackage(t)}
	engine := newPackageRouter(svc)

	w, _ := doRequest(t, engine, http.MethodPost, "/case-packages/p-1/cancel", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cancel", svc.lastEvent)
}

func TestPackageHandler_FlowHistory_Filters(t *testing.T) {
	pkg := samplePackage(t)
	rec := casepackage.NewSystemRecord(pkg.ID, "package.created", casepackage.SeverityInfo, "")
	svc := &stubLifecycleService{records: []*casepackage.FlowRecord{rec}}
	engine := newPackageRouter(svc)

	w, envelope := doRequest(t, engine, http.MethodGet,
		"/case-packages/"+string(pkg.ID)+"/flow?category=PACKAGE&event_type=package.created", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, pkg.ID, svc.lastID)
	require.NotNil(t, svc.lastFlow.Category)
	assert.Equal(t, casepackage.FlowCategoryPackage, *svc.lastFlow.Category)
	assert.Equal(t, "package.created", svc.lastFlow.EventType)

	var data struct {
		Items []json.RawMessage `json:"items"`
		Total int64             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data, &data))
	assert.Len(t, data.Items, 1)
}
