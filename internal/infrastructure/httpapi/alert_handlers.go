package httpapi

import (
	"net/http"
	"strings"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
)

func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	params := listAlertsQuery{
		Acknowledged: strings.TrimSpace(query.Get("acknowledged")),
		AlertType:    strings.TrimSpace(query.Get("alert_type")),
		CarID:        strings.TrimSpace(query.Get("car_id")),
	}
	qualificationID, err := queryUint(r, "qualification_id")
	if err != nil {
		writeMappedError(ctx, w, "list_alerts", err)
		return
	}
	params.QualificationID = qualificationID
	if err := h.check(params); err != nil {
		writeMappedError(ctx, w, "list_alerts", err)
		return
	}

	filter := ports.AlertFilter{
		AlertType:       domain.AlertType(params.AlertType),
		CarID:           params.CarID,
		QualificationID: params.QualificationID,
	}
	if params.Acknowledged != "" {
		acknowledged := params.Acknowledged == "true"
		filter.Acknowledged = &acknowledged
	}

	page, err := queryPage(r)
	if err != nil {
		writeMappedError(ctx, w, "list_alerts", err)
		return
	}

	result, err := h.service.ListAlerts(ctx, filter, page)
	if err != nil {
		writeMappedError(ctx, w, "list_alerts", err)
		return
	}
	writeSuccess(w, http.StatusOK, listResponse[alertResponse]{
		Items:  mapSlice(result.Alerts, toAlertResponse),
		Total:  result.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

// acknowledgeAlert reports acknowledged=false for unknown or already
// acknowledged alerts instead of failing.
func (h *Handler) acknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		writeMappedError(ctx, w, "acknowledge_alert", err)
		return
	}

	ok, err := h.service.AcknowledgeAlert(ctx, id, actorFromRequest(r))
	if err != nil {
		writeMappedError(ctx, w, "acknowledge_alert", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"id":           id,
		"acknowledged": ok,
	})
}
