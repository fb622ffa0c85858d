package httpapi

import (
	"net/http"
	"strings"
	"time"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

func (h *Handler) listQualificationTypes(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	types, err := h.service.ListQualificationTypes(r.Context(), includeInactive)
	if err != nil {
		writeMappedError(r.Context(), w, "list_qualification_types", err)
		return
	}
	writeSuccess(w, http.StatusOK, mapSlice(types, toQualificationTypeResponse))
}

func (h *Handler) listQualifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	filter := ports.QualificationFilter{
		CarID:    strings.TrimSpace(query.Get("car_id")),
		TypeCode: strings.TrimSpace(query.Get("type_code")),
	}
	if raw := strings.TrimSpace(query.Get("status")); raw != "" {
		status, err := parseStatus(raw)
		if err != nil {
			writeMappedError(ctx, w, "list_qualifications", err)
			return
		}
		filter.Status = status
	}
	typeID, err := queryUint(r, "type_id")
	if err != nil {
		writeMappedError(ctx, w, "list_qualifications", err)
		return
	}
	filter.TypeID = typeID

	page, err := queryPage(r)
	if err != nil {
		writeMappedError(ctx, w, "list_qualifications", err)
		return
	}

	result, err := h.service.ListQualifications(ctx, filter, page)
	if err != nil {
		writeMappedError(ctx, w, "list_qualifications", err)
		return
	}
	writeSuccess(w, http.StatusOK, listResponse[qualificationResponse]{
		Items:  mapSlice(result.Qualifications, toQualificationResponse),
		Total:  result.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	})
}

func (h *Handler) getQualification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		writeMappedError(ctx, w, "get_qualification", err)
		return
	}

	record, err := h.service.Get(ctx, id)
	if err != nil {
		writeMappedError(ctx, w, "get_qualification", err)
		return
	}
	if record == nil {
		writeMappedError(ctx, w, "get_qualification", notFound("qualification", id))
		return
	}
	writeSuccess(w, http.StatusOK, toQualificationResponse(*record))
}

func (h *Handler) createQualification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createQualificationRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeMappedError(ctx, w, "create_qualification", err)
		return
	}

	record, err := h.service.Create(ctx, compliance.CreateQualificationInput{
		CarID:               req.CarID,
		QualificationTypeID: req.QualificationTypeID,
		TypeCode:            req.TypeCode,
		IntervalMonths:      req.IntervalMonths,
		LastCompletedDate:   req.LastCompletedDate,
		NextDueDate:         req.NextDueDate,
		IsExempt:            req.IsExempt,
		ExemptReason:        req.ExemptReason,
		Notes:               req.Notes,
	}, actorFromRequest(r))
	if err != nil {
		writeMappedError(ctx, w, "create_qualification", err)
		return
	}
	writeSuccess(w, http.StatusCreated, toQualificationResponse(record))
}

func (h *Handler) completeQualification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		writeMappedError(ctx, w, "complete_qualification", err)
		return
	}
	var req completeQualificationRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeMappedError(ctx, w, "complete_qualification", err)
		return
	}

	record, err := h.service.Complete(ctx, id, compliance.CompleteQualificationInput{
		CompletedDate:      req.CompletedDate,
		CompletedBy:        req.CompletedBy,
		CompletionShopCode: req.CompletionShopCode,
		CertificateNumber:  req.CertificateNumber,
		Notes:              req.Notes,
		ExpectedUpdatedAt:  req.ExpectedUpdatedAt,
	}, actorFromRequest(r))
	if err != nil {
		writeMappedError(ctx, w, "complete_qualification", err)
		return
	}
	if record == nil {
		writeMappedError(ctx, w, "complete_qualification", notFound("qualification", id))
		return
	}
	writeSuccess(w, http.StatusOK, toQualificationResponse(*record))
}

func (h *Handler) qualificationHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r, "id")
	if err != nil {
		writeMappedError(ctx, w, "qualification_history", err)
		return
	}

	record, err := h.service.Get(ctx, id)
	if err != nil {
		writeMappedError(ctx, w, "qualification_history", err)
		return
	}
	if record == nil {
		writeMappedError(ctx, w, "qualification_history", notFound("qualification", id))
		return
	}

	events, err := h.service.History(ctx, id)
	if err != nil {
		writeMappedError(ctx, w, "qualification_history", err)
		return
	}
	writeSuccess(w, http.StatusOK, mapSlice(events, toHistoryResponse))
}

func (h *Handler) bulkUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req bulkUpdateRequest
	if err := h.decodeBody(r, &req, false); err != nil {
		writeMappedError(ctx, w, "bulk_update", err)
		return
	}

	patch := domain.BulkPatch{
		IsExempt:     req.IsExempt,
		ExemptReason: req.ExemptReason,
		Notes:        req.Notes,
	}
	if req.Status != nil {
		status, err := parseStatus(strings.TrimSpace(*req.Status))
		if err != nil {
			writeMappedError(ctx, w, "bulk_update", err)
			return
		}
		patch.Status = &status
	}

	result, err := h.service.BulkUpdate(ctx, req.IDs, patch, actorFromRequest(r))
	if err != nil {
		writeMappedError(ctx, w, "bulk_update", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"updated":  result.Updated,
		"batch_id": result.BatchID,
	})
}

func (h *Handler) recalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req recalculateRequest
	if err := h.decodeBody(r, &req, true); err != nil {
		writeMappedError(ctx, w, "recalculate", err)
		return
	}

	var now time.Time
	if raw := strings.TrimSpace(req.Now); raw != "" {
		parsed, err := domain.ParseDate("now", raw)
		if err != nil {
			writeMappedError(ctx, w, "recalculate", err)
			return
		}
		now = parsed
	}

	result, err := h.service.RecalculateAll(ctx, now)
	if err != nil {
		writeMappedError(ctx, w, "recalculate", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]int{
		"updated":   result.Updated,
		"scanned":   result.Scanned,
		"conflicts": result.Conflicts,
		"failed":    result.Failed,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, stats)
}

func (h *Handler) carPriority(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var asOf time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("as_of")); raw != "" {
		parsed, err := domain.ParseDate("as_of", raw)
		if err != nil {
			writeMappedError(ctx, w, "car_priority", err)
			return
		}
		asOf = parsed
	}

	result, err := h.service.Priority(ctx, chiURLParam(r, "car_id"), asOf)
	if err != nil {
		writeMappedError(ctx, w, "car_priority", err)
		return
	}
	writeSuccess(w, http.StatusOK, toPriorityResponse(result))
}
