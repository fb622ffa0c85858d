package compliance

import "strings"

// BulkPatch is the field subset a bulk edit may touch. Dates are never
// patchable; only Complete moves them.
type BulkPatch struct {
	Status       *Status
	IsExempt     *bool
	ExemptReason *string
	Notes        *string
}

// Normalize folds Status=exempt into IsExempt and rejects contradictions.
func (p BulkPatch) Normalize() (BulkPatch, error) {
	out := p
	if p.Status != nil {
		if *p.Status != StatusExempt {
			return BulkPatch{}, ErrDerivedStatusNotAssignable
		}
		if p.IsExempt != nil && !*p.IsExempt {
			return BulkPatch{}, ErrDerivedStatusNotAssignable
		}
		exempt := true
		out.IsExempt = &exempt
		out.Status = nil
	}

	if out.ExemptReason != nil {
		reason := strings.TrimSpace(*out.ExemptReason)
		out.ExemptReason = &reason
	}
	if out.IsExempt != nil && *out.IsExempt {
		if out.ExemptReason == nil || *out.ExemptReason == "" {
			return BulkPatch{}, ErrExemptReasonRequired
		}
	}
	return out, nil
}

func (p BulkPatch) IsEmpty() bool {
	return p.Status == nil && p.IsExempt == nil && p.ExemptReason == nil && p.Notes == nil
}

// Fields lists the patched columns for history payloads.
func (p BulkPatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.IsExempt != nil {
		fields["is_exempt"] = *p.IsExempt
		if *p.IsExempt {
			fields["status"] = string(StatusExempt)
		}
	}
	if p.ExemptReason != nil {
		fields["exempt_reason"] = *p.ExemptReason
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	return fields
}
