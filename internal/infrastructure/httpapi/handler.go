package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	domain "github.com/jshchssr1023/Railsync-sub003/internal/domain/compliance"
	"github.com/jshchssr1023/Railsync-sub003/internal/errs"
	"github.com/jshchssr1023/Railsync-sub003/internal/ports"
	"github.com/jshchssr1023/Railsync-sub003/internal/usecase/compliance"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service  *compliance.Service
	validate *validator.Validate
}

func NewHandler(service *compliance.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"state": "ok"})
}

// decodeBody reads one JSON object. An empty body leaves dst untouched when
// allowEmpty is set.
func (h *Handler) decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return errs.WithCode(fmt.Errorf("invalid request body: %w", err), codeInvalidJSON)
	}
	return h.check(dst)
}

func (h *Handler) check(dst any) error {
	if err := h.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return errs.WithCode(fmt.Errorf("field %s failed %s validation", strings.ToLower(first.Field()), first.Tag()), codeValidation)
		}
		return errs.WithCode(err, codeValidation)
	}
	return nil
}

func pathID(r *http.Request, name string) (uint64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errs.WithCode(fmt.Errorf("invalid %s %q", name, raw), codeValidation)
	}
	return id, nil
}

func chiURLParam(r *http.Request, name string) string {
	return strings.TrimSpace(chi.URLParam(r, name))
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errs.WithCode(fmt.Errorf("invalid %s %q", name, raw), codeValidation)
	}
	return value, nil
}

func queryUint(r *http.Request, name string) (uint64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errs.WithCode(fmt.Errorf("invalid %s %q", name, raw), codeValidation)
	}
	return value, nil
}

// queryPage applies the service defaults so responses echo the effective page.
func queryPage(r *http.Request) (ports.Page, error) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		return ports.Page{}, err
	}
	offset, err := queryInt(r, "offset")
	if err != nil {
		return ports.Page{}, err
	}
	if limit == 0 {
		limit = compliance.DefaultPageLimit
	}
	if limit > compliance.MaxPageLimit {
		limit = compliance.MaxPageLimit
	}
	return ports.Page{Limit: limit, Offset: offset}, nil
}

func notFound(what string, id uint64) error {
	return errs.WithCode(fmt.Errorf("%s %d not found", what, id), codeNotFound)
}

func parseStatus(raw string) (domain.Status, error) {
	status, ok := domain.ParseStatus(raw)
	if !ok {
		return "", errs.Wrapf(domain.ErrInvalidInput, "unknown status %q", raw)
	}
	return status, nil
}
