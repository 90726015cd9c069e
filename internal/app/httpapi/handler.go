package httpapi

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	app "github.com/R3E-Network/petclinic/internal/app"
	"github.com/R3E-Network/petclinic/internal/app/i18n"
	"github.com/R3E-Network/petclinic/internal/app/validation"
	"github.com/R3E-Network/petclinic/internal/errors"
	"github.com/R3E-Network/petclinic/internal/middleware"
	"github.com/R3E-Network/petclinic/pkg/logger"
)

// oupsMessage is shown by GET /oups.
const oupsMessage = "Expected: handler used to showcase what happens when an error is propagated"

type handler struct {
	app   *app.Application
	views *renderer
	log   *logger.Logger
}

// page assembles the template data for r, consuming any pending flash.
func (h *handler) page(w http.ResponseWriter, r *http.Request, menu string, data any) view {
	return view{
		Menu:   menu,
		Flash:  popFlash(w, r),
		L:      i18n.FromContext(r.Context()),
		Errors: map[string]string{},
		Data:   data,
	}
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, name string, v view) {
	if err := h.views.render(w, status, name, v); err != nil {
		h.fail(w, r, err)
	}
}

// invalid re-renders a form page with its field errors translated.
func (h *handler) invalid(w http.ResponseWriter, r *http.Request, name string, v view, errs *validation.Errors) {
	v.Errors = errs.Translate(v.L)
	h.render(w, r, http.StatusBadRequest, name, v)
}

// fail answers with the JSON error envelope.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	entry := h.log.WithError(err).
		WithField("path", r.URL.Path).
		WithField("trace_id", middleware.TraceID(r.Context()))
	if errors.Is(err, errors.KindNotFound) {
		entry.Debug("resource not found")
	} else {
		entry.Error("request failed")
	}
	errors.WriteJSON(w, r, err)
}

// bind decodes the posted form into dst.
func (h *handler) bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, errors.Validation(err))
		return false
	}
	validation.Bind(r.PostForm, dst)
	return true
}

// validationErrors extracts form failures returned by a service.
func validationErrors(err error) (*validation.Errors, bool) {
	var errs *validation.Errors
	if stderrors.As(err, &errs) && !errs.Empty() {
		return errs, true
	}
	return nil, false
}

// pathID reads a numeric route variable. The route patterns only admit
// digits, so a parse failure means the id overflowed and cannot exist.
func pathID(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.NotFoundID(strings.TrimSuffix(name, "Id"), raw)
	}
	return id, nil
}

// queryInt reads a positive integer query parameter, or def.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}

func (h *handler) welcome(w http.ResponseWriter, r *http.Request) {
	v := h.page(w, r, "home", nil)
	h.render(w, r, http.StatusOK, pageWelcome, v)
}

func (h *handler) oups(w http.ResponseWriter, r *http.Request) {
	v := h.page(w, r, "error", oupsMessage)
	h.render(w, r, http.StatusInternalServerError, pageError, v)
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *handler) notFound(w http.ResponseWriter, r *http.Request) {
	errors.WriteJSON(w, r, &errors.ServiceError{
		Kind:       errors.KindNotFound,
		Message:    "no route for " + r.URL.Path,
		HTTPStatus: http.StatusNotFound,
	})
}
