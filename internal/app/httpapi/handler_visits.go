package httpapi

import (
	"net/http"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/services/visits"
)

type visitFormData struct {
	Owner owner.Owner
	Pet   owner.PetDetails
	Form  visits.Form
}

func (h *handler) visitTarget(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	ownerID, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return 0, 0, false
	}
	petID, err := pathID(r, "petId")
	if err != nil {
		h.fail(w, r, err)
		return 0, 0, false
	}
	return ownerID, petID, true
}

func (h *handler) newVisitForm(w http.ResponseWriter, r *http.Request) {
	ownerID, petID, ok := h.visitTarget(w, r)
	if !ok {
		return
	}
	details, pet, err := h.app.Visits.Target(r.Context(), ownerID, petID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := h.page(w, r, "owners", visitFormData{Owner: details, Pet: pet})
	h.render(w, r, http.StatusOK, pageVisitForm, v)
}

func (h *handler) createVisit(w http.ResponseWriter, r *http.Request) {
	ownerID, petID, ok := h.visitTarget(w, r)
	if !ok {
		return
	}
	var form visits.Form
	if !h.bind(w, r, &form) {
		return
	}

	_, err := h.app.Visits.Book(r.Context(), ownerID, petID, form)
	if errs, ok := validationErrors(err); ok {
		details, pet, loadErr := h.app.Visits.Target(r.Context(), ownerID, petID)
		if loadErr != nil {
			h.fail(w, r, loadErr)
			return
		}
		v := h.page(w, r, "owners", visitFormData{Owner: details, Pet: pet, Form: form})
		h.invalid(w, r, pageVisitForm, v, errs)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setFlash(w, flashVisitBooked)
	http.Redirect(w, r, ownerURL(ownerID), http.StatusFound)
}
