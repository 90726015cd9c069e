package httpapi

import (
	"net/http"

	"github.com/R3E-Network/petclinic/internal/app/domain/owner"
	"github.com/R3E-Network/petclinic/internal/app/services/pets"
)

type petFormData struct {
	Owner owner.Details
	Form  pets.Form
	Types []owner.PetType
	New   bool
}

// petFormPage loads what the pet form needs besides the form values.
func (h *handler) petFormPage(r *http.Request, ownerID int64, form pets.Form, isNew bool) (petFormData, error) {
	details, err := h.app.Pets.Owner(r.Context(), ownerID)
	if err != nil {
		return petFormData{}, err
	}
	types, err := h.app.Pets.Types(r.Context())
	if err != nil {
		return petFormData{}, err
	}
	return petFormData{Owner: details, Form: form, Types: types, New: isNew}, nil
}

func (h *handler) newPetForm(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.petFormPage(r, ownerID, pets.Form{}, true)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, pagePetForm, h.page(w, r, "owners", data))
}

func (h *handler) createPet(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var form pets.Form
	if !h.bind(w, r, &form) {
		return
	}

	_, err = h.app.Pets.Create(r.Context(), ownerID, form)
	if errs, ok := validationErrors(err); ok {
		data, loadErr := h.petFormPage(r, ownerID, form, true)
		if loadErr != nil {
			h.fail(w, r, loadErr)
			return
		}
		h.invalid(w, r, pagePetForm, h.page(w, r, "owners", data), errs)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setFlash(w, flashPetAdded)
	http.Redirect(w, r, ownerURL(ownerID), http.StatusFound)
}

func (h *handler) editPetForm(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	petID, err := pathID(r, "petId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	form, err := h.app.Pets.FormFor(r.Context(), ownerID, petID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	data, err := h.petFormPage(r, ownerID, form, false)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, pagePetForm, h.page(w, r, "owners", data))
}

func (h *handler) updatePet(w http.ResponseWriter, r *http.Request) {
	ownerID, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	petID, err := pathID(r, "petId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var form pets.Form
	if !h.bind(w, r, &form) {
		return
	}

	_, err = h.app.Pets.Update(r.Context(), ownerID, petID, form)
	if errs, ok := validationErrors(err); ok {
		data, loadErr := h.petFormPage(r, ownerID, form, false)
		if loadErr != nil {
			h.fail(w, r, loadErr)
			return
		}
		h.invalid(w, r, pagePetForm, h.page(w, r, "owners", data), errs)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setFlash(w, flashPetEdited)
	http.Redirect(w, r, ownerURL(ownerID), http.StatusFound)
}
