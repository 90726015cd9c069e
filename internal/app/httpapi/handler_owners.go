package httpapi

import (
	"fmt"
	"net/http"

	"github.com/R3E-Network/petclinic/internal/app/services/owners"
	"github.com/R3E-Network/petclinic/internal/app/validation"
)

type findOwnersData struct {
	LastName string
}

type ownerFormData struct {
	Form owners.Form
	New  bool
}

func ownerURL(id int64) string {
	return fmt.Sprintf("/owners/%d", id)
}

func (h *handler) findOwnersForm(w http.ResponseWriter, r *http.Request) {
	v := h.page(w, r, "owners", findOwnersData{})
	h.render(w, r, http.StatusOK, pageFindOwners, v)
}

// listOwners searches by last-name prefix. No match sends the user back to
// the search form; a single match on an unpaged search opens that owner.
func (h *handler) listOwners(w http.ResponseWriter, r *http.Request) {
	lastName := r.URL.Query().Get("lastName")
	listing, err := h.app.Owners.Find(r.Context(), lastName, queryInt(r, "page", 1), queryInt(r, "size", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	switch {
	case listing.Page.Empty():
		v := h.page(w, r, "owners", findOwnersData{LastName: listing.LastName})
		errs := &validation.Errors{}
		errs.Add("lastName", validation.KeyNotFound)
		v.Errors = errs.Translate(v.L)
		h.render(w, r, http.StatusOK, pageFindOwners, v)
	case listing.Page.TotalCount == 1 && r.URL.Query().Get("page") == "":
		http.Redirect(w, r, ownerURL(listing.Owners[0].ID), http.StatusFound)
	default:
		v := h.page(w, r, "owners", listing)
		h.render(w, r, http.StatusOK, pageOwnerList, v)
	}
}

func (h *handler) showOwner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	details, err := h.app.Owners.Details(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := h.page(w, r, "owners", details)
	h.render(w, r, http.StatusOK, pageOwnerDetails, v)
}

func (h *handler) newOwnerForm(w http.ResponseWriter, r *http.Request) {
	v := h.page(w, r, "owners", ownerFormData{New: true})
	h.render(w, r, http.StatusOK, pageOwnerForm, v)
}

func (h *handler) createOwner(w http.ResponseWriter, r *http.Request) {
	var form owners.Form
	if !h.bind(w, r, &form) {
		return
	}

	created, err := h.app.Owners.Create(r.Context(), form)
	if errs, ok := validationErrors(err); ok {
		h.invalid(w, r, pageOwnerForm, h.page(w, r, "owners", ownerFormData{Form: form, New: true}), errs)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setFlash(w, flashOwnerCreated)
	http.Redirect(w, r, ownerURL(created.ID), http.StatusFound)
}

func (h *handler) editOwnerForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	o, err := h.app.Owners.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	v := h.page(w, r, "owners", ownerFormData{Form: owners.FormFor(o)})
	h.render(w, r, http.StatusOK, pageOwnerForm, v)
}

func (h *handler) updateOwner(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "ownerId")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var form owners.Form
	if !h.bind(w, r, &form) {
		return
	}

	_, err = h.app.Owners.Update(r.Context(), id, form)
	if errs, ok := validationErrors(err); ok {
		h.invalid(w, r, pageOwnerForm, h.page(w, r, "owners", ownerFormData{Form: form}), errs)
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	setFlash(w, flashOwnerUpdated)
	http.Redirect(w, r, ownerURL(id), http.StatusFound)
}
