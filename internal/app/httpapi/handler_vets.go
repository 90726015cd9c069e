package httpapi

import (
	"encoding/json"
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/R3E-Network/petclinic/internal/app/domain/vet"
	"github.com/R3E-Network/petclinic/internal/errors"
)

type vetsResource struct {
	XMLName xml.Name      `xml:"vets" json:"-"`
	VetList []vetResource `xml:"vetList" json:"vetList"`
}

type vetResource struct {
	ID          int64               `xml:"id" json:"id"`
	FirstName   string              `xml:"firstName" json:"firstName"`
	LastName    string              `xml:"lastName" json:"lastName"`
	Specialties []specialtyResource `xml:"specialties,omitempty" json:"specialties,omitempty"`
}

type specialtyResource struct {
	ID   int64  `xml:"id" json:"id"`
	Name string `xml:"name" json:"name"`
}

func newVetsResource(list []vet.WithSpecialties) vetsResource {
	out := vetsResource{VetList: make([]vetResource, 0, len(list))}
	for _, v := range list {
		res := vetResource{ID: v.ID, FirstName: v.FirstName, LastName: v.LastName}
		for _, s := range v.Specialties {
			res.Specialties = append(res.Specialties, specialtyResource{ID: s.ID, Name: s.Name})
		}
		out.VetList = append(out.VetList, res)
	}
	return out
}

func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func (h *handler) vetPage(w http.ResponseWriter, r *http.Request) {
	listing, err := h.app.Vets.Page(r.Context(), queryInt(r, "page", 1), queryInt(r, "size", 0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, pageVetList, h.page(w, r, "vets", listing))
}

// vetResources serves every vet as XML, or JSON when asked for.
func (h *handler) vetResources(w http.ResponseWriter, r *http.Request) {
	list, err := h.app.Vets.All(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res := newVetsResource(list)

	var (
		body        []byte
		contentType string
	)
	if wantsJSON(r) {
		body, err = json.Marshal(res)
		contentType = "application/json"
	} else {
		body, err = xml.Marshal(res)
		contentType = "application/xml"
	}
	if err != nil {
		h.fail(w, r, errors.Serialize(err))
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Add("Vary", "Accept")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
