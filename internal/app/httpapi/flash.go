package httpapi

import (
	"encoding/base64"
	"net/http"
)

// flashCookie carries a one-shot message across a redirect.
const flashCookie = "petclinic_flash"

const (
	flashOwnerCreated = "New Owner Created"
	flashOwnerUpdated = "Owner Values Updated"
	flashPetAdded     = "New Pet has been Added"
	flashPetEdited    = "Pet details has been edited"
	flashVisitBooked  = "Your visit has been booked"
)

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns the pending message and expires the cookie.
func popFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	msg, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return ""
	}
	return string(msg)
}
