package principal

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/academiahub/backend/internal/common/constants"
	"github.com/academiahub/backend/internal/common/jwtverify"
)

// Principal identifies the caller of a preferences or saved-papers
// operation. Key is the user id for authenticated callers and the
// guest_id cookie value otherwise.
type Principal struct {
	Key      string
	Username string
	Guest    bool
}

// Resolve prefers JWT claims and falls back to the guest cookie,
// minting one on first contact.
func Resolve(w http.ResponseWriter, r *http.Request) Principal {
	if claims, ok := jwtverify.FromContext(r.Context()); ok {
		return Principal{Key: claims.UserID, Username: claims.Username}
	}

	if cookie, err := r.Cookie(constants.GuestCookieName); err == nil && cookie.Value != "" {
		return Principal{Key: cookie.Value, Guest: true}
	}

	guestID := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.GuestCookieName,
		Value:    guestID,
		Path:     "/",
		MaxAge:   int(constants.GuestPrefsTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return Principal{Key: guestID, Guest: true}
}
