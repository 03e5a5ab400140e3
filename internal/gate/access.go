// gate/access.go - Access requirements for protected pages
package gate

import "github.com/studioleflow/portal/internal/models"

// Requirement is checked before any resource of a page is read
type Requirement func(u *models.User) bool

func Authenticated(u *models.User) bool { return u != nil }

func Verified(u *models.User) bool { return u != nil && u.EmailVerified }

// Allow reports whether u meets every requirement
func Allow(u *models.User, reqs ...Requirement) bool {
	for _, req := range reqs {
		if !req(u) {
			return false
		}
	}
	return true
}
