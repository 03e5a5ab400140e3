// mutation/toasts.go - Notification copy for each mutation outcome
package mutation

import (
	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/models"
)

var (
	SongSubmitted = &models.Toast{Title: "Pesma dodata", Description: "Vaša pesma je uspešno poslata na odobrenje."}
	SongDeleted   = &models.Toast{Title: "Pesma obrisana", Description: "Pesma je uspešno uklonjena."}
	AdminLoggedIn = &models.Toast{Title: "Uspešno!", Description: "Prijavili ste se kao admin."}
	LoggedIn      = &models.Toast{Title: "Dobrodošli!", Description: "Uspešno ste se prijavili."}
	PaymentFailed = models.Toast{Title: "Greška", Description: "Plaćanje trenutno nije moguće.", Variant: models.ToastDestructive}
	PaymentDone   = models.Toast{Title: "Hvala!", Description: "Uplata je primljena i biće uskoro evidentirana."}
)

func destructive(title, description string) models.Toast {
	return models.Toast{Title: title, Description: description, Variant: models.ToastDestructive}
}

func serverMessage(err error, fallback string) string {
	if apiErr, ok := api.AsError(err); ok && apiErr.FromServer && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// SongSubmitFailure renders the distinct rate-limit and duplicate messages
func SongSubmitFailure(err error) models.Toast {
	msg := serverMessage(err, "Greška pri dodavanju pesme")
	apiErr, ok := api.AsError(err)
	if !ok {
		return destructive("Greška", msg)
	}
	switch apiErr.Kind {
	case api.KindRateLimited:
		return destructive("Sačekajte", msg)
	case api.KindDuplicate:
		return destructive("Duplikat", "Ova pesma je već postavljena.")
	case api.KindValidation:
		return destructive("Greška", msg)
	case api.KindUnknown:
		return destructive("Greška", msg)
	default:
		return destructive("Greška", msg)
	}
}

// SongDeleteFailure never exposes the server message
func SongDeleteFailure(error) models.Toast {
	return destructive("Greška", "Greška pri brisanju pesme")
}

func LoginFailure(err error) models.Toast {
	return destructive("Greška pri prijavljivanju", serverMessage(err, "Neispravno korisničko ime ili lozinka."))
}

func MessageFailure(err error) models.Toast {
	return destructive("Greška", serverMessage(err, "Poruka nije poslata"))
}
