// handlers/stripe.go - Invoice checkout and the Stripe webhook
package handlers

import (
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/studioleflow/portal/internal/api"
	"github.com/studioleflow/portal/internal/gate"
	"github.com/studioleflow/portal/internal/models"
	"github.com/studioleflow/portal/internal/mutation"
	"github.com/studioleflow/portal/internal/payments"
	"github.com/studioleflow/portal/internal/views"
)

const maxWebhookBody = 64 << 10

// PayInvoice redirects to a hosted checkout page for a pending or overdue invoice
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.protect(w, r, false, gate.Authenticated); !ok {
		return
	}
	if h.Checkout == nil {
		h.NotFound(w, r)
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	}

	inv, err := h.Views.Invoice(r.Context(), h.viewRequest(r), id)
	if err != nil {
		h.Log.Error("[STRIPE] load invoice", zap.Int64("invoice_id", id), zap.Error(err))
		h.notify(r, mutation.PaymentFailed)
		seeOther(w, r, afterLoginPath)
		return
	}
	if inv == nil {
		h.NotFound(w, r)
		return
	}
	if s := views.EffectiveStatus(*inv, h.Views.Now()); s != models.InvoicePending && s != models.InvoiceOverdue {
		seeOther(w, r, afterLoginPath)
		return
	}

	url, err := h.Checkout.CreateCheckout(r.Context(), payments.Checkout{
		InvoiceID:   inv.ID,
		Number:      inv.InvoiceNumber,
		Description: inv.Description,
		Amount:      inv.Amount,
		Currency:    inv.Currency,
		SuccessURL:  h.publicURL + "/dashboard?payment=success",
		CancelURL:   h.publicURL + "/dashboard",
	})
	if err != nil {
		h.Log.Error("[STRIPE] create checkout", zap.Int64("invoice_id", inv.ID), zap.Error(err))
		h.notify(r, mutation.PaymentFailed)
		seeOther(w, r, afterLoginPath)
		return
	}
	h.Log.Info("[STRIPE] checkout started", zap.Int64("invoice_id", inv.ID))
	seeOther(w, r, url)
}

// StripeWebhook handles signed Stripe events. A completed checkout marks the
// cached invoices and overview of every visitor stale.
func (h *Handler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		h.Log.Warn("[STRIPE] read body", zap.Error(err))
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	done, err := h.Webhooks.ParseEvent(body, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.Log.Warn("[STRIPE] rejected event", zap.Error(err))
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}
	if done == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	h.Cache.InvalidatePath(api.KeyInvoices)
	h.Cache.InvalidatePath(api.KeyOverview)
	h.Log.Info(fmt.Sprintf("[STRIPE] ✅ Invoice %d paid", done.InvoiceID), zap.String("session", done.SessionID))
	w.WriteHeader(http.StatusOK)
}
