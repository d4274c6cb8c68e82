package bot

import (
	"log/slog"
	"net/http"
)

// WebhookHandler returns the HTTP handler for incoming updates. Parse
// errors get a 400; handler errors are logged but acknowledged with 200 so
// the chat platform does not redeliver the same update forever.
func WebhookHandler(h *Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		upd, err := ParseUpdate(r.Body)
		if err != nil {
			log.Warn("bad webhook payload", "error", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if err := h.HandleUpdate(r.Context(), upd); err != nil {
			log.Error("update handling failed", "update_id", upd.UpdateID, "error", err)
		}
		w.WriteHeader(http.StatusOK)
	})
}
