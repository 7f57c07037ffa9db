package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/plateful/internal/backup"
	"github.com/dukerupert/plateful/internal/websocket"
)

// PassphraseHeader carries the passphrase for an import, whose body is the
// sealed snapshot itself.
const PassphraseHeader = "X-Backup-Passphrase"

const maxImportBytes = 64 << 20

type BackupHandler struct {
	notifier
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, hub *websocket.Hub, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{notifier: notifier{hub}, manager: manager, logger: logger}
}

// Export streams the whole database sealed with the posted passphrase.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passphrase string `json:"passphrase"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	sealed, err := h.manager.Export(req.Passphrase)
	if err != nil {
		h.logger.Error("export backup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	filename := fmt.Sprintf("plateful-%s.json.enc", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Write(sealed)
}

// Import replaces the database with a sealed snapshot.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	passphrase := r.Header.Get(PassphraseHeader)
	if passphrase == "" {
		writeError(w, http.StatusBadRequest, "passphrase is required")
		return
	}

	sealed, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "backup file is too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read backup file")
		return
	}
	if len(sealed) == 0 {
		writeError(w, http.StatusBadRequest, "backup file is empty")
		return
	}

	snap, err := h.manager.Import(sealed, passphrase)
	if errors.Is(err, backup.ErrDecrypt) {
		writeError(w, http.StatusBadRequest, "wrong passphrase or corrupt backup file")
		return
	}
	if errors.Is(err, backup.ErrInvalidSnapshot) {
		writeError(w, http.StatusBadRequest, "backup file is not a valid snapshot")
		return
	}
	if err != nil {
		h.logger.Error("import backup", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to import backup")
		return
	}

	counts := map[string]any{
		"recipes":      len(snap.Recipes),
		"mealPlans":    len(snap.MealPlans),
		"groceryLists": len(snap.GroceryLists),
	}
	h.broadcast(websocket.EntityBackup, "imported", "", counts)
	writeJSON(w, http.StatusOK, counts)
}

// Status reports the scheduler state and the latest scheduled backups.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	history, err := h.manager.History(10)
	if err != nil {
		h.logger.Error("backup history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list backups")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  h.manager.Status(),
		"history": history,
	})
}

// Run takes a scheduled-style backup immediately.
func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	if h.manager.Status().State == backup.StateDisabled {
		writeError(w, http.StatusConflict, "scheduled backups are not configured")
		return
	}
	b, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}
