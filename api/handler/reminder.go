package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/Matrix-I/todo-backend/pkg/httpcontext"
	reminderUC "github.com/Matrix-I/todo-backend/usecase/reminder"
)

type ReminderHandler struct {
	baseHandler
	coordinator *reminderUC.Coordinator
}

func NewReminderHandler(coordinator *reminderUC.Coordinator, adapter *httpcontext.Adapter, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		baseHandler: newBaseHandler(adapter, logger),
		coordinator: coordinator,
	}
}

// @Summary List tracked reminders
// @Tags reminders
// @Router /api/v1/reminders [get]
func (h *ReminderHandler) GetReminders(ctx *fasthttp.RequestCtx) {
	tracked, err := h.coordinator.Tracked()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, tracked)
}

// @Summary Reconcile tracked reminders against the notification store
// @Tags reminders
// @Router /api/v1/reminders/reconcile [post]
func (h *ReminderHandler) Reconcile(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.coordinator.Reconcile(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}

	count, err := h.coordinator.TrackedCount()
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"tracked": count})
}

// @Summary Cancel every reminder and reset the badge
// @Tags reminders
// @Router /api/v1/reminders [delete]
func (h *ReminderHandler) ClearAll(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.coordinator.ClearAll(stdCtx); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
