package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-funnel/internal/usecase"
)

type UserHandler struct {
	Actions *usecase.UserActions
}

func NewUserHandler(actions *usecase.UserActions) *UserHandler {
	return &UserHandler{Actions: actions}
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	res := h.Actions.CreateUserAction(r.Context(), input)
	if !res.Success {
		writeJSON(w, statusFor(res.Error.Code), res)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var input usecase.UpdateUserInput
	if !decodeJSON(w, r, &input) {
		return
	}

	res := h.Actions.UpdateUserAction(r.Context(), userID, input)
	if !res.Success {
		writeJSON(w, statusFor(res.Error.Code), res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
