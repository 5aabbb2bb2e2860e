package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/YuriVictoria/KipuBankV2/internal/entity"
	"github.com/YuriVictoria/KipuBankV2/internal/middleware"
	"github.com/YuriVictoria/KipuBankV2/internal/repository"
	"github.com/YuriVictoria/KipuBankV2/internal/service"

	"github.com/gorilla/mux"
)

type valueRequest struct {
	Value int64 `json:"value"`
}

type roleRequest struct {
	Role    entity.Role `json:"role"`
	Address string      `json:"address"`
}

// AdminHandler serves the configuration and role surface. The role checks
// themselves live in the services, so a plain caller gets the typed
// Unauthorized answer rather than a missing route.
type AdminHandler struct {
	configService service.ConfigService
	roleService   service.RoleService
	eventRepo     repository.EventRepository
}

func NewAdminHandler(configService service.ConfigService, roleService service.RoleService, eventRepo repository.EventRepository) *AdminHandler {
	return &AdminHandler{configService, roleService, eventRepo}
}

func (h *AdminHandler) GetBankCap(w http.ResponseWriter, r *http.Request) {
	value, err := h.configService.BankCap()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"bank-cap": value})
}

func (h *AdminHandler) GetWithdrawLimit(w http.ResponseWriter, r *http.Request) {
	value, err := h.configService.WithdrawLimit()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"withdraw-limit": value})
}

func (h *AdminHandler) SetBankCap(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, h.configService.SetBankCap)
}

func (h *AdminHandler) SetWithdrawLimit(w http.ResponseWriter, r *http.Request) {
	h.setValue(w, r, h.configService.SetWithdrawLimit)
}

func (h *AdminHandler) setValue(w http.ResponseWriter, r *http.Request, set func(entity.Address, int64) error) {
	caller, ok := callerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var request valueRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Error occurred while parsing the request body", http.StatusBadRequest)
		return
	}

	if err := set(caller, request.Value); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"value": request.Value})
}

func (h *AdminHandler) GrantRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.roleService.Grant)
}

func (h *AdminHandler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	h.changeRole(w, r, h.roleService.Revoke)
}

func (h *AdminHandler) changeRole(w http.ResponseWriter, r *http.Request, change func(entity.Address, entity.Role, entity.Address) error) {
	caller, ok := callerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var request roleRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Error occurred while parsing the request body", http.StatusBadRequest)
		return
	}
	if !middleware.ValidAddress(request.Address) {
		http.Error(w, "Account address must be 0x followed by 40 hex digits", http.StatusBadRequest)
		return
	}
	if !request.Role.Valid() {
		http.Error(w, "Role must be admin or manager", http.StatusBadRequest)
		return
	}

	if err := change(caller, request.Role, entity.Address(request.Address)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *AdminHandler) GetRoles(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	address := vars["address"]

	if !middleware.ValidAddress(address) {
		http.Error(w, "Account address must be 0x followed by 40 hex digits", http.StatusBadRequest)
		return
	}

	roles, err := h.roleService.Roles(entity.Address(address))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": address,
		"roles":   roles,
	})
}

// ListEvents pages through the notification log. Operator endpoint, admins
// only.
func (h *AdminHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerFrom(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	isAdmin, err := h.roleService.Has(caller, entity.RoleAdmin)
	if err != nil {
		writeError(w, err)
		return
	}
	if !isAdmin {
		writeError(w, entity.ErrUnauthorized)
		return
	}

	var after uint64
	if raw := r.URL.Query().Get("after"); raw != "" {
		after, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "The after parameter must be a number", http.StatusBadRequest)
			return
		}
	}

	events, err := h.eventRepo.List(after, 0)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}
