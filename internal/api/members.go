package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/evidenca/internal/model"
	"github.com/erazemk/evidenca/internal/store"
)

// MembersHandler handles library member endpoints.
type MembersHandler struct {
	DB *sql.DB
}

type memberRequest struct {
	FirstName string                 `json:"first_name"`
	LastName  string                 `json:"last_name"`
	Email     string                 `json:"email"`
	Phone     string                 `json:"phone"`
	JoinDate  model.Date             `json:"join_date"`
	Status    model.MembershipStatus `json:"membership_status"`
}

func (req memberRequest) member() model.Member {
	return model.Member{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		JoinDate:  req.JoinDate,
		Status:    req.Status,
	}
}

type statusRequest struct {
	Status model.MembershipStatus `json:"membership_status"`
}

// List handles GET /api/members.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := store.ListMembers(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, "list members", err)
		return
	}
	jsonResponse(w, http.StatusOK, emptyIfNil(members))
}

// Create handles POST /api/members.
func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := store.CreateMember(r.Context(), h.DB, req.member())
	if err != nil {
		writeError(w, r, "create member", err)
		return
	}

	requestLogger(r.Context()).Info("member created", "member", member.ID, "status", member.Status)
	jsonResponse(w, http.StatusCreated, member)
}

// Get handles GET /api/members/{id}.
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := store.GetMember(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, r, "get member", err)
		return
	}
	jsonResponse(w, http.StatusOK, member)
}

// Update handles PUT /api/members/{id}.
func (h *MembersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req memberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := store.UpdateMember(r.Context(), h.DB, id, req.member())
	if err != nil {
		writeError(w, r, "update member", err)
		return
	}

	requestLogger(r.Context()).Info("member updated", "member", id)
	jsonResponse(w, http.StatusOK, member)
}

// UpdateStatus handles PUT /api/members/{id}/status.
func (h *MembersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := store.UpdateMemberStatus(r.Context(), h.DB, id, req.Status); err != nil {
		writeError(w, r, "update member status", err)
		return
	}

	requestLogger(r.Context()).Info("member status changed", "member", id, "status", req.Status)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// Delete handles DELETE /api/members/{id}.
func (h *MembersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	if err := store.DeleteMember(r.Context(), h.DB, id); err != nil {
		writeError(w, r, "delete member", err)
		return
	}

	requestLogger(r.Context()).Info("member deleted", "member", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "member deleted"})
}
