package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

var validate = validator.New()

type errorResponse struct {
	Error string `json:"error"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type chatResponse struct {
	Reply    string   `json:"reply"`
	Warnings []string `json:"warnings,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sessionID, err := s.sessions.ensure(w, r)
	if err != nil {
		s.log.Error("session setup failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session setup failed"})
		return
	}

	if !s.limiter.Allow(sessionID) {
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests, slow down"})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required and must be under 4000 characters"})
		return
	}

	reply, err := s.chat.HandleMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		s.log.Error("chat turn failed", "session", sessionID, "error", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "assistant is unavailable right now"})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Reply: reply.Text, Warnings: reply.Warnings})
}

type weddingResponse struct {
	WeddingDate       string `json:"wedding_date,omitempty"`
	WeddingTime       string `json:"wedding_time,omitempty"`
	Partner1Name      string `json:"partner1_name,omitempty"`
	Partner2Name      string `json:"partner2_name,omitempty"`
	Location          string `json:"location,omitempty"`
	ReceptionLocation string `json:"reception_location,omitempty"`
	VenueName         string `json:"venue_name,omitempty"`
	VenueCost         *int64 `json:"venue_cost,omitempty"`
	GuestCount        *int64 `json:"guest_count,omitempty"`
	TotalBudget       *int64 `json:"total_budget,omitempty"`
	PrimaryColor      string `json:"primary_color,omitempty"`
	SecondaryColor    string `json:"secondary_color,omitempty"`
	Style             string `json:"style,omitempty"`
}

func (s *Server) handleGetWedding(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	weddingID, err := s.store.DefaultWedding(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading wedding failed"})
		return
	}
	wedding, err := s.store.GetWedding(r.Context(), weddingID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading wedding failed"})
		return
	}
	if wedding == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "wedding not found"})
		return
	}
	writeJSON(w, http.StatusOK, weddingResponse{
		WeddingDate:       wedding.WeddingDate,
		WeddingTime:       wedding.WeddingTime,
		Partner1Name:      wedding.Partner1Name,
		Partner2Name:      wedding.Partner2Name,
		Location:          wedding.Location,
		ReceptionLocation: wedding.ReceptionLocation,
		VenueName:         wedding.VenueName,
		VenueCost:         wedding.VenueCost,
		GuestCount:        wedding.GuestCount,
		TotalBudget:       wedding.TotalBudget,
		PrimaryColor:      wedding.PrimaryColor,
		SecondaryColor:    wedding.SecondaryColor,
		Style:             wedding.Style,
	})
}

type vendorResponse struct {
	Type             string `json:"type"`
	Name             string `json:"name"`
	ContactName      string `json:"contact_name,omitempty"`
	Email            string `json:"email,omitempty"`
	Phone            string `json:"phone,omitempty"`
	TotalCost        *int64 `json:"total_cost,omitempty"`
	DepositAmount    *int64 `json:"deposit_amount,omitempty"`
	BalanceDue       *int64 `json:"balance_due,omitempty"`
	DepositPaid      *bool  `json:"deposit_paid,omitempty"`
	ContractSigned   *bool  `json:"contract_signed,omitempty"`
	DepositDate      string `json:"deposit_date,omitempty"`
	FinalPaymentDate string `json:"final_payment_date,omitempty"`
	ContractDate     string `json:"contract_date,omitempty"`
	ServiceDate      string `json:"service_date,omitempty"`
	Status           string `json:"status,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

func (s *Server) handleGetVendors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	weddingID, err := s.store.DefaultWedding(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading vendors failed"})
		return
	}
	vendors, err := s.store.ListVendors(r.Context(), weddingID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading vendors failed"})
		return
	}
	out := make([]vendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, vendorResponse{
			Type:             v.Type,
			Name:             v.Name,
			ContactName:      v.ContactName,
			Email:            v.Email,
			Phone:            v.Phone,
			TotalCost:        v.TotalCost,
			DepositAmount:    v.DepositAmount,
			BalanceDue:       v.BalanceDue,
			DepositPaid:      v.DepositPaid,
			ContractSigned:   v.ContractSigned,
			DepositDate:      v.DepositDate,
			FinalPaymentDate: v.FinalPaymentDate,
			ContractDate:     v.ContractDate,
			ServiceDate:      v.ServiceDate,
			Status:           v.Status,
			Notes:            v.Notes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type budgetResponse struct {
	Category               string `json:"category"`
	BudgetedAmount         *int64 `json:"budgeted_amount,omitempty"`
	SpentAmount            *int64 `json:"spent_amount,omitempty"`
	TransactionAmount      *int64 `json:"transaction_amount,omitempty"`
	TransactionDate        string `json:"transaction_date,omitempty"`
	TransactionDescription string `json:"transaction_description,omitempty"`
	Notes                  string `json:"notes,omitempty"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	weddingID, err := s.store.DefaultWedding(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading budget failed"})
		return
	}
	items, err := s.store.ListBudgetItems(r.Context(), weddingID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading budget failed"})
		return
	}
	out := make([]budgetResponse, 0, len(items))
	for _, item := range items {
		out = append(out, budgetResponse{
			Category:               item.Category,
			BudgetedAmount:         item.BudgetedAmount,
			SpentAmount:            item.SpentAmount,
			TransactionAmount:      item.TransactionAmount,
			TransactionDate:        item.TransactionDate,
			TransactionDescription: item.TransactionDescription,
			Notes:                  item.Notes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type taskResponse struct {
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

func (s *Server) handleGetTasks(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	weddingID, err := s.store.DefaultWedding(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading tasks failed"})
		return
	}
	tasks, err := s.store.ListTasks(r.Context(), weddingID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "loading tasks failed"})
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse{
			Name:     t.Name,
			Category: t.Category,
			Status:   t.Status,
			Priority: t.Priority,
			DueDate:  t.DueDate,
			Notes:    t.Notes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
