package httpinterface

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tdex-network/payoutd/internal/core/application/ledger"
	"github.com/tdex-network/payoutd/internal/core/application/pubsub"
	"github.com/tdex-network/payoutd/internal/core/domain"
	"github.com/tdex-network/payoutd/internal/core/ports"
)

type handler struct {
	ledgerSvc ledger.Service
	pubsubSvc *pubsub.Service
	acl       ports.AccessControl
}

func (h *handler) deposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	asset, err := req.Asset.toDomain()
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = r.Header.Get(IdempotencyKeyHeader)
	}

	id, err := h.ledgerSvc.Deposit(
		r.Context(), callerFromContext(r.Context()), ledger.DepositRequest{
			Asset:          asset,
			Amount:         req.Amount,
			Marker:         req.Marker,
			IdempotencyKey: key,
		},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, depositReply{id})
}

func (h *handler) depositCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledgerSvc.DepositCount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, countReply{count})
}

func (h *handler) getDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := parseDepositID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deposit, err := h.ledgerSvc.GetDeposit(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newDepositInfo(*deposit))
}

func (h *handler) listDeposits(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	deposits, err := h.ledgerSvc.ListDeposits(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	info := make([]depositInfo, 0, len(deposits))
	for _, d := range deposits {
		info = append(info, newDepositInfo(d))
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) getOverrides(w http.ResponseWriter, r *http.Request) {
	id, err := parseDepositID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()

	reply := overridesReply{DepositID: id}
	if reply.Cancelled, err = h.ledgerSvc.IsCancelled(ctx, id); err != nil {
		writeError(w, r, err)
		return
	}
	if account := r.URL.Query().Get("account"); account != "" {
		reply.Account = account
		if reply.Skipped, err = h.ledgerSvc.IsSkipped(ctx, account, id); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *handler) skipPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseDepositID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.ledgerSvc.SkipPayment(
		r.Context(), callerFromContext(r.Context()), id,
	); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) cancelPayment(w http.ResponseWriter, r *http.Request) {
	id, err := parseDepositID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.ledgerSvc.CancelPaymentGlobally(
		r.Context(), callerFromContext(r.Context()), id,
	); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) withdraw(w http.ResponseWriter, r *http.Request) {
	withdrawal, err := h.ledgerSvc.Withdraw(
		r.Context(), callerFromContext(r.Context()),
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newWithdrawalInfo(*withdrawal))
}

func (h *handler) canWithdraw(w http.ResponseWriter, r *http.Request) {
	ok, err := h.ledgerSvc.CanWithdraw(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, canWithdrawReply{ok})
}

func (h *handler) pendingPayout(w http.ResponseWriter, r *http.Request) {
	payout, err := h.ledgerSvc.PendingPayout(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newPayoutInfo(*payout))
}

func (h *handler) listWithdrawals(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	withdrawals, err := h.ledgerSvc.ListWithdrawals(
		r.Context(), mux.Vars(r)["account"], page,
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	info := make([]withdrawalInfo, 0, len(withdrawals))
	for _, wd := range withdrawals {
		info = append(info, newWithdrawalInfo(wd))
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) getCursor(w http.ResponseWriter, r *http.Request) {
	cursor, err := h.ledgerSvc.GetCursor(r.Context(), mux.Vars(r)["account"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	info := cursorInfo{
		Beneficiary: cursor.Beneficiary,
		Next:        cursor.Next,
		UpdatedAt:   cursor.UpdatedAt,
	}
	if cursor.Pending != nil {
		info.PendingTo = cursor.Pending.To
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *handler) addWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var req addWebhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	id, err := h.pubsubSvc.AddWebhook(r.Context(), req.Event, req.Endpoint, req.Secret)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, addWebhookReply{id})
}

func (h *handler) removeWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	if err := h.pubsubSvc.RemoveWebhook(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listWebhooks(w http.ResponseWriter, r *http.Request) {
	if !h.isAdmin(r) {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	webhooks, err := h.pubsubSvc.ListWebhooks(r.Context(), r.URL.Query().Get("event"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, webhooks)
}

func (h *handler) isAdmin(r *http.Request) bool {
	return h.acl.IsAdmin(callerFromContext(r.Context()))
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %s", errMissingBody, err)
	}
	return nil
}

func parseDepositID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, errInvalidID
	}
	return id, nil
}

func parsePage(r *http.Request) (domain.Page, error) {
	query := r.URL.Query()
	number, size := 0, 0
	var err error
	if str := query.Get("page"); str != "" {
		if number, err = strconv.Atoi(str); err != nil || number <= 0 {
			return domain.Page{}, errInvalidPage
		}
	}
	if str := query.Get("size"); str != "" {
		if size, err = strconv.Atoi(str); err != nil || size <= 0 {
			return domain.Page{}, errInvalidPage
		}
	}
	page := domain.NewPage(number, size)
	if page.IsOutOfRange() {
		return domain.Page{}, errInvalidPage
	}
	return page, nil
}
