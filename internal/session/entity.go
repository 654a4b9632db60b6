package session

import "github.com/ovaphlow/pitchfork/service-agents-go/internal/account/entity"

// Result is handed to the client after a successful redemption.
type Result struct {
	AccountID   string            `json:"userId"`
	Account     entity.Projection `json:"user"`
	AccessToken string            `json:"accessToken"`
}
