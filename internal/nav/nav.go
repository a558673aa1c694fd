// Package nav is the page state machine of the client flow: a single
// current page from a fixed set, with hand-coded transitions and no
// history stack.
package nav

import (
	"fmt"

	"miles/internal/models"
)

// Actions accepted by Transition.
const (
	ActionViewDetails  = "view_details"
	ActionBookNow      = "book_now"
	ActionBack         = "back"
	ActionOpenAuth     = "open_auth"
	ActionLoginSuccess = "login_success"
	ActionSignOut      = "sign_out"
	ActionGoHome       = "go_home"
	ActionOpenAccount  = "open_account"
)

var ErrInvalidTransition = fmt.Errorf("invalid navigation transition")

// backTargets hand-codes "back" per page; there is no browser history.
var backTargets = map[string]string{
	models.PageDetails: models.PageHome,
	models.PageBooking: models.PageDetails,
	models.PageAuth:    models.PageHome,
	models.PageAccount: models.PageHome,
}

// Transition returns the page reached from current by action.
func Transition(current, action string) (string, error) {
	switch action {
	case ActionViewDetails:
		if current == models.PageHome || current == models.PageDetails {
			return models.PageDetails, nil
		}
	case ActionBookNow:
		if current == models.PageDetails {
			return models.PageBooking, nil
		}
	case ActionBack:
		if target, ok := backTargets[current]; ok {
			return target, nil
		}
	case ActionOpenAuth:
		return models.PageAuth, nil
	case ActionLoginSuccess:
		if current == models.PageAuth {
			return models.PageAccount, nil
		}
	case ActionOpenAccount:
		return models.PageAccount, nil
	case ActionSignOut:
		if current == models.PageAccount {
			return models.PageHome, nil
		}
	case ActionGoHome:
		return models.PageHome, nil
	}
	return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, current)
}

// Valid reports whether p names a known page.
func Valid(p string) bool {
	switch p {
	case models.PageHome, models.PageDetails, models.PageBooking, models.PageAuth, models.PageAccount:
		return true
	}
	return false
}
