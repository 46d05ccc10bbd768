package handlers

import (
	accountRepo "resolvo/database/repository/account"
)

// HandlerBundle aggregates all handlers plus the repositories the
// middleware needs, assembled once in main and handed to route
// registration.
type HandlerBundle struct {
	AccountRepo accountRepo.AccountRepository

	Account  *AccountHandler
	Booking  *BookingHandler
	Contract *ContractHandler
	Admin    *AdminHandler
}
