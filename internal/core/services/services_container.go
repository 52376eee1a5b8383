package services

import (
	portsevents "github.com/paymybuddy/backend/internal/core/ports/events"
	portsrepo "github.com/paymybuddy/backend/internal/core/ports/repositories"
	portssvc "github.com/paymybuddy/backend/internal/core/ports/services"
)

// NewServiceContainer wires the repositories into the service facades handed
// to the HTTP layer. publisher may be nil when eventing is disabled.
func NewServiceContainer(
	accountRepo portsrepo.AccountRepository,
	transferRepo portsrepo.TransferRepository,
	connectionRepo portsrepo.ConnectionRepository,
	publisher portsevents.Publisher,
) *portssvc.ServiceContainer {
	return &portssvc.ServiceContainer{
		Account:    NewAccountService(accountRepo),
		Transfer:   NewTransferService(transferRepo, accountRepo, publisher),
		Connection: NewConnectionService(connectionRepo, accountRepo),
	}
}
