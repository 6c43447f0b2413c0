package users

import (
	"stayhub/internal/app/commands"
	"stayhub/internal/app/dto"
	"stayhub/internal/app/queries"
	"stayhub/internal/app/uow"
)

func Register(cmds *commands.InMemoryBus, qs *queries.InMemoryBus, factory uow.UoWFactory, wallet *WalletHandler) {
	queries.RegisterHandler[GetUserQuery, dto.User](qs, getUserKey, &GetUserHandler{UoW: factory})
	queries.RegisterHandler[UserBookingsQuery, *dto.Page[dto.Booking]](qs, userBookingsKey, &UserBookingsHandler{UoW: factory})
	queries.RegisterHandler[UserListingsQuery, dto.Page[dto.Listing]](qs, userListingsKey, &UserListingsHandler{UoW: factory})
	commands.RegisterHandler[ConnectWalletCommand, dto.Wallet](cmds, connectWalletKey, commands.HandlerFunc[ConnectWalletCommand, dto.Wallet](wallet.Connect))
	commands.RegisterHandler[DisconnectWalletCommand, dto.Wallet](cmds, disconnectWalletKey, commands.HandlerFunc[DisconnectWalletCommand, dto.Wallet](wallet.Disconnect))
}
