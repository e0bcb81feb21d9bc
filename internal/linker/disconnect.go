package linker

import "github.com/dropDatabas3/clickauth/internal/domain/account"

// DisconnectResult es el resultado enumerado de TryDisconnect.
type DisconnectResult int

const (
	Disconnected DisconnectResult = iota
	InvalidPlatform
	NotConnected
	AtLeastOneRequired
)

func (r DisconnectResult) String() string {
	switch r {
	case Disconnected:
		return "Disconnected"
	case InvalidPlatform:
		return "InvalidPlatform"
	case NotConnected:
		return "NotConnected"
	case AtLeastOneRequired:
		return "AtLeastOneRequired"
	}
	return "Unknown"
}

// TryDisconnect vacía el slot platform si la cuenta conserva otro método de
// autenticación. Muta la cuenta en memoria; persistir es tarea del caller
// (ver Account.IsChanged).
func TryDisconnect(a *account.Account, platform string) DisconnectResult {
	if !account.IsKnownPlatform(platform) {
		return InvalidPlatform
	}
	if !a.HasPlatform(platform) {
		return NotConnected
	}
	if !a.HasStandardLogin() && a.ConnectedPlatforms() <= 1 {
		return AtLeastOneRequired
	}
	if err := a.ClearPlatform(platform); err != nil {
		return InvalidPlatform
	}
	return Disconnected
}
