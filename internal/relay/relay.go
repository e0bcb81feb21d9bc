// Package relay es el almacén efímero clave→payload del login cross-device:
// el callback deja el par de credenciales bajo la clave de sesión y el otro
// dispositivo lo retira una sola vez.
package relay

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL es la ventana de handoff.
const DefaultTTL = 10 * time.Second

var ErrEmptyKey = errors.New("relay: empty key")

// Relay es seguro para uso concurrente.
//
// PopEntry trata las entradas vencidas como ausentes aunque todavía no se
// hayan barrido; TryRemoveExpiredEntries es solo housekeeping.
type Relay interface {
	// AddEntry pisa cualquier entrada previa y fija expiración = ahora + TTL.
	AddEntry(ctx context.Context, key string, payload []byte) error
	// PopEntry devuelve y borra el payload en un paso; ok=false si no existe o venció.
	PopEntry(ctx context.Context, key string) (payload []byte, ok bool, err error)
	TryRemoveExpiredEntries(ctx context.Context) (removed int, err error)
	EntriesCount(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
